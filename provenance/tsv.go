package provenance

import "encoding/csv"
import "os"
import "strconv"

import "github.com/pkg/errors"

// TSV appends every batch to a tab separated file as a header line followed by
// one line per selected example, the example index first.
type TSV struct {
	name string
	file *os.File
	w    *csv.Writer
}

// CreateTSV truncates name and opens it for appending batches.
func CreateTSV(name string) (*TSV, error) {
	file, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "%v", err)
	}
	w := csv.NewWriter(file)
	w.Comma = '\t'
	return &TSV{name: name, file: file, w: w}, nil
}

func (s *TSV) Append(b Batch) error {
	if len(b.Rows) != len(b.Indices) {
		return errors.Wrapf(ErrIO, "%s: %d rows for %d indices", s.name, len(b.Rows), len(b.Indices))
	}
	var record = make([]string, 0, len(b.Columns)+1)
	record = append(record, "")
	record = append(record, b.Columns...)
	if err := s.w.Write(record); err != nil {
		return errors.Wrapf(ErrIO, "%s: %v", s.name, err)
	}
	for j, i := range b.Indices {
		record = append(record[:0], strconv.Itoa(i))
		record = append(record, b.Rows[j]...)
		if err := s.w.Write(record); err != nil {
			return errors.Wrapf(ErrIO, "%s: %v", s.name, err)
		}
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return errors.Wrapf(ErrIO, "%s: %v", s.name, err)
	}
	return nil
}

func (s *TSV) Close() error {
	s.w.Flush()
	werr := s.w.Error()
	if err := s.file.Close(); err != nil {
		return errors.Wrapf(ErrIO, "%s: %v", s.name, err)
	}
	if werr != nil {
		return errors.Wrapf(ErrIO, "%s: %v", s.name, werr)
	}
	return nil
}
