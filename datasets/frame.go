package datasets

import "github.com/pkg/errors"

// Frame is a table of the raw text columns behind a Set, one row per example,
// in the same order as the Set.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// Column returns the position of the named column, or -1.
func (f *Frame) Column(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Select extracts the named columns of the given rows.
func (f *Frame) Select(rows []int, columns []string) ([][]string, error) {
	pos := make([]int, len(columns))
	for j, name := range columns {
		pos[j] = f.Column(name)
		if pos[j] < 0 {
			return nil, errors.Errorf("unknown column %q", name)
		}
	}
	out := make([][]string, len(rows))
	for n, i := range rows {
		if i < 0 || i >= len(f.Rows) {
			return nil, errors.Errorf("row %d out of range [0, %d)", i, len(f.Rows))
		}
		out[n] = make([]string, len(pos))
		for j, p := range pos {
			if p < len(f.Rows[i]) {
				out[n][j] = f.Rows[i][p]
			}
		}
	}
	return out, nil
}

// Slice returns the rows [begin, end) as a new frame sharing row storage.
func (f *Frame) Slice(begin, end int) *Frame {
	return &Frame{Columns: f.Columns, Rows: f.Rows[begin:end]}
}
