package provenance

import "database/sql"
import "encoding/json"
import "time"

import "github.com/google/uuid"
import "github.com/pkg/errors"
import _ "modernc.org/sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	config_json TEXT
);

CREATE TABLE IF NOT EXISTS selections (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	epoch         INTEGER NOT NULL,
	step          INTEGER NOT NULL,
	draw          INTEGER NOT NULL,
	example_index INTEGER NOT NULL,
	columns_json  TEXT,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS selections_example ON selections(run_id, example_index);
`

// SQLite stores the selections of one run in a SQLite database. Every
// OpenSQLite starts a new run identified by a random UUID.
type SQLite struct {
	db    *sql.DB
	runID string
}

// OpenSQLite opens (or creates) the database at path and registers a run.
// configJSON is stored with the run and can be empty.
func OpenSQLite(path, configJSON string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "open db: %v", err)
	}
	// one connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.Wrapf(ErrIO, "pragma fk: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(ErrIO, "migrate: %v", err)
	}
	s := &SQLite{db: db, runID: uuid.New().String()}
	_, err = db.Exec(`INSERT INTO runs (run_id, started_at, config_json) VALUES (?, ?, ?)`,
		s.runID, time.Now().UTC().Format(time.RFC3339Nano), nullIfEmpty(configJSON))
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(ErrIO, "insert run: %v", err)
	}
	return s, nil
}

// RunID returns the id of the run this sink records.
func (s *SQLite) RunID() string {
	return s.runID
}

// DB exposes the database, for inspection.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) Append(b Batch) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrapf(ErrIO, "begin: %v", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO selections (run_id, epoch, step, draw, example_index, columns_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrapf(ErrIO, "prepare: %v", err)
	}
	defer stmt.Close()
	for j, i := range b.Indices {
		var cols interface{}
		if j < len(b.Rows) && len(b.Columns) > 0 {
			var m = make(map[string]string, len(b.Columns))
			for c, name := range b.Columns {
				if c < len(b.Rows[j]) {
					m[name] = b.Rows[j][c]
				}
			}
			data, err := json.Marshal(m)
			if err != nil {
				tx.Rollback()
				return errors.Wrapf(ErrIO, "marshal columns: %v", err)
			}
			cols = string(data)
		}
		if _, err := stmt.Exec(s.runID, b.Epoch, b.Step, j, i, cols); err != nil {
			tx.Rollback()
			return errors.Wrapf(ErrIO, "insert selection: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(ErrIO, "commit: %v", err)
	}
	return nil
}

// Counts returns how often each example was selected during this run.
func (s *SQLite) Counts() (map[int]int, error) {
	rows, err := s.db.Query(`SELECT example_index, COUNT(*) FROM selections WHERE run_id = ? GROUP BY example_index`, s.runID)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "query counts: %v", err)
	}
	defer rows.Close()
	var out = make(map[int]int)
	for rows.Next() {
		var i, n int
		if err := rows.Scan(&i, &n); err != nil {
			return nil, errors.Wrapf(ErrIO, "scan: %v", err)
		}
		out[i] = n
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrapf(ErrIO, "close db: %v", err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
