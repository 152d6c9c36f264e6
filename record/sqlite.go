package record

import (
	"database/sql"
	"encoding/json"
	"errors"

	_ "modernc.org/sqlite"
)

// SQLiteSink stores records in a local sqlite database
type SQLiteSink struct {
	path string
	db   *sql.DB
}

// NewSQLiteSink writes records to the database at the given path
func NewSQLiteSink(path string) *SQLiteSink {
	return &SQLiteSink{path: path}
}

var _ Sink = &SQLiteSink{}

func (s *SQLiteSink) Open() error {
	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			phase TEXT NOT NULL,
			key TEXT NOT NULL,
			dims TEXT NOT NULL,
			vals TEXT NOT NULL,
			env_ids TEXT
		)
	`)
	if err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *SQLiteSink) Write(r Record) error {
	if s.db == nil {
		return errors.New("sqlite sink is not open")
	}
	dims, err := json.Marshal(r.Dims)
	if err != nil {
		return err
	}
	vals, err := json.Marshal(r.Values)
	if err != nil {
		return err
	}
	envIDs, err := json.Marshal(r.EnvIDs)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO records (run_id, step, phase, key, dims, vals, env_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.Step, r.Phase, r.Key, string(dims), string(vals), string(envIDs))
	return err
}

func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
