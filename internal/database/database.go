package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"

	_ "modernc.org/sqlite" // The pure Go SQLite driver
)

// Service is the central struct for managing all database interactions.
// It owns the sqlite connection holding activity summaries and sync state,
// plus the directory of full activity records, and serializes writes.
type Service struct {
	dbPath         string // Full path to activate.db
	activitiesPath string // Directory holding one <id>.json.gz record per activity

	db      *sql.DB
	writeMu sync.Mutex // One writer at a time, for both the database and record files
}

// NewService opens the database at dbPath and prepares activitiesPath for
// record files. Call Migrate before use.
func NewService(dbPath, activitiesPath string) (*Service, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", dbPath, err)
	}

	// Ping the database to ensure the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to %s: %w", dbPath, err)
	}

	if err := os.MkdirAll(activitiesPath, 0o755); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create activities directory: %w", err)
	}

	return &Service{
		dbPath:         dbPath,
		activitiesPath: activitiesPath,
		db:             db,
	}, nil
}

// Write executes a write operation (INSERT, UPDATE, DELETE) within a
// transaction, protected by a mutex to ensure serial access.
func (s *Service) Write(writeFunc func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write(writeFunc)
}

// write is Write for callers already holding writeMu.
func (s *Service) write(writeFunc func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Execute the provided function. If it returns an error, rollback the transaction.
	if err := writeFunc(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// DB provides a direct, read-only connection to the database.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Close closes the database connection when the application shuts down.
func (s *Service) Close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.db.Close()
	log.Println("INFO: Database connection closed.")
}
