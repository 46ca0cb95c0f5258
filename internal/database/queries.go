package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/intermernet/activate/internal/activities"
	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/syncstate"
)

// DBorTx is an interface that allows functions to accept either a `*sql.DB` for single queries
// or a `*sql.Tx` for operations within a transaction.
type DBorTx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// Service implements the persistence interfaces of the activity list and
// the sync state.
var (
	_ activities.Store = (*Service)(nil)
	_ syncstate.Store  = (*Service)(nil)
)

// --- Activity summaries ---

// LoadSummaries returns every activity summary in list order.
func (s *Service) LoadSummaries() ([]activity.Unloaded, error) {
	return loadSummaries(s.db)
}

func loadSummaries(db DBorTx) ([]activity.Unloaded, error) {
	query := `
		SELECT activity_id, position, name, sport, flags, effort_level,
		       start_time, distance, duration, climb, server, username
		FROM activities
		ORDER BY position;`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []activity.Unloaded
	for rows.Next() {
		var r summaryRow
		if err := rows.Scan(
			&r.ID, &r.Position, &r.Name, &r.Sport, &r.Flags, &r.EffortLevel,
			&r.StartTime, &r.Distance, &r.Duration, &r.Climb, &r.Server, &r.Username,
		); err != nil {
			return nil, err
		}
		u, err := r.summary()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, u)
	}
	return summaries, rows.Err()
}

// SaveSummaries replaces the stored summary list.
func (s *Service) SaveSummaries(summaries []activity.Unloaded) error {
	return s.Write(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM activities;`); err != nil {
			return err
		}
		query := `
			INSERT INTO activities (activity_id, position, name, sport, flags, effort_level,
			                        start_time, distance, duration, climb, server, username)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
		for i, u := range summaries {
			r, err := rowFromSummary(i, u)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(query,
				r.ID, r.Position, r.Name, r.Sport, r.Flags, r.EffortLevel,
				r.StartTime, r.Distance, r.Duration, r.Climb, r.Server, r.Username,
			); err != nil {
				return fmt.Errorf("save summary of %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

// --- Activity records (one gzip JSON file per activity) ---

func (s *Service) recordPath(id uuid.UUID) string {
	return filepath.Join(s.activitiesPath, id.String()+".json.gz")
}

// LoadActivity reads the full record of an activity.
func (s *Service) LoadActivity(id uuid.UUID) (activity.Record, error) {
	f, err := os.Open(s.recordPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return activity.Record{}, fmt.Errorf("%w: %s", activities.ErrNotFound, id)
	}
	if err != nil {
		return activity.Record{}, err
	}
	defer f.Close()
	return activity.DecodeRecord(f)
}

// SaveActivity writes the full record of an activity, replacing any
// previous version. The file is written under a temporary name and renamed
// into place.
func (s *Service) SaveActivity(rec activity.Record) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tmp, err := os.CreateTemp(s.activitiesPath, rec.ID.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("save activity %s: %w", rec.ID, err)
	}
	defer os.Remove(tmp.Name())

	if err := rec.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save activity %s: %w", rec.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save activity %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.recordPath(rec.ID)); err != nil {
		return fmt.Errorf("save activity %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteActivity removes an activity's record and its sync state. A missing
// record is not an error.
func (s *Service) DeleteActivity(id uuid.UUID) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	return s.write(func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM sync_state WHERE activity_id = ?;`, id.String())
		return err
	})
}

// --- Sync state ---

// LoadSyncState returns every stored sync entry.
func (s *Service) LoadSyncState() (syncstate.Entries, error) {
	rows, err := s.db.Query(`SELECT activity_id, service, service_activity_id FROM sync_state;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(syncstate.Entries)
	for rows.Next() {
		var rawID, service, remote string
		if err := rows.Scan(&rawID, &service, &remote); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("sync state activity id %q: %w", rawID, err)
		}
		if entries[id] == nil {
			entries[id] = make(map[string]string)
		}
		entries[id][service] = remote
	}
	return entries, rows.Err()
}

// SaveSyncState replaces the stored sync state.
func (s *Service) SaveSyncState(entries syncstate.Entries) error {
	return s.Write(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM sync_state;`); err != nil {
			return err
		}
		query := `INSERT INTO sync_state (activity_id, service, service_activity_id) VALUES (?, ?, ?);`
		for id, services := range entries {
			for service, remote := range services {
				if _, err := tx.Exec(query, id.String(), service, remote); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
