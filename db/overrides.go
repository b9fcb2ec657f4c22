package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/override"
)

// Store persists temperature overrides in SQLite. It satisfies the same
// Load/Save contract as the JSON file store.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Load() (map[string]override.Record, error) {
	rows, err := s.db.Query(`SELECT circuit_id, temperature, created_at, stop_at, disabled_at, last_set FROM overrides`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	records := make(map[string]override.Record)
	for rows.Next() {
		var (
			id          int
			temperature float64
			createdAt   string
			stopAt      sql.NullString
			disabledAt  sql.NullString
			lastSet     sql.NullString
		)
		if err := rows.Scan(&id, &temperature, &createdAt, &stopAt, &disabledAt, &lastSet); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			log.Warn().Int("circuit", id).Str("created_at", createdAt).Msg("Skipping persisted override with unreadable timestamp")
			continue
		}
		records[strconv.Itoa(id)] = override.Record{
			Temperature: temperature,
			CreatedAt:   override.Timestamp(created),
			StopAt:      parseOptTime(stopAt),
			DisabledAt:  parseOptTime(disabledAt),
			LastSet:     parseOptTime(lastSet),
		}
	}
	return records, rows.Err()
}

// Save replaces the persisted set with the given records in one transaction.
func (s *Store) Save(records map[string]override.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM overrides`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear overrides: %w", err)
	}
	for key, r := range records {
		id, err := strconv.Atoi(key)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("override key %q is not a circuit id", key)
		}
		_, err = tx.Exec(`INSERT INTO overrides (circuit_id, temperature, created_at, stop_at, disabled_at, last_set) VALUES (?, ?, ?, ?, ?, ?)`,
			id, r.Temperature, formatTime(r.CreatedAt), formatOptTime(r.StopAt), formatOptTime(r.DisabledAt), formatOptTime(r.LastSet))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert override for circuit %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func formatTime(t override.Timestamp) string {
	return time.Time(t).Format(time.RFC3339Nano)
}

func formatOptTime(t *override.Timestamp) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseOptTime(s sql.NullString) *override.Timestamp {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	ts := override.Timestamp(t)
	return &ts
}
