package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Command is one entry in the device command journal. CircuitID is -1 for
// commands that target the whole unit rather than a single circuit; OK
// records whether the controller accepted the command.
type Command struct {
	ID        int64
	IssuedAt  time.Time
	CircuitID int
	Kind      string
	Value     float64
	OK        bool
}

// RecordCommand appends a device-mutating command to the journal.
func RecordCommand(db *sql.DB, cmd Command) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO commands (issued_at, circuit_id, kind, value, ok) VALUES (?, ?, ?, ?, ?)`,
		cmd.IssuedAt.Format(time.RFC3339Nano), cmd.CircuitID, cmd.Kind, cmd.Value, cmd.OK)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert command: %w", err)
	}
	return tx.Commit()
}

// RecentCommands returns the newest journal entries, newest first.
func RecentCommands(db *sql.DB, limit int) ([]Command, error) {
	rows, err := db.Query(`SELECT id, issued_at, circuit_id, kind, value, ok FROM commands ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query commands: %w", err)
	}
	defer rows.Close()

	var commands []Command
	for rows.Next() {
		var cmd Command
		var issuedAt string
		if err := rows.Scan(&cmd.ID, &issuedAt, &cmd.CircuitID, &cmd.Kind, &cmd.Value, &cmd.OK); err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		cmd.IssuedAt, _ = time.Parse(time.RFC3339Nano, issuedAt)
		commands = append(commands, cmd)
	}
	return commands, rows.Err()
}

// PruneCommands deletes journal entries with ids at or below keepAfter,
// returning how many rows were removed.
func PruneCommands(db *sql.DB, keepAfter int64) (int64, error) {
	res, err := db.Exec(`DELETE FROM commands WHERE id <= ?`, keepAfter)
	if err != nil {
		return 0, fmt.Errorf("prune commands: %w", err)
	}
	return res.RowsAffected()
}
