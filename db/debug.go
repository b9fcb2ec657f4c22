package db

import (
	"fmt"
	"time"
)

// DumpJournalCLI prints the newest journal entries for a database chosen
// by path. Used by the debug command.
func DumpJournalCLI(dbPath string, limit int) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	commands, err := RecentCommands(conn, limit)
	if err != nil {
		return err
	}
	if len(commands) == 0 {
		fmt.Println("Journal is empty")
		return nil
	}
	for _, cmd := range commands {
		target := fmt.Sprintf("circuit %d", cmd.CircuitID)
		if cmd.CircuitID < 0 {
			target = "unit"
		}
		status := "ok"
		if !cmd.OK {
			status = "REFUSED"
		}
		fmt.Printf("%s  %-10s %-12s %.1f  %s\n", cmd.IssuedAt.Format(time.RFC3339), target, cmd.Kind, cmd.Value, status)
	}
	return nil
}

// ListOverridesCLI prints the persisted overrides for a database chosen by
// path.
func ListOverridesCLI(dbPath string) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	records, err := NewStore(conn).Load()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No persisted overrides")
		return nil
	}
	for id, r := range records {
		stop := "indefinite"
		if r.StopAt != nil {
			stop = time.Time(*r.StopAt).Format(time.RFC3339)
		}
		fmt.Printf("circuit %s: %.1f until %s\n", id, r.Temperature, stop)
	}
	return nil
}

// ClearOverridesCLI removes every persisted override.
func ClearOverridesCLI(dbPath string) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Exec(`DELETE FROM overrides`); err != nil {
		return fmt.Errorf("clear overrides: %w", err)
	}
	fmt.Println("Cleared persisted overrides")
	return nil
}
