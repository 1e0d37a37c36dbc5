package state

import (
	"database/sql"

	"codeberg.org/ccs/datalogd/internal/errors"
)

// initSchema initializes the database schema for schedule state
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS schedule_state (
            name TEXT PRIMARY KEY,
            active_file TEXT,
            tick_counter INTEGER,
            rollover_count INTEGER,
            field_count INTEGER,
            updated_at INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInit, err)
	}

	return nil
}
