package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

const defaultDirPerm = 0o755

// Config locates the schedule-state database. An empty path disables
// persistence.
type Config struct {
	Path string
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// No-op implementation used when persistence is disabled
type noopRepository struct{}

// NewNoopRepository returns a repository that persists nothing. It is
// the fallback when durable storage is disabled or cannot be opened.
func NewNoopRepository() Repository {
	return &noopRepository{}
}

// NewRepository opens (or creates) the schedule-state database. When
// cfg.Path is empty a no-op repository is returned and schedule state
// is not persisted across restarts.
func NewRepository(cfg Config, log *logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.Path == "" {
		log.Debug().Msg("State persistence disabled, using no-op repository")
		return NewNoopRepository(), nil
	}

	log.Debug().Msgf("Initializing schedule-state repository at: %s", cfg.Path)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Path), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal=WAL")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Load(ctx context.Context) ([]Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, `
        SELECT name, active_file, tick_counter, rollover_count, field_count, updated_at
        FROM schedule_state
    `)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var updatedAt int64
		if err := rows.Scan(&s.Name, &s.ActiveFile, &s.TickCounter,
			&s.RolloverCount, &s.FieldCount, &updatedAt); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		s.UpdatedAt = time.Unix(updatedAt, 0)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return snapshots, nil
}

func (r *sqliteRepository) Save(ctx context.Context, snapshots []Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	stmt, err := tx.Prepare(`
        INSERT INTO schedule_state (
            name, active_file, tick_counter, rollover_count, field_count, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            active_file = excluded.active_file,
            tick_counter = excluded.tick_counter,
            rollover_count = excluded.rollover_count,
            field_count = excluded.field_count,
            updated_at = excluded.updated_at
    `)
	if err != nil {
		tx.Rollback()
		return errFactory.Wrap(ErrStorageAccess, err)
	}
	defer stmt.Close()

	for i := range snapshots {
		s := &snapshots[i]
		updatedAt := s.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		if _, err := stmt.Exec(s.Name, s.ActiveFile, s.TickCounter,
			s.RolloverCount, s.FieldCount, updatedAt.Unix()); err != nil {
			tx.Rollback()
			return errFactory.Wrap(ErrStorageAccess, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

// No-op implementation
func (*noopRepository) Load(_ context.Context) ([]Snapshot, error) {
	return nil, nil
}

func (*noopRepository) Save(_ context.Context, _ []Snapshot) error {
	return nil
}

func (*noopRepository) Close() error {
	return nil
}
