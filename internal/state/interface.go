package state

import (
	"context"
	"time"
)

// Snapshot is the durable portion of one source's schedule state. It
// is written after collection cycles and reloaded when the process
// re-enters its load phase, so a power-cycle restart resumes rollover
// accounting instead of starting a fresh file.
type Snapshot struct {
	Name          string
	ActiveFile    string
	TickCounter   int
	RolloverCount int
	FieldCount    int
	UpdatedAt     time.Time
}

// Repository defines the interface for schedule-state storage.
type Repository interface {
	Load(ctx context.Context) ([]Snapshot, error)
	Save(ctx context.Context, snapshots []Snapshot) error
	Close() error
}
