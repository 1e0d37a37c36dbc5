package power

import (
	"context"
	"time"
)

// Device is the narrow contract a power-management collaborator
// provides. The device, not this process, controls the next wake time.
type Device interface {
	// Kind returns the configured device kind.
	Kind() string

	// Probe reports whether the device is reachable. Called once at
	// startup; an unreachable device degrades to safe-exit.
	Probe() error

	// Sleep delegates suspension to the device for roughly d.
	Sleep(ctx context.Context, d time.Duration) error
}

// Collector performs one unconditional collection pass over every
// bound source. Satisfied by the scheduler.
type Collector interface {
	CollectAll(ctx context.Context)
}
