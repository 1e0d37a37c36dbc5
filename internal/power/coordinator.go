package power

import (
	"context"
	"time"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/logger"
)

// DefaultSleepPeriod is used when no sleep period is configured.
const DefaultSleepPeriod = 30 * time.Minute

// Coordinator replaces the indefinite tick loop with a single
// wake-collect-sleep cycle. Each cycle is externally re-invoked: the
// device wakes the machine, the process runs once, collects from every
// bound source, and hands sleep back to the device.
type Coordinator struct {
	dev    Device
	col    Collector
	period time.Duration
	log    *logger.Logger
}

func NewCoordinator(dev Device, col Collector, period time.Duration, log *logger.Logger) *Coordinator {
	if period <= 0 {
		period = DefaultSleepPeriod
	}

	return &Coordinator{
		dev:    dev,
		col:    col,
		period: period,
		log:    log,
	}
}

// Run performs one probe-collect-sleep cycle. If the device is
// unreachable it logs the condition once and returns an error carrying
// ErrDeviceUnreachable; the caller exits cleanly without collecting,
// on the assumption a human has connected to inspect existing data.
func (c *Coordinator) Run(ctx context.Context) error {
	errFactory := errors.New()

	if err := c.dev.Probe(); err != nil {
		wrapped := errFactory.Wrap(ErrDeviceUnreachable, err).WithData(c.dev.Kind())
		c.log.ErrorWithCode(wrapped).Msg("Power device unreachable; entering browse mode")
		return wrapped
	}

	c.log.Info().Str("device", c.dev.Kind()).Msg("Wake cycle: collecting all sources")
	c.col.CollectAll(ctx)

	c.log.Info().Dur("period", c.period).Msg("Delegating sleep to power device")
	if err := c.dev.Sleep(ctx, c.period); err != nil {
		return errFactory.Wrap(ErrSleepFailed, err)
	}

	return nil
}

// IsSafeExit reports whether err is the degraded browse-mode outcome,
// which the process treats as a clean exit.
func IsSafeExit(err error) bool {
	return errors.HasCode(err, ErrDeviceUnreachable)
}
