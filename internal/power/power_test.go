package power_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/logger"
	"codeberg.org/ccs/datalogd/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	probeErr error
	sleepErr error

	probes int
	sleeps int
	slept  time.Duration
}

func (*fakeDevice) Kind() string { return "fake" }

func (d *fakeDevice) Probe() error {
	d.probes++
	return d.probeErr
}

func (d *fakeDevice) Sleep(_ context.Context, dur time.Duration) error {
	d.sleeps++
	d.slept = dur
	return d.sleepErr
}

type fakeCollector struct {
	calls int
}

func (c *fakeCollector) CollectAll(_ context.Context) { c.calls++ }

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "debug", Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	return log
}

func TestWakeCycle(t *testing.T) {
	dev := &fakeDevice{}
	col := &fakeCollector{}
	coord := power.NewCoordinator(dev, col, 30*time.Minute, newTestLogger(t))

	require.NoError(t, coord.Run(context.Background()))

	assert.Equal(t, 1, dev.probes)
	assert.Equal(t, 1, col.calls, "every bound source collected exactly once")
	assert.Equal(t, 1, dev.sleeps)
	assert.Equal(t, 30*time.Minute, dev.slept)
}

func TestUnreachableDeviceSafeExit(t *testing.T) {
	dev := &fakeDevice{probeErr: errors.New().New(power.ErrDeviceUnreachable)}
	col := &fakeCollector{}
	log := newTestLogger(t)
	coord := power.NewCoordinator(dev, col, time.Minute, log)

	err := coord.Run(context.Background())
	require.Error(t, err)
	assert.True(t, power.IsSafeExit(err))
	assert.Zero(t, col.calls, "browse mode never collects")
	assert.Zero(t, dev.sleeps)
	assert.Equal(t, 1, log.ErrorCount(), "condition logged once")
}

func TestSleepFailureIsNotSafeExit(t *testing.T) {
	dev := &fakeDevice{sleepErr: errors.New().New(power.ErrSleepFailed)}
	coord := power.NewCoordinator(dev, &fakeCollector{}, time.Minute, newTestLogger(t))

	err := coord.Run(context.Background())
	require.Error(t, err)
	assert.False(t, power.IsSafeExit(err))
}

func TestDefaultSleepPeriod(t *testing.T) {
	dev := &fakeDevice{}
	coord := power.NewCoordinator(dev, &fakeCollector{}, 0, newTestLogger(t))

	require.NoError(t, coord.Run(context.Background()))
	assert.Equal(t, power.DefaultSleepPeriod, dev.slept)
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := power.Open("teleport")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, power.ErrUnknownDevice))
}
