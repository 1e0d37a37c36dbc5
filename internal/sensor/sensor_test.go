package sensor_test

import (
	"context"
	"runtime"
	"testing"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenUnknownDriver(t *testing.T) {
	_, err := sensor.Open("thermocouple", "house")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, sensor.ErrUnknownDriver))
}

func TestOpenUsesConfiguredName(t *testing.T) {
	src, err := sensor.Open(sensor.DriverLoadavg, "house-load")
	require.NoError(t, err)
	assert.Equal(t, "house-load", src.Label())
}

func TestLoadavgSample(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("loadavg driver reads /proc")
	}

	src, err := sensor.Open(sensor.DriverLoadavg, "load")
	require.NoError(t, err)

	smp, err := src.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Load1m", "Load5m", "Load15m"}, smp.Labels())
	assert.Len(t, smp.Values(), 3)
}

func TestMeminfoSampleDefaults(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("meminfo driver reads /proc")
	}

	src, err := sensor.Open(sensor.DriverMeminfo, "mem")
	require.NoError(t, err)

	smp, err := src.Sample(context.Background())
	require.NoError(t, err)
	require.Len(t, smp, 3)
	assert.Equal(t, "MemTotal (kB)", smp[0].Label)
}

func TestMeminfoConfigureFields(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("meminfo driver reads /proc")
	}

	src, err := sensor.Open(sensor.DriverMeminfo, "mem")
	require.NoError(t, err)

	c, ok := src.(sensor.Configurable)
	require.True(t, ok)
	require.NoError(t, c.Configure(map[string]any{"fields": []any{"MemFree"}}))

	smp, err := src.Sample(context.Background())
	require.NoError(t, err)
	require.Len(t, smp, 1)
	assert.Equal(t, "MemFree (kB)", smp[0].Label)
}

func TestMeminfoConfigureRejectsBadSettings(t *testing.T) {
	src, err := sensor.Open(sensor.DriverMeminfo, "mem")
	require.NoError(t, err)

	c, ok := src.(sensor.Configurable)
	require.True(t, ok)

	err = c.Configure(map[string]any{"fields": 42})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, sensor.ErrBadSettings))

	err = c.Configure(map[string]any{"fields": []any{1, 2}})
	require.Error(t, err)
}

func TestSampleLabelsAndValues(t *testing.T) {
	smp := sensor.Sample{
		{Label: "Temp", Value: 21.5},
		{Label: "Count", Value: 7},
	}
	assert.Equal(t, []string{"Temp", "Count"}, smp.Labels())
	assert.Equal(t, []string{"21.5", "7"}, smp.Values())
}
