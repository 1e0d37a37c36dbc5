package record_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/logger"
	"codeberg.org/ccs/datalogd/internal/record"
	"codeberg.org/ccs/datalogd/internal/schedule"
	"codeberg.org/ccs/datalogd/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "debug", Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	return log
}

// tickingClock returns a clock advancing one second per call, so every
// rotation lands on a distinct timestamp.
func tickingClock() func() time.Time {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func mkSample(k int) sensor.Sample {
	smp := make(sensor.Sample, 0, k)
	for i := 1; i <= k; i++ {
		smp = append(smp, sensor.Field{Label: fmt.Sprintf("f%d", i), Value: i * 10})
	}
	return smp
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRotationAccounting(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "boiler", Period: 1, RolloverMax: 2}

	// 5 due collections with rollover 2: files hold 2, 2 and 1 rows.
	for i := 0; i < 5; i++ {
		require.NoError(t, rec.Record(d, mkSample(3)))
	}

	assert.Len(t, listFiles(t, dir), 3, "Expected ceil(5/2) files")
	assert.Equal(t, 1, d.RolloverCount, "Active file holds N mod R rows")
	assert.Len(t, readLines(t, d.ActiveFile), 2, "header plus one data row")
}

func TestRotationExactMultiple(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "boiler", Period: 1, RolloverMax: 2}

	for i := 0; i < 4; i++ {
		require.NoError(t, rec.Record(d, mkSample(2)))
	}

	// No further collection occurred, so the full file is still active.
	assert.Len(t, listFiles(t, dir), 2)
	assert.Equal(t, 2, d.RolloverCount)
	assert.Len(t, readLines(t, d.ActiveFile), 3)
}

func TestRolloverZeroRotatesEveryCollection(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "pump", Period: 1}

	for i := 0; i < 3; i++ {
		require.NoError(t, rec.Record(d, mkSample(1)))
	}

	assert.Len(t, listFiles(t, dir), 3)
	assert.Len(t, readLines(t, d.ActiveFile), 2)
}

func TestHeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "well", Period: 1, RolloverMax: 10}

	require.NoError(t, rec.Record(d, mkSample(2)))
	require.NoError(t, rec.Record(d, mkSample(2)))

	lines := readLines(t, d.ActiveFile)
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp (UTC),f1,f2", lines[0])
	for _, line := range lines[1:] {
		assert.False(t, strings.HasPrefix(line, "Timestamp (UTC)"), "header repeated")
	}
}

func TestRoundTrip(t *testing.T) {
	const (
		m = 4
		k = 3
	)
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "tank", Period: 1, RolloverMax: 100}

	for i := 0; i < m; i++ {
		require.NoError(t, rec.Record(d, mkSample(k)))
	}

	lines := readLines(t, d.ActiveFile)
	require.Len(t, lines, m+1, "M data rows plus one header")
	for _, line := range lines {
		assert.Len(t, strings.Split(line, ","), k+1)
	}
}

func TestArityMismatchRejected(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "flow", Period: 1, RolloverMax: 10}

	require.NoError(t, rec.Record(d, mkSample(3)))
	before, err := os.ReadFile(d.ActiveFile)
	require.NoError(t, err)

	err = rec.Record(d, mkSample(2))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, record.ErrArityMismatch))
	assert.Equal(t, 1, d.RolloverCount, "failed write must not count")

	after, readErr := os.ReadFile(d.ActiveFile)
	require.NoError(t, readErr)
	assert.Equal(t, before, after, "file must not be corrupted by a rejected row")

	// The same file keeps accepting well-formed rows.
	require.NoError(t, rec.Record(d, mkSample(3)))
	assert.Len(t, readLines(t, d.ActiveFile), 3)
}

func TestEmptySampleRejected(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "flow", Period: 1, RolloverMax: 10}

	err := rec.Record(d, sensor.Sample{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, record.ErrEmptySample))
	assert.Empty(t, d.ActiveFile)
}

func TestArityRediscoveredAfterRestart(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "gauge", Period: 1, RolloverMax: 10}
	require.NoError(t, rec.Record(d, mkSample(3)))

	// Same active file inherited across a restart that lost FieldCount.
	restored := &schedule.Descriptor{
		Name:          "gauge",
		Period:        1,
		RolloverMax:   10,
		ActiveFile:    d.ActiveFile,
		RolloverCount: d.RolloverCount,
	}

	require.NoError(t, rec.Record(restored, mkSample(3)))
	assert.Equal(t, 3, restored.FieldCount)

	err := rec.Record(restored, mkSample(4))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, record.ErrArityMismatch))
}

func TestPeriodOneRolloverTwoScenario(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "attic", Period: 1, RolloverMax: 2}

	// Ticks 1 and 2 write to file A.
	require.NoError(t, rec.Record(d, mkSample(2)))
	fileA := d.ActiveFile
	require.NoError(t, rec.Record(d, mkSample(2)))
	require.Equal(t, fileA, d.ActiveFile)
	assert.Len(t, readLines(t, fileA), 3, "A holds its header and 2 data rows")

	// Tick 3 opens file B and writes its header before the third row.
	require.NoError(t, rec.Record(d, mkSample(2)))
	require.NotEqual(t, fileA, d.ActiveFile)
	linesB := readLines(t, d.ActiveFile)
	require.Len(t, linesB, 2)
	assert.Equal(t, "Timestamp (UTC),f1,f2", linesB[0])
}

func TestFileNameShape(t *testing.T) {
	dir := t.TempDir()
	rec := record.NewRecorder(dir, newTestLogger(t), record.WithClock(tickingClock()))
	d := &schedule.Descriptor{Name: "attic", Period: 1, RolloverMax: 5}

	require.NoError(t, rec.Record(d, mkSample(1)))

	name := filepath.Base(d.ActiveFile)
	assert.True(t, strings.HasSuffix(name, "_attic"+record.DefaultSuffix), name)
	assert.Regexp(t, `^\d{14}_`, name)
}

func TestFileNameCollisionAvoided(t *testing.T) {
	dir := t.TempDir()
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := record.NewRecorder(dir, newTestLogger(t),
		record.WithClock(func() time.Time { return frozen }))
	d := &schedule.Descriptor{Name: "attic", Period: 1}

	// Rollover 0 rotates every collection within the same second.
	require.NoError(t, rec.Record(d, mkSample(1)))
	first := d.ActiveFile
	require.NoError(t, rec.Record(d, mkSample(1)))

	assert.NotEqual(t, first, d.ActiveFile)
	assert.Len(t, listFiles(t, dir), 2)
}
