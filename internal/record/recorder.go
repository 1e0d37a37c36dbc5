package record

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/logger"
	"codeberg.org/ccs/datalogd/internal/schedule"
	"codeberg.org/ccs/datalogd/internal/sensor"
)

const (
	// DefaultSuffix terminates every output file name.
	DefaultSuffix = "_datalog.csv"

	headerPrefix = "Timestamp (UTC)"

	fileNameTimeFormat = "20060102150405"
	rowTimeFormat      = "2006-01-02 15:04:05"

	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// Recorder appends samples to rolling CSV files. Each descriptor owns
// exactly one active file at a time; the recorder is the only writer.
type Recorder struct {
	dataDir string
	suffix  string
	log     *logger.Logger
	now     func() time.Time
}

// Option tunes a Recorder.
type Option func(*Recorder)

// WithSuffix overrides the output file suffix.
func WithSuffix(suffix string) Option {
	return func(r *Recorder) {
		r.suffix = suffix
	}
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func NewRecorder(dataDir string, log *logger.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		dataDir: dataDir,
		suffix:  DefaultSuffix,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Record appends one sample to the descriptor's active file, rotating
// first when the file is unset or its rollover budget is spent. The
// header is written exactly once, when the file is empty before the
// write. The data row is composed in one buffer and written in one
// call, so a failed write never leaves a partial row behind.
func (r *Recorder) Record(d *schedule.Descriptor, smp sensor.Sample) error {
	errFactory := errors.New()

	if len(smp) == 0 {
		return errFactory.WithData(ErrEmptySample, d.Name)
	}

	if d.ActiveFile == "" || d.RolloverCount >= d.RolloverMax {
		if err := r.rotate(d); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(d.ActiveFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return errFactory.Wrap(ErrFileOpen, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return errFactory.Wrap(ErrFileStat, err)
	}

	var buf bytes.Buffer
	if st.Size() == 0 {
		writeHeader(&buf, smp)
		d.FieldCount = len(smp)
	} else if d.FieldCount == 0 {
		// Active file inherited without state; rediscover its arity.
		arity, err := headerArity(d.ActiveFile)
		if err != nil {
			return errFactory.Wrap(ErrHeaderRead, err)
		}
		d.FieldCount = arity
	}

	if len(smp) != d.FieldCount {
		return errFactory.WithData(ErrArityMismatch, struct {
			Source string
			Want   int
			Got    int
		}{
			Source: d.Name,
			Want:   d.FieldCount,
			Got:    len(smp),
		})
	}

	writeRow(&buf, r.now(), smp)

	if _, err := f.Write(buf.Bytes()); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	d.RolloverCount++

	return nil
}

// rotate points the descriptor at a fresh file path and resets its
// per-file counters. The file itself is created lazily by the write.
func (r *Recorder) rotate(d *schedule.Descriptor) error {
	errFactory := errors.New()

	if err := os.MkdirAll(r.dataDir, defaultDirPerm); err != nil {
		return errFactory.Wrap(ErrDataDirInit, err)
	}

	stamp := r.now().UTC().Format(fileNameTimeFormat)
	base := stamp + "_" + d.Name
	path := filepath.Join(r.dataDir, base+r.suffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		} else if err != nil {
			return errFactory.Wrap(ErrRotateFailed, err)
		}
		path = filepath.Join(r.dataDir, base+"_"+strconv.Itoa(n)+r.suffix)
	}

	previous := d.ActiveFile
	d.ActiveFile = path
	d.RolloverCount = 0
	d.FieldCount = 0

	if previous != "" {
		r.log.Debug().Str("source", d.Name).Str("file", path).Msg("Rotated output file")
	}

	return nil
}

func writeHeader(buf *bytes.Buffer, smp sensor.Sample) {
	buf.WriteString(headerPrefix)
	for _, label := range smp.Labels() {
		buf.WriteByte(',')
		buf.WriteString(label)
	}
	buf.WriteByte('\n')
}

func writeRow(buf *bytes.Buffer, now time.Time, smp sensor.Sample) {
	buf.WriteString(now.Format(rowTimeFormat))
	for _, value := range smp.Values() {
		buf.WriteByte(',')
		buf.WriteString(value)
	}
	buf.WriteByte('\n')
}

// headerArity counts the value columns declared by an existing file's
// header row (the leading column is the timestamp).
func headerArity(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return 0, err
	}

	return strings.Count(line, ","), nil
}
