package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"codeberg.org/ccs/datalogd/internal/errors"
	"github.com/rs/zerolog"
)

const (
	logFileName = "datalogd.log"

	// DefaultBudget caps how many informational and how many error
	// events one run may emit before the sink goes quiet.
	DefaultBudget = 20

	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// Config controls log destination, level and per-run event budgets.
type Config struct {
	Level       string
	Dir         string    // log file directory; empty means stderr only
	InfoBudget  int       // <=0 means DefaultBudget
	ErrorBudget int       // <=0 means DefaultBudget
	Writer      io.Writer // overrides stderr/file output when set
}

// Logger wraps zerolog with separately bounded budgets for
// informational and error events. Once a budget is exhausted a single
// sentinel line is written and further events of that class are
// discarded. Debug and warning events are not budgeted.
type Logger struct {
	zl   zerolog.Logger
	nop  zerolog.Logger
	file *os.File

	mu         sync.Mutex
	infoBudget int
	errBudget  int
	infoLeft   int
	errLeft    int
	infoMuted  bool
	errMuted   bool
}

// New initializes a logger from the given configuration.
func New(cfg Config) (*Logger, error) {
	errFactory := errors.New()

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidLogLevel, err)
	}

	l := &Logger{
		nop:      zerolog.Nop(),
		infoLeft: cfg.InfoBudget,
		errLeft:  cfg.ErrorBudget,
	}
	if l.infoLeft <= 0 {
		l.infoLeft = DefaultBudget
	}
	if l.errLeft <= 0 {
		l.errLeft = DefaultBudget
	}
	l.infoBudget = l.infoLeft
	l.errBudget = l.errLeft

	var out io.Writer
	switch {
	case cfg.Writer != nil:
		out = consoleWriter(cfg.Writer)
	case cfg.Dir != "":
		if err := os.MkdirAll(cfg.Dir, defaultDirPerm); err != nil {
			return nil, errFactory.Wrap(errors.ErrInitFailed, err)
		}
		path := filepath.Join(cfg.Dir, logFileName)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, defaultFilePerm)
		if err != nil {
			return nil, errFactory.Wrap(errors.ErrInitFailed, err)
		}
		l.file = f
		out = zerolog.MultiLevelWriter(consoleWriter(os.Stderr), consoleWriter(f))
	default:
		out = consoleWriter(os.Stderr)
	}

	l.zl = zerolog.New(out).Level(lvl).With().Timestamp().Logger()

	return l, nil
}

// consoleWriter renders events as "<timestamp> [<tag>] <message>" lines.
func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("[%s]", i))
		},
	}
}

// Debug logs a debug message
func (l *Logger) Debug() *zerolog.Event {
	return l.zl.Debug()
}

// Info logs an informational message, consuming one unit of the info
// budget. Returns a discarded event once the budget is exhausted.
func (l *Logger) Info() *zerolog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.infoLeft <= 0 {
		if !l.infoMuted {
			l.infoMuted = true
			l.zl.Warn().Msg("info budget exhausted; suppressing further informational messages")
		}
		return l.nop.Info()
	}
	l.infoLeft--

	return l.zl.Info()
}

// Warn logs a warning message
func (l *Logger) Warn() *zerolog.Event {
	return l.zl.Warn()
}

// Error logs an error message, consuming one unit of the error budget.
// Returns a discarded event once the budget is exhausted.
func (l *Logger) Error() *zerolog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.errLeft <= 0 {
		if !l.errMuted {
			l.errMuted = true
			l.zl.Warn().Msg("error budget exhausted; suppressing further error messages")
		}
		return l.nop.Error()
	}
	l.errLeft--

	return l.zl.Error()
}

// ErrorWithCode logs an error message tagged with its domain error code.
func (l *Logger) ErrorWithCode(err errors.Error) *zerolog.Event {
	return l.Error().
		Str("error_code", string(err.Code())).
		AnErr("error", err)
}

// Fatal logs a fatal message and exits the program
func (l *Logger) Fatal() *zerolog.Event {
	return l.zl.Fatal()
}

// ErrorCount returns how many units of the error budget were consumed.
func (l *Logger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.errBudget - l.errLeft
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	return l.file.Close()
}
