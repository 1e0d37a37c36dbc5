package sensor

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"codeberg.org/ccs/datalogd/internal/errors"
)

const meminfoPath = "/proc/meminfo"

var defaultMeminfoFields = []string{"MemTotal", "MemFree", "MemAvailable"}

// meminfoSource reports selected rows of /proc/meminfo in kilobytes.
// The row set is configurable through the "fields" setting.
type meminfoSource struct {
	name   string
	fields []string
}

func newMeminfoSource(name string) *meminfoSource {
	return &meminfoSource{
		name:   name,
		fields: defaultMeminfoFields,
	}
}

func (s *meminfoSource) Label() string {
	return s.name
}

// Configure accepts an optional "fields" list naming the meminfo rows
// to report, in report order.
func (s *meminfoSource) Configure(settings map[string]any) error {
	errFactory := errors.New()

	raw, ok := settings["fields"]
	if !ok {
		return nil
	}

	list, ok := raw.([]any)
	if !ok {
		// TOML string arrays may already decode as []string.
		if typed, ok := raw.([]string); ok {
			s.fields = typed
			return nil
		}
		return errFactory.WithData(ErrBadSettings, raw)
	}

	fields := make([]string, 0, len(list))
	for _, item := range list {
		str, ok := item.(string)
		if !ok {
			return errFactory.WithData(ErrBadSettings, item)
		}
		fields = append(fields, str)
	}
	if len(fields) == 0 {
		return errFactory.WithMessage(ErrBadSettings, "fields list is empty")
	}
	s.fields = fields

	return nil
}

func (s *meminfoSource) Sample(_ context.Context) (Sample, error) {
	errFactory := errors.New()

	f, err := os.Open(meminfoPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrProcRead, err)
	}
	defer f.Close()

	values := make(map[string]int64, len(s.fields))
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name, rest, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		parts := strings.Fields(rest)
		if len(parts) == 0 {
			continue
		}
		v, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		values[name] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, errFactory.Wrap(ErrProcRead, err)
	}

	smp := make(Sample, 0, len(s.fields))
	for _, field := range s.fields {
		v, ok := values[field]
		if !ok {
			return nil, errFactory.WithData(ErrProcParse, field)
		}
		smp = append(smp, Field{Label: field + " (kB)", Value: v})
	}

	return smp, nil
}
