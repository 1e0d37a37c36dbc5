package sensor

import (
	"context"
	"os"
	"strconv"
	"strings"

	"codeberg.org/ccs/datalogd/internal/errors"
	"codeberg.org/ccs/datalogd/internal/logger"
)

const loadavgPath = "/proc/loadavg"

// loadavgSource reports the 1, 5 and 15 minute load averages.
type loadavgSource struct {
	name string
	log  *logger.Logger
}

func (s *loadavgSource) Label() string {
	return s.name
}

func (s *loadavgSource) BindLogger(log *logger.Logger) {
	s.log = log
}

func (s *loadavgSource) Sample(_ context.Context) (Sample, error) {
	errFactory := errors.New()

	raw, err := os.ReadFile(loadavgPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrProcRead, err)
	}

	fields := strings.Fields(string(raw))
	if len(fields) < 3 {
		return nil, errFactory.WithData(ErrProcParse, string(raw))
	}

	smp := make(Sample, 0, 3)
	for i, label := range []string{"Load1m", "Load5m", "Load15m"} {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errFactory.Wrap(ErrProcParse, err)
		}
		smp = append(smp, Field{Label: label, Value: v})
	}

	if s.log != nil {
		s.log.Debug().Str("source", s.name).Msg("Sampled load averages")
	}

	return smp, nil
}
