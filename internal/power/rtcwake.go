package power

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"time"

	"codeberg.org/ccs/datalogd/internal/errors"
)

// Device kinds resolvable by Open.
const KindRtcwake = "rtcwake"

const rtcDeviceNode = "/sys/class/rtc/rtc0"

// Open resolves a configured device kind to a driver.
func Open(kind string) (Device, error) {
	switch kind {
	case KindRtcwake:
		return &rtcwakeDevice{}, nil
	default:
		return nil, errors.New().WithData(ErrUnknownDevice, kind)
	}
}

// rtcwakeDevice suspends the machine to RAM via util-linux rtcwake,
// programming the RTC to wake it after the sleep period.
type rtcwakeDevice struct{}

func (*rtcwakeDevice) Kind() string {
	return KindRtcwake
}

func (*rtcwakeDevice) Probe() error {
	errFactory := errors.New()

	if _, err := exec.LookPath("rtcwake"); err != nil {
		return errFactory.Wrap(ErrDeviceUnreachable, err)
	}
	if _, err := os.Stat(rtcDeviceNode); err != nil {
		return errFactory.Wrap(ErrDeviceUnreachable, err)
	}

	return nil
}

func (*rtcwakeDevice) Sleep(ctx context.Context, d time.Duration) error {
	errFactory := errors.New()

	seconds := int(d / time.Second)
	if seconds < 1 {
		return errFactory.WithData(ErrInvalidSleepPeriod, d.String())
	}

	cmd := exec.CommandContext(ctx, "rtcwake", "-m", "mem", "-s", strconv.Itoa(seconds))
	if out, err := cmd.CombinedOutput(); err != nil {
		return errFactory.Wrap(ErrSleepFailed, err).WithData(string(out))
	}

	return nil
}
