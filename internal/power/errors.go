package power

import "codeberg.org/ccs/datalogd/internal/errors"

const (
	// Device Errors
	ErrUnknownDevice      = errors.ErrorCode("power_unknown_device")
	ErrDeviceUnreachable  = errors.ErrorCode("power_device_unreachable")
	ErrSleepFailed        = errors.ErrorCode("power_sleep_failed")
	ErrInvalidSleepPeriod = errors.ErrorCode("power_invalid_sleep_period")
)
