package sensor

import "codeberg.org/ccs/datalogd/internal/errors"

const (
	// Driver Errors
	ErrUnknownDriver = errors.ErrorCode("sensor_unknown_driver")
	ErrBadSettings   = errors.ErrorCode("sensor_bad_settings")

	// Collection Errors
	ErrSampleFailed = errors.ErrorCode("sensor_sample_failed")
	ErrProcRead     = errors.ErrorCode("sensor_proc_read_failed")
	ErrProcParse    = errors.ErrorCode("sensor_proc_parse_failed")
)
