package schedule

import "codeberg.org/ccs/datalogd/internal/errors"

const (
	// Registration Errors
	ErrInvalidDescriptor = errors.ErrorCode("schedule_invalid_descriptor")
	ErrMissingPeriod     = errors.ErrorCode("schedule_missing_period")
	ErrDuplicateSource   = errors.ErrorCode("schedule_duplicate_source")

	// Binding Errors
	ErrUnboundSource = errors.ErrorCode("schedule_unbound_source")
	ErrConfigureBind = errors.ErrorCode("schedule_configure_failed")

	// Run Errors
	ErrInvalidQuantum = errors.ErrorCode("schedule_invalid_quantum")
	ErrCollectFailed  = errors.ErrorCode("schedule_collect_failed")
	ErrRecordFailed   = errors.ErrorCode("schedule_record_failed")
)
