package config

import "codeberg.org/ccs/datalogd/internal/errors"

const (
	// Global Errors
	ErrMissingConfigFile = errors.ErrMissingConfig
	ErrReadConfigFile    = errors.ErrReadConfig
	ErrMissingDataDir    = errors.ErrorCode("config_missing_data_dir")
	ErrInvalidTick       = errors.ErrorCode("config_invalid_tick")

	// Per-source Errors (fatal at startup)
	ErrMissingSourceName = errors.ErrorCode("config_missing_source_name")
	ErrMissingPeriod     = errors.ErrorCode("config_missing_period")
	ErrInvalidRollover   = errors.ErrorCode("config_invalid_rollover")
	ErrDuplicateSource   = errors.ErrorCode("config_duplicate_source")
)
