package record

import "codeberg.org/ccs/datalogd/internal/errors"

const (
	// Input Errors
	ErrEmptySample   = errors.ErrorCode("record_empty_sample")
	ErrArityMismatch = errors.ErrorCode("record_arity_mismatch")

	// Filesystem Errors
	ErrDataDirInit  = errors.ErrorCode("record_data_dir_init_failed")
	ErrFileOpen     = errors.ErrorCode("record_file_open_failed")
	ErrFileStat     = errors.ErrorCode("record_file_stat_failed")
	ErrHeaderRead   = errors.ErrorCode("record_header_read_failed")
	ErrWriteFailed  = errors.ErrorCode("record_write_failed")
	ErrRotateFailed = errors.ErrorCode("record_rotate_failed")
)
