package state

import "codeberg.org/ccs/datalogd/internal/errors"

const (
	// Configuration Errors
	ErrInvalidDBPath = errors.ErrorCode("state_invalid_db_path")

	// Storage Errors
	ErrStorageInit   = errors.ErrorCode("state_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("state_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("state_storage_close_failed")
	ErrSchemaInit    = errors.ErrorCode("state_schema_init_failed")
)
