package types

import "errors"

var (
	// ErrBadRequest is returned when a required field is missing or malformed
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound is returned when a record or key does not exist
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable is returned when the attachment backend rejects an upload
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrPersistenceFailed is returned when the chat log append or read fails
	// after preconditions already passed
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrConflict is returned when the resource conflicts (e.g. update of old revision)
	ErrConflict = errors.New("conflict")

	// ErrInternal (for unhandled exceptions)
	ErrInternal = errors.New("internal error")
)
