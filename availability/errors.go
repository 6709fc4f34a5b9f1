package availability

import (
	"fmt"
	"time"
)

// ValidationError rejects malformed or unacceptable booking input.
// It is never worth retrying without changing the request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConflictError means the requested slot was taken between the availability
// read and the commit. The caller should re-query availability and retry.
type ConflictError struct {
	ScheduledAt time.Time
}

func (e *ConflictError) Error() string {
	return "that slot was just taken, please pick another"
}

// StorageError wraps a failure of an underlying store. It is distinct from
// an empty slot list and is not retried by the engine.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
