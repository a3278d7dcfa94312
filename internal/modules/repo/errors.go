package repo

import "errors"

var (
	// ErrStateConflict means a conditional write found the row no longer
	// in its expected prior state. The caller lost a race; the write is
	// skipped, never forced.
	ErrStateConflict = errors.New("state conflict: stored state changed since read")

	// ErrAlreadyDecided means an approval action targeted an expense
	// that has already been approved or rejected.
	ErrAlreadyDecided = errors.New("expense already decided")
)
