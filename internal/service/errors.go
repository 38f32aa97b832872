package service

import "errors"

// Lifecycle errors. Callers match them with errors.Is; the wrapped message
// carries the detail.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidState       = errors.New("invalid state")
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrConflict means the removal changed underneath the operation. Retrying
	// the whole operation against fresh state is safe.
	ErrConflict = errors.New("concurrent modification")
)
