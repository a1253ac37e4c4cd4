package maintenance

import (
	"errors"
	"fmt"

	"maintplane/internal/store"
)

var (
	// ErrConfigurationMissing means an asset type has no usable frequency or
	// approval chain. Batch runs skip or bypass; callers should fix the config.
	ErrConfigurationMissing = errors.New("maintenance configuration missing")

	// ErrInvalidTransition means the requested action does not apply to the
	// workflow's current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrAuthorizationDenied means the caller does not hold the job role of the step.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrDuplicateCycle means the asset already holds an open cycle.
	ErrDuplicateCycle = errors.New("duplicate maintenance cycle")

	// ErrPersistenceFailure wraps errors from the underlying store.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// Error kinds reported to API callers.
const (
	KindConfigurationMissing = "configuration_missing"
	KindInvalidTransition    = "invalid_transition"
	KindAuthorizationDenied  = "authorization_denied"
	KindDuplicateCycle       = "duplicate_cycle"
	KindPersistenceFailure   = "persistence_failure"
	KindNotFound             = "not_found"
	KindUnknown              = "unknown"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return KindConfigurationMissing
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrAuthorizationDenied):
		return KindAuthorizationDenied
	case errors.Is(err, ErrDuplicateCycle):
		return KindDuplicateCycle
	case errors.Is(err, ErrPersistenceFailure):
		return KindPersistenceFailure
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	}
	return KindUnknown
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistenceFailure, err)
}
