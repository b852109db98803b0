package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a rating that fails validation before any write.
	ErrInvalidInput = errors.New("invalid evaluation input")

	ErrSessionNotFound = errors.New("session not found")
	ErrNoCurrentItem   = errors.New("session has no current item")
	ErrNoPreviousItem  = errors.New("session has no previous item")
	ErrNotRated        = errors.New("current item has no recorded score")
	ErrItemNotFound    = errors.New("audio item not found in session catalog")
)

// ConfigError is a missing required setting or an unreachable backend.
// Fatal to the current operation, never retried automatically.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("configuration: %s: %v", e.Op, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// TransientError is a network failure against the object store, the document
// store, or a signed-URL fetch. Safe to retry: all writes are idempotent
// upserts keyed by session+item.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %s: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsTransientError(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
