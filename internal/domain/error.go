package domain

import (
	"errors"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound                = errors.New("entity not found")
	ErrAlreadyExists           = errors.New("entity already exists")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrPreconditionFailed      = errors.New("precondition failed")
	ErrLockNotAcquired         = errors.New("lock not acquired")
	ErrReadDatabaseRow         = errors.New("failed to read database row")
	ErrUnregisteredPayloadType = errors.New("unregistered payload type")
	ErrInvalidPayload          = errors.New("invalid message payload")
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects every field issue found while validating an input.
// It matches ErrInvalidArgument with errors.Is.
type ValidationError struct{ Issues []ValidationIssue }

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrInvalidArgument.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Reason)
	}
	return ErrInvalidArgument.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidArgument }

func (e *ValidationError) Add(field, reason string) {
	e.Issues = append(e.Issues, ValidationIssue{Field: field, Reason: reason})
}

// OrNil returns nil when no issue was recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// PreconditionError reports a state that does not allow the requested transition.
type PreconditionError struct {
	Check    string
	Expected string
	Actual   string
}

func (e *PreconditionError) Error() string {
	return ErrPreconditionFailed.Error() + ": " + e.Check + " expected " + e.Expected + ", got " + e.Actual
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPreconditionFailed }

// IsRetryable reports whether a failed task should be redelivered.
// Malformed input never becomes valid on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrInvalidArgument) && !errors.Is(err, ErrInvalidPayload)
}
