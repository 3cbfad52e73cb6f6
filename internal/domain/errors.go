package domain

import (
	"errors"
	"fmt"
)

// Failure classifies why an invocation could not produce predictions.
type Failure int

const (
	// FailureInternal covers anything not classified below.
	FailureInternal Failure = iota
	// FailureArtifact means a model artifact is missing or corrupt.
	FailureArtifact
	// FailureInput means the input file is missing, empty or malformed.
	FailureInput
	// FailureType means a non-numeric value reached a numeric stage.
	FailureType
)

func (f Failure) String() string {
	switch f {
	case FailureArtifact:
		return "artifact"
	case FailureInput:
		return "input"
	case FailureType:
		return "type"
	default:
		return "internal"
	}
}

var (
	// ErrEmptyInput is returned for an input file with no content at all.
	ErrEmptyInput = errors.New("input file is empty")
	// ErrNoRows is returned for an input file with a header and no data rows.
	ErrNoRows = errors.New("input file has no data rows")
)

// Error is a classified failure raised by a named operation.
type Error struct {
	Failure Failure
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fail wraps err with a failure kind and the operation that raised it.
func Fail(f Failure, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Failure: f, Op: op, Err: err}
}

// Failf is Fail with a formatted message.
func Failf(f Failure, op, format string, args ...any) error {
	return &Error{Failure: f, Op: op, Err: fmt.Errorf(format, args...)}
}

// FailureOf reports the failure kind carried by err. The outermost classified
// error wins; unclassified errors are internal.
func FailureOf(err error) Failure {
	var e *Error
	if errors.As(err, &e) {
		return e.Failure
	}
	return FailureInternal
}
