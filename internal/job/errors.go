package job

import (
	"errors"
	"fmt"
)

// Kind classifies a job failure by its origin.
type Kind string

const (
	// KindValidation is bad input the caller can correct.
	KindValidation Kind = "validation"
	// KindStorage is an artifact store failure.
	KindStorage Kind = "storage"
	// KindRecord is a record store failure.
	KindRecord Kind = "record"
	// KindGeneration is a failed or empty run of the generation process.
	KindGeneration Kind = "generation"
	// KindMixing is a failed or empty run of the mixing process.
	KindMixing Kind = "mixing"
	// KindTimeout is a subprocess killed after exceeding its time limit.
	KindTimeout Kind = "timeout"
	// KindInternal is anything unanticipated.
	KindInternal Kind = "internal"
)

var kindPrefixes = map[Kind]string{
	KindValidation: "validation failed",
	KindStorage:    "storage error",
	KindRecord:     "record store error",
	KindGeneration: "generation failed",
	KindMixing:     "mixing failed",
	KindTimeout:    "timed out",
	KindInternal:   "internal error",
}

// Error is the only error type returned by Service.Generate.
// Its message names the failing dependency and is what gets stored as the
// job's error message.
type Error struct {
	Kind Kind
	// JobID is the record the failure was attributed to, if one was created.
	JobID string
	Err   error
}

func (e *Error) Error() string {
	prefix, ok := kindPrefixes[e.Kind]
	if !ok {
		prefix = string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var je *Error
	if errors.As(err, &je) {
		return je.Kind
	}
	return KindInternal
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}
