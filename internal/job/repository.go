package job

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a job cannot be found by ID.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotUpdated is returned when an update matched no record, either
	// because the ID is unknown or because the job is already terminal.
	ErrJobNotUpdated = errors.New("job not updated: unknown id or terminal status")
	// ErrRecord matches every error returned by a Repository.
	ErrRecord = errors.New("record store error")
)

// RecordError describes a failed record store operation.
type RecordError struct {
	Op  string
	ID  string
	Err error
}

func (e *RecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("record %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is reports ErrRecord as a match so callers can classify without a type switch.
func (e *RecordError) Is(target error) bool {
	return target == ErrRecord
}

func recordError(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var re *RecordError
	if errors.As(err, &re) {
		return re
	}
	return &RecordError{Op: op, ID: id, Err: err}
}

// Repository is the metadata store for job records.
// Every error it returns is a *RecordError.
type Repository interface {
	// Create inserts job, assigns its ID and returns it.
	Create(ctx context.Context, job *Job) (string, error)

	// Update applies a partial update to the job with the given ID.
	// Status changes are only applied to jobs that are still processing.
	Update(ctx context.Context, id string, u Update) error

	// FindByID retrieves a job by its unique identifier.
	// The error wraps ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)
}
