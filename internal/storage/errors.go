package storage

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrStorage matches every error returned by an ArtifactStore.
var ErrStorage = errors.New("storage error")

// Error describes a failed artifact store operation.
type Error struct {
	Op     string
	Bucket string
	Key    string
	// Code is the service error code when the store reported one.
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("storage %s %s/%s: %s: %v", e.Op, e.Bucket, e.Key, e.Code, e.Err)
	}
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrStorage as a match so callers can classify without a type switch.
func (e *Error) Is(target error) bool {
	return target == ErrStorage
}

// normalizeError folds SDK errors into *Error. Service-side rejections carry
// their API error code; transport failures are wrapped as-is.
func normalizeError(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	out := &Error{Op: op, Bucket: bucket, Key: key, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		out.Code = apiErr.ErrorCode()
		if msg := apiErr.ErrorMessage(); msg != "" {
			out.Err = fmt.Errorf("%s: %w", msg, err)
		}
	}
	return out
}
