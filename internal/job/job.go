// Package job provides the Job aggregate for sound-effect generation requests,
// the record store adapters that persist it, and the Service that drives a
// request through its lifecycle.
package job

import (
	"errors"
	"time"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusProcessing indicates the job record exists and work is under way.
	StatusProcessing Status = "processing"
	// StatusCompleted indicates generation finished and results were published.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the job ended with an error.
	StatusFailed Status = "failed"
)

// IsTerminal returns true if no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Errors returned by state changes on a Job.
var (
	// ErrInvalidTransition is returned when an invalid state transition is attempted.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrMissingResultURL is returned when completing a job without any result URL.
	ErrMissingResultURL = errors.New("completed job requires a result URL")
	// ErrMissingErrorMessage is returned when failing a job without a message.
	ErrMissingErrorMessage = errors.New("failed job requires an error message")
)

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DefaultDuration is the generated clip length in seconds when none is given.
const DefaultDuration = 8

// Job represents one generation request and its lifecycle.
type Job struct {
	// ID is assigned by the Repository on Create and never changes.
	ID string
	// Prompt is the text description of the sound to generate.
	Prompt string
	// Duration is the requested clip length in seconds.
	Duration int
	// Status is the current job state.
	Status Status
	// SourceVideoURL is set once the uploaded source video is persisted.
	SourceVideoURL string
	// AudioURL is the public URL of the generated audio.
	AudioURL string
	// VideoURL is the public URL of the source video muxed with the generated audio.
	VideoURL string
	// ErrorMessage describes why the job failed.
	ErrorMessage string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// CompletedAt is when the job reached a terminal status.
	CompletedAt time.Time
}

// New creates a processing Job for prompt. The ID is left empty for the
// Repository to assign.
func New(prompt string, duration int) *Job {
	now := time.Now().UTC()
	return &Job{
		Prompt:    prompt,
		Duration:  duration,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply applies a partial update to the job, enforcing status invariants.
// Terminal jobs accept no further updates.
func (j *Job) Apply(u Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if j.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	if u.Status != nil && !canTransition(j.Status, *u.Status) {
		return ErrInvalidTransition
	}

	if u.SourceVideoURL != nil {
		j.SourceVideoURL = *u.SourceVideoURL
	}
	if u.AudioURL != nil {
		j.AudioURL = *u.AudioURL
	}
	if u.VideoURL != nil {
		j.VideoURL = *u.VideoURL
	}
	if u.ErrorMessage != nil {
		j.ErrorMessage = *u.ErrorMessage
	}
	j.UpdatedAt = time.Now().UTC()
	if u.Status != nil {
		j.Status = *u.Status
		j.CompletedAt = j.UpdatedAt
	}
	return nil
}

// Complete transitions the job to COMPLETED with its result URLs.
func (j *Job) Complete(audioURL, videoURL string) error {
	return j.Apply(Completed(audioURL, videoURL))
}

// Fail transitions the job to FAILED with an error message.
func (j *Job) Fail(errMsg string) error {
	return j.Apply(Failed(errMsg))
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Clone creates a copy of the job for safe reads.
func (j *Job) Clone() *Job {
	c := *j
	return &c
}
