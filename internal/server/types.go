// Package server provides the HTTP server for the sound-effect generation API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "time"

// GenerateResponse is the HTTP response of a completed generation request.
type GenerateResponse struct {
	// Status is always "done".
	Status string `json:"status"`
	// AudioURL is the public URL of the generated audio.
	AudioURL string `json:"audio_url"`
	// VideoURL is the public URL of the mixed video, empty when no mix was produced.
	VideoURL string `json:"video_url"`
	// DatabaseID is the job record identifier.
	DatabaseID string `json:"database_id"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	Prompt         string     `json:"prompt"`
	Duration       int        `json:"duration"`
	SourceVideoURL string     `json:"source_video_url,omitempty"`
	AudioURL       string     `json:"audio_url,omitempty"`
	VideoURL       string     `json:"video_url,omitempty"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
	// DatabaseID is the failed job record, when one was created.
	DatabaseID string `json:"database_id,omitempty"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
