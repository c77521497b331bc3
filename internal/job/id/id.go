// Package id provides unique identifier generation for jobs.
package id

import "github.com/google/uuid"

// Prefix starts every job ID.
const Prefix = "job-"

// Generate creates a new unique job ID.
// Format: job-<uuid v7>, so IDs sort by creation time.
// Example: job-01936b2e-7c1a-7f3e-9a4b-2f6d8e0c1b5a
func Generate() string {
	u, err := uuid.NewV7()
	if err != nil {
		// Fallback to a random UUID if the clock-based one cannot be built
		return Prefix + uuid.NewString()
	}
	return Prefix + u.String()
}
