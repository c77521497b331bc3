// Package generator runs the external audio-generation process.
package generator

import "context"

// Request describes one generation run.
type Request struct {
	// Prompt is the text description of the sound.
	Prompt string
	// Duration is the clip length in seconds.
	Duration int
	// VideoRef is an optional local path or URL of the source video.
	VideoRef string
	// OutputPath is where the process must write the audio file.
	OutputPath string
}

// Generator turns a prompt (and optional video) into an audio file.
type Generator interface {
	// Generate runs one generation to completion. It does not check that
	// OutputPath was written; callers verify the artifact.
	Generate(ctx context.Context, req Request) error
}
