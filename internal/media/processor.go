// Package media provides audio/video muxing and video content detection.
package media

import "context"

// Mixer combines a video and an audio track into one output file.
type Mixer interface {
	// Mix replaces the audio of videoPath with audioPath and writes the
	// result to output. A zero exit without an output file is reported as
	// ErrOutputMissing.
	Mix(ctx context.Context, videoPath, audioPath, output string) error
}
