package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Static errors for media operations.
var (
	// ErrOutputMissing is returned when ffmpeg exits cleanly but the output
	// file is absent or empty.
	ErrOutputMissing = errors.New("output not produced")
	// ErrMissingInput is returned when an input path is empty.
	ErrMissingInput = errors.New("input path is required")
)

// FFmpegProcessor implements Mixer using the ffmpeg CLI.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// Compile-time check that FFmpegProcessor implements Mixer.
var _ Mixer = (*FFmpegProcessor)(nil)

// NewFFmpegProcessor creates a new FFmpegProcessor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegProcessor(ffmpegPath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath}
}

// Mix muxes audioPath into videoPath. It first attempts a stream copy of the
// video (audio encoded to AAC) and falls back to a full re-encode if the copy
// fails, e.g. for containers that cannot hold the source codec.
func (p *FFmpegProcessor) Mix(ctx context.Context, videoPath, audioPath, output string) error {
	if videoPath == "" || audioPath == "" || output == "" {
		return ErrMissingInput
	}

	err := p.runFFmpeg(ctx, mixCopyArgs(videoPath, audioPath, output))
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		// Fast copy failed, fall back to re-encoding
		if err := p.runFFmpeg(ctx, mixReencodeArgs(videoPath, audioPath, output)); err != nil {
			return err
		}
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrOutputMissing, output)
	}
	return nil
}

// mixCopyArgs keeps the video stream and encodes the generated audio.
func mixCopyArgs(videoPath, audioPath, output string) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", videoPath, // Source video
		"-i", audioPath, // Generated audio
		"-map", "0:v:0", // Video from the first input
		"-map", "1:a:0", // Audio from the second input
		"-c:v", "copy", // Copy video without re-encoding
		"-c:a", "aac", // Audio codec
		"-b:a", "192k", // Audio bitrate
		"-shortest", // Stop at the shorter stream
		output,
	}
}

// mixReencodeArgs re-encodes both streams with libx264/aac.
func mixReencodeArgs(videoPath, audioPath, output string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "libx264", // Video codec
		"-preset", "fast", // Encoding speed preset
		"-crf", "23", // Quality (lower = better, 23 is default)
		"-pix_fmt", "yuv420p", // Pixel format for compatibility
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		output,
	}
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: lastLines(stderr.String(), 20),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nstderr: %s", e.Err, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

// lastLines keeps the final n lines of s; ffmpeg prints its banner first and
// the actual failure last.
func lastLines(s string, n int) string {
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return string(bytes.Join(lines, []byte("\n")))
}
