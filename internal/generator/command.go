package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// maxDiagnosticBytes bounds how much of stderr is kept on failure.
const maxDiagnosticBytes = 4096

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the process itself was killed.
const waitDelay = 2 * time.Second

// ErrEmptyOutputPath is returned when a request has no output path.
var ErrEmptyOutputPath = errors.New("generator: output path is required")

// CommandGenerator implements Generator by running a local command, e.g.
// "python3 ./MMAudioDir/demo.py". Request fields are passed as discrete
// "--flag=value" arguments, never through a shell.
type CommandGenerator struct {
	command  string
	baseArgs []string
	dir      string
}

// Compile-time check that CommandGenerator implements Generator.
var _ Generator = (*CommandGenerator)(nil)

// Option configures a CommandGenerator.
type Option func(*CommandGenerator)

// WithDir sets the working directory of the process.
func WithDir(dir string) Option {
	return func(g *CommandGenerator) {
		g.dir = dir
	}
}

// NewCommandGenerator creates a generator running command with baseArgs
// placed before the request arguments.
// If command is empty, it defaults to "python3".
func NewCommandGenerator(command string, baseArgs []string, opts ...Option) *CommandGenerator {
	if command == "" {
		command = "python3"
	}
	g := &CommandGenerator{
		command:  command,
		baseArgs: append([]string(nil), baseArgs...),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Args returns the full argument list for req.
func (g *CommandGenerator) Args(req Request) []string {
	args := append([]string(nil), g.baseArgs...)
	args = append(args,
		"--duration="+strconv.Itoa(req.Duration),
		"--prompt="+req.Prompt,
	)
	if req.VideoRef != "" {
		args = append(args, "--video="+req.VideoRef)
	}
	return append(args, "--output="+req.OutputPath)
}

// Generate runs the command and waits for it to exit.
// A non-zero exit is returned as *ExitError; when ctx ends first the child
// is killed and the context error is returned wrapped.
func (g *CommandGenerator) Generate(ctx context.Context, req Request) error {
	if req.OutputPath == "" {
		return ErrEmptyOutputPath
	}

	args := g.Args(req)
	// #nosec G204 - command is set by configuration; request data only appears as separate arguments
	cmd := exec.CommandContext(ctx, g.command, args...)
	cmd.Dir = g.dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("generator cancelled: %w", ctx.Err())
	}

	exitErr := &ExitError{
		ExitCode: -1,
		Stderr:   tail(stderr.Bytes(), maxDiagnosticBytes),
		Stdout:   tail(stdout.Bytes(), maxDiagnosticBytes),
		Err:      err,
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		exitErr.ExitCode = ee.ExitCode()
	}
	return exitErr
}

// ExitError reports a generation process that could not start or exited non-zero.
type ExitError struct {
	// ExitCode is -1 when the process never started.
	ExitCode int
	Stderr   string
	Stdout   string
	Err      error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("generator exited with code %d: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("generator exited with code %d: %v", e.ExitCode, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// tail returns the last max bytes of b as trimmed text.
func tail(b []byte, max int) string {
	if len(b) > max {
		b = b[len(b)-max:]
	}
	return string(bytes.TrimSpace(b))
}
