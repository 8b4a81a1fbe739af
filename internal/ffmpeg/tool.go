package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// runOutputFn runs a command and returns its stdout.
type runOutputFn func(ctx context.Context, bin string, args []string) (string, error)

// runLinesFn runs a command and streams stdout line by line to onLine.
type runLinesFn func(ctx context.Context, bin string, args []string, onLine func(string) error) error

// runFn runs a command to completion, returning trimmed stderr on failure.
type runFn func(ctx context.Context, bin string, args []string) error

// Tool invokes ffmpeg/ffprobe with injectable runners.
type Tool struct {
	tools     Tools
	runOutput runOutputFn
	runLines  runLinesFn
	run       runFn
}

// ToolOption configures a Tool.
type ToolOption func(*Tool)

// WithRunOutput overrides the output-capturing runner (for testing).
func WithRunOutput(fn runOutputFn) ToolOption {
	return func(t *Tool) { t.runOutput = fn }
}

// WithRunLines overrides the line-streaming runner (for testing).
func WithRunLines(fn runLinesFn) ToolOption {
	return func(t *Tool) { t.runLines = fn }
}

// WithRun overrides the plain runner (for testing).
func WithRun(fn runFn) ToolOption {
	return func(t *Tool) { t.run = fn }
}

// NewTool creates a Tool around the resolved binaries.
func NewTool(tools Tools, opts ...ToolOption) *Tool {
	t := &Tool{
		tools:     tools,
		runOutput: defaultRunOutput,
		runLines:  defaultRunLines,
		run:       defaultRun,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Duration returns the total duration of the media file in seconds.
func (t *Tool) Duration(ctx context.Context, input string) (float64, error) {
	args := []string{
		"-i", input,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0",
	}
	out, err := t.runOutput(ctx, t.tools.FFprobe, args)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("probe duration %q: %w", strings.TrimSpace(out), ErrParse)
	}
	return dur, nil
}

// Keyframes returns the ascending keyframe timestamps of the first video
// stream in seconds.
func (t *Tool) Keyframes(ctx context.Context, input string) ([]float64, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-skip_frame", "nokey",
		"-select_streams", "v:0",
		"-show_entries", "frame=pts_time",
		"-of", "csv=p=0",
		input,
	}

	var keyframes []float64
	err := t.runLines(ctx, t.tools.FFprobe, args, func(line string) error {
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		pts, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return fmt.Errorf("keyframe timestamp %q: %w", line, ErrParse)
		}
		keyframes = append(keyframes, pts)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("probe keyframes: %w", err)
	}
	return keyframes, nil
}

// ExtractFrames extracts the frames selected by the range into outDir as
// millisecond-timestamped JPEG files.
func (t *Tool) ExtractFrames(ctx context.Context, input, outDir string, r StreamRange) error {
	args := r.args(input, outDir)
	if err := t.run(ctx, t.tools.FFmpeg, args); err != nil {
		return fmt.Errorf("extract frames: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Default runners - production implementations over os/exec
// ---------------------------------------------------------------------------

func defaultRunOutput(ctx context.Context, bin string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrProcessFailed, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func defaultRunLines(ctx context.Context, bin string, args []string, onLine func(string) error) error {
	cmd := exec.CommandContext(ctx, bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", bin, err)
	}

	scanner := bufio.NewScanner(stdout)
	var lineErr error
	for scanner.Scan() {
		if lineErr = onLine(scanner.Text()); lineErr != nil {
			break
		}
	}

	waitErr := cmd.Wait()
	if lineErr != nil {
		return lineErr
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s output: %w", bin, err)
	}
	if waitErr != nil {
		return fmt.Errorf("%w: %s: %s", ErrProcessFailed, waitErr, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func defaultRun(ctx context.Context, bin string, args []string) error {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrProcessFailed, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
