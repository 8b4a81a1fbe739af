// Package ffmpeg wraps the external media tools: probing durations and
// keyframes via ffprobe and extracting preview frames via ffmpeg.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// EnvHome is the environment variable pointing at an ffmpeg installation
// whose bin/ directory contains the ffmpeg and ffprobe binaries.
const EnvHome = "FFMPEG_HOME"

// Tools holds the resolved binary paths.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// Resolve locates the ffmpeg and ffprobe binaries. FFMPEG_HOME takes
// precedence over PATH lookup; getenv is injectable for testing.
func Resolve(getenv func(string) string) (Tools, error) {
	if home := strings.TrimSpace(getenv(EnvHome)); home != "" {
		return Tools{
			FFmpeg:  filepath.Join(home, "bin", "ffmpeg"),
			FFprobe: filepath.Join(home, "bin", "ffprobe"),
		}, nil
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return Tools{}, fmt.Errorf("%w: install ffmpeg or set %s", ErrNotFound, EnvHome)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return Tools{}, fmt.Errorf("%w: ffprobe missing next to ffmpeg", ErrNotFound)
	}
	return Tools{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

// CheckVersion probes the resolved ffmpeg binary and returns its banner
// line. Best effort: an empty string means the version could not be read.
func CheckVersion(ctx context.Context, ffmpegPath string) string {
	out, err := exec.CommandContext(ctx, ffmpegPath, "-version").Output()
	if err != nil {
		return ""
	}
	if i := strings.IndexByte(string(out), '\n'); i > 0 {
		return string(out[:i])
	}
	return strings.TrimSpace(string(out))
}
