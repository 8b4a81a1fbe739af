// Package audio provides raw sample access for cross-correlation and
// fingerprinting: a decoded mono/stereo float stream plus chunk iteration
// helpers.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
)

// ReadSamples decodes the audio track of path into float32 samples at the
// requested rate and channel count. WAV files already in the target format
// decode in-process; everything else is piped through ffmpeg as f32le PCM.
func ReadSamples(ctx context.Context, ffmpegPath, path string, rate, channels int) ([]float32, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		if samples, ok := readWAV(path, rate, channels); ok {
			return samples, nil
		}
	}

	if ffmpegPath == "" {
		return nil, fmt.Errorf("read samples %s: ffmpeg required: %w", path, ErrNoSamples)
	}

	args := sampleArgs(path, rate, channels)
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("read samples %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	samples := parseSamples(stdout.Bytes())
	if len(samples) == 0 {
		return nil, fmt.Errorf("read samples %s: %w", path, ErrNoSamples)
	}
	return samples, nil
}

// sampleArgs builds the ffmpeg invocation decoding path to raw f32le PCM on
// stdout, dropping video and data streams.
func sampleArgs(path string, rate, channels int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vn", "-dn",
		"-f", "f32le",
		"-ar", strconv.Itoa(rate),
		"-ac", strconv.Itoa(channels),
		"-c:a", "pcm_f32le",
		"pipe:1",
	}
}

// parseSamples converts little-endian f32 bytes into samples. A trailing
// partial word (truncated stream) is dropped.
func parseSamples(data []byte) []float32 {
	samples := make([]float32, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		samples = append(samples, math.Float32frombits(binary.LittleEndian.Uint32(data[i:i+4])))
	}
	return samples
}

// readWAV decodes a WAV file in-process when its stored format already
// matches the requested rate and channel count. Returns false to signal the
// caller to fall back to ffmpeg.
func readWAV(path string, rate, channels int) ([]float32, bool) {
	f, err := os.Open(path) // #nosec G304 -- media path supplied by the user
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, false
	}
	if int(d.SampleRate) != rate || int(d.NumChans) != channels {
		return nil, false
	}

	buf, err := d.FullPCMBuffer()
	if err != nil || buf == nil || len(buf.Data) == 0 {
		return nil, false
	}

	scale := float32(int(1) << (d.BitDepth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, true
}
