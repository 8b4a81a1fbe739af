package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-adcut/internal/audio"
	"github.com/alnah/go-adcut/internal/correlate"
	"github.com/alnah/go-adcut/internal/fingerprint"
	"github.com/alnah/go-adcut/internal/format"
)

// refineOptions holds the flags of the refine command.
type refineOptions struct {
	at     string
	window float64
}

// RefineCmd creates the refine command.
// The env parameter provides injectable dependencies for testing.
func RefineCmd(env *Env) *cobra.Command {
	opts := &refineOptions{}

	cmd := &cobra.Command{
		Use:   "refine <input> <reference>",
		Short: "Align a reference clip against a media file by cross-correlation",
		Long: `Align a reference clip against a media file by cross-correlation.

Both files are decoded to mono PCM and cross-correlated sample by sample,
yielding a sub-frame alignment offset that is much more precise than a
fingerprint match. Use --at to restrict the search to a window around a
rough cue timestamp.`,
		Example: `  adcut refine recording.mkv refs/ads/spot.mp3
  adcut refine --at 12:30 --window 120 recording.mkv refs/ads/spot.mp3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefine(cmd.Context(), env, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.at, "at", "",
		"rough cue timestamp to search around (seconds or [hh:]mm:ss[.frac])")
	cmd.Flags().Float64Var(&opts.window, "window", 60,
		"search window in seconds around --at")

	return cmd
}

// runRefine handles the refine command.
func runRefine(ctx context.Context, env *Env, input, reference string, opts *refineOptions) error {
	for _, path := range []string{input, reference} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
	}

	var at float64
	if opts.at != "" {
		parsed, err := format.ParseTime(opts.at)
		if err != nil {
			return err
		}
		at = parsed
	}

	tools, err := env.Resolver.Resolve(env.Getenv)
	if err != nil {
		return err
	}

	rate := fingerprint.DefaultConfig().SampleRate
	segment, err := env.SampleReader.ReadSamples(ctx, tools.FFmpeg, input, rate, 1)
	if err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}
	refSamples, err := env.SampleReader.ReadSamples(ctx, tools.FFmpeg, reference, rate, 1)
	if err != nil {
		return fmt.Errorf("decode %s: %w", reference, err)
	}

	windowStart := 0.0
	if opts.at != "" {
		var slice []float32
		slice, windowStart = window(segment, rate, at, opts.window)
		segment = slice
	}

	refStartSample, peak := alignReference(segment, refSamples)
	if peak <= 0 {
		return fmt.Errorf("%w between %s and %s", ErrNoAlignment, input, reference)
	}

	offset := refStartSample - (len(segment) - 1)
	durSegment := float64(len(segment)) / float64(rate)
	durReference := float64(len(refSamples)) / float64(rate)
	diff := correlate.TimeDifference(offset, rate, durSegment, durReference)

	refStart := windowStart + float64(refStartSample)/float64(rate)

	fmt.Fprintf(env.Stdout, "peak value:      %.4f\n", peak)
	fmt.Fprintf(env.Stdout, "reference start: %s (%.3fs)\n", format.Timestamp(refStart), refStart)
	fmt.Fprintf(env.Stdout, "time difference: %+.3fs\n", diff)
	return nil
}

// maxDirectSamples bounds the segment length correlated in one FFT; longer
// segments are scanned chunk by chunk.
const maxDirectSamples = 1 << 18

// alignReference cross-correlates the reference against the segment and
// returns the sample index where the reference best starts, with the peak
// value. Long segments are scanned in 50%-overlapping chunks sized to the
// reference so each transform stays small; the strongest peak wins.
func alignReference(segment, reference []float32) (int, float64) {
	ref64 := toFloat64(reference)

	if len(segment) <= maxDirectSamples || len(segment) <= 2*len(reference) {
		offset, peak := correlate.CompareSegments(toFloat64(segment), ref64)
		return offset + len(segment) - 1, peak
	}

	n := correlate.NextPowerOfTwo(2 * len(reference))
	chunks := audio.OverlapChunks(audio.Chunks(segment, n))

	bestStart := 0
	bestPeak := 0.0
	for i, chunk := range chunks {
		offset, peak := correlate.CompareSegments(toFloat64(chunk), ref64)
		if peak > bestPeak {
			bestPeak = peak
			bestStart = i*(n/2) + offset + n - 1
		}
	}
	return bestStart, bestPeak
}

// window slices samples to [at-half, at+half] clamped to the file bounds
// and returns the slice with its start time in seconds.
func window(samples []float32, rate int, at, width float64) ([]float32, float64) {
	half := width / 2
	start := int((at - half) * float64(rate))
	end := int((at + half) * float64(rate))
	if start < 0 {
		start = 0
	}
	if end > len(samples) {
		end = len(samples)
	}
	if start >= end {
		return nil, 0
	}
	return samples[start:end], float64(start) / float64(rate)
}

func toFloat64(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}
