package ffmpeg

import (
	"fmt"
	"path/filepath"
)

// StreamRange describes a time window and sampling policy for frame
// extraction. It is only a request descriptor and is never persisted.
type StreamRange struct {
	// Start and End bound the window in seconds; nil leaves the bound open.
	Start *float64
	End   *float64
	// SkipFrames is the ffmpeg -skip_frame discard mode ("nokey" or "none").
	SkipFrames string
	// FrameRate, when positive, resamples the output to this many frames
	// per second.
	FrameRate float64
}

// KeyframesBetween selects only keyframes within the window.
func KeyframesBetween(start, end *float64) StreamRange {
	return StreamRange{Start: start, End: end, SkipFrames: "nokey"}
}

// FramesBetween selects every frame within the window.
func FramesBetween(start, end *float64) StreamRange {
	return StreamRange{Start: start, End: end, SkipFrames: "none"}
}

// EveryNSeconds selects one frame every secs seconds within the window.
func EveryNSeconds(start, end *float64, secs float64) StreamRange {
	return StreamRange{Start: start, End: end, SkipFrames: "none", FrameRate: 1 / secs}
}

// args assembles the ffmpeg invocation extracting the selected frames as
// millisecond-timestamped JPEGs under outDir.
func (r StreamRange) args(input, outDir string) []string {
	var args []string
	if r.Start != nil {
		args = append(args, "-ss", fmt.Sprintf("%.4f", *r.Start))
	}
	if r.End != nil {
		args = append(args, "-to", fmt.Sprintf("%.4f", *r.End))
	}
	if r.SkipFrames != "" {
		args = append(args, "-skip_frame", r.SkipFrames)
	}
	args = append(args, "-hide_banner", "-loglevel", "error", "-copyts", "-i", input)
	if r.FrameRate > 0 {
		args = append(args, "-vf", fmt.Sprintf("fps=%.3f", r.FrameRate))
	}
	args = append(args,
		"-enc_time_base", "1/1000",
		"-vsync", "0",
		"-f", "image2",
		"-frame_pts", "1",
		filepath.Join(outDir, "%09d.jpg"),
	)
	return args
}
