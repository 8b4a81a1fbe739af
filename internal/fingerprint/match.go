package fingerprint

import (
	"math/bits"
	"sort"
)

// Matching thresholds. A frame pair counts as aligned when the Hamming
// distance of its words stays at or below maxBitError; an aligned run must
// span minMatchItems frames (about three seconds under DefaultConfig) to
// become a segment.
const (
	maxBitError   = 10
	minMatchItems = 24
)

// Segment is a scored correspondence between two fingerprints, expressed in
// fingerprint-frame units.
type Segment struct {
	// Offset1 is the start frame within the first (input) fingerprint.
	Offset1 int
	// Offset2 is the start frame within the second (reference) fingerprint.
	Offset2 int
	// Items is the number of aligned frames.
	Items int
	// Score is the mean bit agreement over the run in [0, 1]; higher means
	// more similar.
	Score float64
}

// Start1 returns the segment start within the first fingerprint in seconds.
func (s Segment) Start1(cfg Config) float64 {
	return float64(s.Offset1) / cfg.FrameRate()
}

// End1 returns the segment end within the first fingerprint in seconds.
func (s Segment) End1(cfg Config) float64 {
	return float64(s.Offset1+s.Items) / cfg.FrameRate()
}

// Start2 returns the segment start within the second fingerprint in seconds.
func (s Segment) Start2(cfg Config) float64 {
	return float64(s.Offset2) / cfg.FrameRate()
}

// End2 returns the segment end within the second fingerprint in seconds.
func (s Segment) End2(cfg Config) float64 {
	return float64(s.Offset2+s.Items) / cfg.FrameRate()
}

// Duration returns the segment duration in seconds.
func (s Segment) Duration(cfg Config) float64 {
	return float64(s.Items) * cfg.FrameDuration()
}

// Match aligns fingerprint b against fingerprint a at every relative offset
// and returns the aligned segments ranked by score, best first. Both
// fingerprints must stem from the same configuration; an empty fingerprint
// is not matchable.
func Match(a, b []uint32, cfg Config) ([]Segment, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrIncompatible
	}

	var candidates []Segment
	for offset := -(len(b) - 1); offset < len(a); offset++ {
		start := max(0, offset)
		end := min(len(a), len(b)+offset)
		if end-start < minMatchItems {
			continue
		}
		candidates = append(candidates, scanRuns(a, b, offset, start, end)...)
	}

	return selectSegments(candidates), nil
}

// scanRuns walks the overlap of a and b at the given offset and emits one
// segment per contiguous run of frame pairs within the bit-error threshold.
func scanRuns(a, b []uint32, offset, start, end int) []Segment {
	var segments []Segment
	runStart := -1
	runErrors := 0

	flush := func(pos int) {
		if runStart < 0 {
			return
		}
		if items := pos - runStart; items >= minMatchItems {
			meanErr := float64(runErrors) / float64(items)
			segments = append(segments, Segment{
				Offset1: runStart,
				Offset2: runStart - offset,
				Items:   items,
				Score:   1 - meanErr/32,
			})
		}
		runStart = -1
		runErrors = 0
	}

	for i := start; i < end; i++ {
		errBits := bits.OnesCount32(a[i] ^ b[i-offset])
		if errBits <= maxBitError {
			if runStart < 0 {
				runStart = i
			}
			runErrors += errBits
		} else {
			flush(i)
		}
	}
	flush(end)

	return segments
}

// selectSegments ranks candidates best first and drops any candidate whose
// input range overlaps an already selected one, so each stretch of the
// input is claimed by its strongest alignment.
func selectSegments(candidates []Segment) []Segment {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	var selected []Segment
	for _, c := range candidates {
		overlaps := false
		for _, s := range selected {
			if c.Offset1 < s.Offset1+s.Items && s.Offset1 < c.Offset1+c.Items {
				overlaps = true
				break
			}
		}
		if !overlaps {
			selected = append(selected, c)
		}
	}
	return selected
}
