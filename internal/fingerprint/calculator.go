// Package fingerprint computes compact acoustic fingerprints (one 32-bit
// word per analysis frame) and matches them against each other.
package fingerprint

import (
	"context"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/alnah/go-adcut/internal/audio"
)

// Frequency range covered by the analysis bands. The upper bound stays
// under the Nyquist frequency of the default 11025 Hz decode rate.
const (
	minBandFreq = 300.0
	maxBandFreq = 5000.0

	// numBands energies yield 32 adjacent-band difference bits per word.
	numBands = 33
)

// readSamplesFn decodes a file into float32 samples (injectable for tests).
type readSamplesFn func(ctx context.Context, ffmpegPath, path string, rate, channels int) ([]float32, error)

// Calculator turns media files into fingerprints.
type Calculator struct {
	ffmpegPath  string
	config      Config
	readSamples readSamplesFn
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithReadSamples overrides the sample decoder (for testing).
func WithReadSamples(fn readSamplesFn) CalculatorOption {
	return func(c *Calculator) { c.readSamples = fn }
}

// NewCalculator creates a Calculator decoding through the given ffmpeg binary.
func NewCalculator(ffmpegPath string, config Config, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		ffmpegPath:  ffmpegPath,
		config:      config,
		readSamples: audio.ReadSamples,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the analysis configuration the calculator was built with.
func (c *Calculator) Config() Config {
	return c.config
}

// Fingerprint decodes the audio track of path and returns one word per
// analysis frame.
func (c *Calculator) Fingerprint(ctx context.Context, path string) ([]uint32, error) {
	samples, err := c.readSamples(ctx, c.ffmpegPath, path, c.config.SampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", path, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("fingerprint %s: %w", path, ErrNoAudio)
	}

	words, err := wordsFromSamples(samples, c.config)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return words, nil
}

// wordsFromSamples runs the STFT over the sample stream and hashes each
// frame into a 32-bit word. Each bit encodes the sign of the change of one
// spectral band difference relative to the previous frame, so the first
// frame only seeds the differential and emits no word.
func wordsFromSamples(samples []float32, cfg Config) ([]uint32, error) {
	if len(samples) < cfg.WindowSize+cfg.HopSize {
		return nil, ErrTooShort
	}

	window := hamming(cfg.WindowSize)
	edges := bandEdges(cfg)
	frame := make([]float64, cfg.WindowSize)

	var words []uint32
	var prev []float64

	for start := 0; start+cfg.WindowSize <= len(samples); start += cfg.HopSize {
		for i := 0; i < cfg.WindowSize; i++ {
			frame[i] = float64(samples[start+i]) * window[i]
		}

		spectrum := fft.FFTReal(frame)
		energies := bandEnergies(spectrum, edges)

		if prev != nil {
			words = append(words, hashFrame(energies, prev))
		}
		prev = energies
	}

	return words, nil
}

// hamming returns a Hamming window of length n.
func hamming(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// bandEdges maps numBands+1 geometrically spaced frequencies onto FFT bin
// indices.
func bandEdges(cfg Config) []int {
	edges := make([]int, numBands+1)
	ratio := math.Pow(maxBandFreq/minBandFreq, 1/float64(numBands))
	freq := minBandFreq
	for i := range edges {
		bin := int(freq * float64(cfg.WindowSize) / float64(cfg.SampleRate))
		edges[i] = min(bin, cfg.WindowSize/2)
		freq *= ratio
	}
	return edges
}

// bandEnergies sums log-compressed magnitude energy per band.
func bandEnergies(spectrum []complex128, edges []int) []float64 {
	energies := make([]float64, numBands)
	for b := 0; b < numBands; b++ {
		var sum float64
		for bin := edges[b]; bin < edges[b+1]; bin++ {
			re, im := real(spectrum[bin]), imag(spectrum[bin])
			sum += re*re + im*im
		}
		energies[b] = math.Log1p(sum)
	}
	return energies
}

// hashFrame derives the 32-bit word for one frame from the band energy
// differentials of the current and previous frames.
func hashFrame(energies, prev []float64) uint32 {
	var word uint32
	for bit := 0; bit < 32; bit++ {
		diff := (energies[bit] - energies[bit+1]) - (prev[bit] - prev[bit+1])
		if diff > 0 {
			word |= 1 << uint(bit)
		}
	}
	return word
}
