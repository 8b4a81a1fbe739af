// Package correlate estimates the time offset between two raw sample
// buffers using FFT-based cross-correlation.
package correlate

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
)

// NextPowerOfTwo returns the smallest power of two greater than or equal to n.
func NextPowerOfTwo(n int) int {
	power := 1
	for power < n {
		power *= 2
	}
	return power
}

// ZeroPad copies input into a complex buffer of the given length, filling the
// remainder with zeros. An input longer than length indicates a miscomputed
// padding length upstream and panics.
func ZeroPad(input []float64, length int) []complex128 {
	if len(input) > length {
		panic(fmt.Sprintf("correlate: input length %d exceeds pad length %d", len(input), length))
	}
	padded := make([]complex128, length)
	for i, v := range input {
		padded[i] = complex(v, 0)
	}
	return padded
}

// CompareSegments cross-correlates segment against reference and returns the
// lag (in samples) of the correlation peak together with the peak value.
//
// The correlation is computed over the valid range of len(segment)+
// len(reference)-1 samples; the raw peak index i corresponds to lag
// i-(len(segment)-1), and the returned offset is already lag-normalized.
// The running maximum starts at zero and only strictly greater values
// update it, so an all-non-positive correlation (silent or zero input)
// reports peak 0; callers must treat a non-positive peak as "no alignment
// found" rather than trusting the offset.
func CompareSegments(segment, reference []float64) (int, float64) {
	if len(segment) == 0 || len(reference) == 0 {
		return 0, 0
	}

	ccLen := len(segment) + len(reference) - 1
	fftLen := NextPowerOfTwo(ccLen)

	segmentFT := fft.FFT(ZeroPad(segment, fftLen))
	referenceFT := fft.FFT(ZeroPad(reference, fftLen))

	product := make([]complex128, fftLen)
	for i := range product {
		re, im := real(referenceFT[i]), imag(referenceFT[i])
		product[i] = segmentFT[i] * complex(re, -im)
	}

	// IFFT in go-dsp already scales by 1/N, which is exactly the
	// normalization by the padded length.
	correlation := fft.IFFT(product)

	maxIndex := 0
	maxValue := 0.0
	for i := 0; i < ccLen; i++ {
		if v := real(correlation[i]); v > maxValue {
			maxValue = v
			maxIndex = i
		}
	}

	return maxIndex - (len(segment) - 1), maxValue
}

// TimeDifference converts a correlation lag plus both segment durations into
// a signed offset in seconds.
func TimeDifference(index int, sampleRate int, durationA, durationB float64) float64 {
	return (durationA-durationB)/2 - float64(index)/float64(sampleRate)
}
