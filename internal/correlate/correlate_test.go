package correlate

import (
	"math"
	"testing"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 1},
		{2, 2},
		{5, 8},
		{8, 8},
		{9, 16},
		{15, 16},
		{16, 16},
		{1000, 1024},
	}

	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestZeroPad(t *testing.T) {
	input := []float64{1, 2, 3}
	padded := ZeroPad(input, 8)

	if len(padded) != 8 {
		t.Fatalf("len = %d, want 8", len(padded))
	}
	for i, v := range input {
		if real(padded[i]) != v || imag(padded[i]) != 0 {
			t.Errorf("padded[%d] = %v, want (%v+0i)", i, padded[i], v)
		}
	}
	for i := len(input); i < 8; i++ {
		if padded[i] != 0 {
			t.Errorf("padded[%d] = %v, want 0", i, padded[i])
		}
	}
}

func TestZeroPadPanicsOnOversizedInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for input longer than pad length")
		}
	}()
	ZeroPad([]float64{1, 2, 3}, 2)
}

func TestCompareSegmentsSelfCorrelation(t *testing.T) {
	signal := make([]float64, 32)
	for i := range signal {
		signal[i] = math.Sin(float64(i)*0.7) + 0.3*math.Cos(float64(i)*1.9)
	}

	offset, peak := CompareSegments(signal, signal)

	// The raw peak sits at index 0 (zero lag); the normalized offset is
	// therefore -(len-1).
	if offset != -(len(signal) - 1) {
		t.Errorf("offset = %d, want %d", offset, -(len(signal) - 1))
	}

	var energy float64
	for _, v := range signal {
		energy += v * v
	}
	if math.Abs(peak-energy) > 1e-9 {
		t.Errorf("peak = %v, want signal energy %v", peak, energy)
	}
}

func TestCompareSegmentsKnownOffset(t *testing.T) {
	// Reference impulse at sample 3; the same impulse appears at sample 10
	// of the segment, a true alignment offset of 7 samples.
	segment := make([]float64, 16)
	segment[10] = 1
	reference := make([]float64, 8)
	reference[3] = 1

	offset, peak := CompareSegments(segment, reference)

	wantOffset := 7 - (len(segment) - 1)
	if offset != wantOffset {
		t.Errorf("offset = %d, want %d", offset, wantOffset)
	}
	if math.Abs(peak-1) > 1e-9 {
		t.Errorf("peak = %v, want 1", peak)
	}
}

func TestCompareSegmentsMatchesDirectCorrelation(t *testing.T) {
	segment := []float64{0.5, -1, 2, 0.25, -0.75, 1.5}
	reference := []float64{1, 0.5, -0.25, 2}

	ccLen := len(segment) + len(reference) - 1
	fftLen := NextPowerOfTwo(ccLen)

	// Direct circular correlation over the zero-padded buffers.
	s := make([]float64, fftLen)
	copy(s, segment)
	r := make([]float64, fftLen)
	copy(r, reference)

	bestIndex := 0
	bestValue := 0.0
	for x := 0; x < ccLen; x++ {
		var sum float64
		for m := 0; m < fftLen; m++ {
			sum += s[(m+x)%fftLen] * r[m]
		}
		if sum > bestValue {
			bestValue = sum
			bestIndex = x
		}
	}

	offset, peak := CompareSegments(segment, reference)
	if offset != bestIndex-(len(segment)-1) {
		t.Errorf("offset = %d, want %d", offset, bestIndex-(len(segment)-1))
	}
	if math.Abs(peak-bestValue) > 1e-9 {
		t.Errorf("peak = %v, want %v", peak, bestValue)
	}
}

func TestCompareSegmentsDegenerateInputs(t *testing.T) {
	t.Run("all zero samples", func(t *testing.T) {
		segment := make([]float64, 8)
		reference := make([]float64, 8)
		offset, peak := CompareSegments(segment, reference)
		if peak != 0 {
			t.Errorf("peak = %v, want 0", peak)
		}
		// With no strictly positive value the raw index stays 0.
		if offset != -(len(segment) - 1) {
			t.Errorf("offset = %d, want %d", offset, -(len(segment) - 1))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		offset, peak := CompareSegments(nil, []float64{1, 2})
		if offset != 0 || peak != 0 {
			t.Errorf("got (%d, %v), want (0, 0)", offset, peak)
		}
	})
}

func TestTimeDifference(t *testing.T) {
	tests := []struct {
		name       string
		index      int
		rate       int
		durA, durB float64
		want       float64
	}{
		{"zero lag equal durations", 0, 1000, 10, 10, 0},
		{"positive lag", 500, 1000, 10, 10, -0.5},
		{"duration imbalance", 0, 1000, 12, 10, 1},
		{"combined", -250, 1000, 8, 10, -0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeDifference(tt.index, tt.rate, tt.durA, tt.durB)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("TimeDifference = %v, want %v", got, tt.want)
			}
		})
	}
}
