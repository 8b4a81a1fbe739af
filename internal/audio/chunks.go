package audio

import "fmt"

// Chunks splits samples into fixed-size chunks of n samples, zero-padding
// the final chunk so every chunk has the same length.
func Chunks(samples []float32, n int) [][]float32 {
	if n <= 0 || len(samples) == 0 {
		return nil
	}
	chunks := make([][]float32, 0, (len(samples)+n-1)/n)
	for start := 0; start < len(samples); start += n {
		chunk := make([]float32, n)
		copy(chunk, samples[start:min(start+n, len(samples))])
		chunks = append(chunks, chunk)
	}
	return chunks
}

// OverlapChunks interleaves 50% overlap windows between consecutive chunks:
// each inserted window is the second half of one chunk followed by the first
// half of the next, so [c0, c1] becomes [c0, overlap(c0,c1), c1].
// Chunk length must be even; an odd length is a programming error.
func OverlapChunks(chunks [][]float32) [][]float32 {
	if len(chunks) == 0 {
		return nil
	}
	n := len(chunks[0])
	if n%2 != 0 {
		panic(fmt.Sprintf("audio: overlap chunk length %d must be even", n))
	}

	out := make([][]float32, 0, 2*len(chunks)-1)
	for i, c := range chunks {
		if i > 0 {
			half := n / 2
			window := make([]float32, 0, n)
			window = append(window, chunks[i-1][half:]...)
			window = append(window, c[:half]...)
			out = append(out, window)
		}
		out = append(out, c)
	}
	return out
}
