package audio

import "errors"

// ErrNoSamples indicates decoding produced no audio samples.
var ErrNoSamples = errors.New("no audio samples decoded")
