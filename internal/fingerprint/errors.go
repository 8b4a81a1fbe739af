package fingerprint

import "errors"

var (
	// ErrNoAudio indicates the input yielded no decodable audio samples.
	ErrNoAudio = errors.New("no audio track decoded")

	// ErrTooShort indicates the audio is shorter than one analysis window.
	ErrTooShort = errors.New("audio shorter than analysis window")

	// ErrIncompatible indicates two fingerprints cannot be matched, e.g.
	// because one of them is empty.
	ErrIncompatible = errors.New("incompatible fingerprints")
)
