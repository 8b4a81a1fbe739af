package ffmpeg

import "errors"

var (
	// ErrNotFound indicates neither FFMPEG_HOME nor PATH yields the binaries.
	ErrNotFound = errors.New("ffmpeg not found")

	// ErrProcessFailed indicates an external tool exited abnormally.
	ErrProcessFailed = errors.New("process failed")

	// ErrParse indicates tool output could not be interpreted.
	ErrParse = errors.New("cannot parse tool output")
)
