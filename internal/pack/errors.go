package pack

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFingerprint indicates a fingerprint field failed base64 decoding.
	ErrInvalidFingerprint = errors.New("invalid fingerprint encoding")

	// ErrInvalidWord indicates decoded fingerprint bytes cannot supply whole
	// 32-bit words.
	ErrInvalidWord = errors.New("invalid fingerprint word")
)

// InvalidLineError reports a pack line without exactly one name:fingerprint
// separator. Index is the 0-based line position.
type InvalidLineError struct {
	Index int
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("invalid pack line at index %d", e.Index)
}
