package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNoReferences indicates a cut was requested without any reference
	// pack.
	ErrNoReferences = errors.New("no reference packs given")

	// ErrNoAlignment indicates cross-correlation found no meaningful peak.
	ErrNoAlignment = errors.New("no alignment found")
)
