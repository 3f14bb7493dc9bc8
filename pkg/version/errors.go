package version

import "errors"

var (
	// ErrMalformedVersion is returned when a string is not a J-Link version.
	ErrMalformedVersion = errors.New("could not parse version")

	// ErrOutOfRange is returned when a code cannot be written as a version string.
	ErrOutOfRange = errors.New("version code out of range")
)
