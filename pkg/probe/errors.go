package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailed is returned when a candidate is not a loadable library.
	ErrLoadFailed = errors.New("failed to load library")

	// ErrSymbolNotFound is returned when the library lacks the version export.
	ErrSymbolNotFound = errors.New("version symbol not found")

	// ErrUnsupportedPlatform is returned where no native loader exists.
	ErrUnsupportedPlatform = errors.New("dynamic loading not supported on this platform")
)

// FaultError reports a version query that crashed, hung or produced
// unreadable output. The probe treats it like a missing library.
type FaultError struct {
	Path    string
	Cause   error
	Timeout bool

	// Stderr is the helper's complete error output, often a runtime crash
	// dump. Cause carries only its first line.
	Stderr string
}

func (e *FaultError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("probe of %s timed out", e.Path)
	}
	return fmt.Sprintf("probe of %s faulted: %v", e.Path, e.Cause)
}

func (e *FaultError) Unwrap() error {
	return e.Cause
}

// AsFault returns the *FaultError in err's chain, if any.
func AsFault(err error) (*FaultError, bool) {
	var fault *FaultError
	if errors.As(err, &fault) {
		return fault, true
	}
	return nil, false
}
