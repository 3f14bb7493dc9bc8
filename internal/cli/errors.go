package cli

import "errors"

var (
	// ErrInvalidConfig is returned when the config file cannot be read.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidChoice is returned for a flag value outside its closed set.
	ErrInvalidChoice = errors.New("invalid value")

	// ErrAborted is returned when the user aborts an operation.
	ErrAborted = errors.New("operation aborted by user")

	// ErrInstallFailed is returned when the installer exits unsuccessfully.
	ErrInstallFailed = errors.New("installation failed")
)
