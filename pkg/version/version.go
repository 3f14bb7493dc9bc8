// Package version converts between J-Link version strings ("V7.94a") and
// ordered integer codes comparable with the value reported by the driver
// library itself.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxMajor is the largest major version accepted by Decode and Encode.
	MaxMajor = 999

	// MaxPatch is the largest patch increment, 'z'.
	MaxPatch = 26

	majorUnit = 10000
	minorUnit = 100
)

// Code is the integer form of a version: major*10000 + minor*100 + patch.
// The driver's JLINK_GetDLLVersion returns a value in this encoding.
type Code int32

// versionPattern matches "V7.94", "v7.94a". Minor is always two digits so
// "V7.9" and "V7.940" are rejected rather than guessed at.
var versionPattern = regexp.MustCompile(`^[vV]([0-9]+)\.([0-9]{2})([a-z])?$`)

// Decode parses a vendor version string into its Code.
func Decode(s string) (Code, error) {
	trimmed := strings.TrimSpace(s)
	m := versionPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}

	major, err := strconv.Atoi(m[1])
	if err != nil || major > MaxMajor {
		return 0, fmt.Errorf("%w: major version out of range in %q", ErrMalformedVersion, s)
	}
	// Leading zeros would not survive a round trip.
	if len(m[1]) > 1 && m[1][0] == '0' {
		return 0, fmt.Errorf("%w: leading zero in major version %q", ErrMalformedVersion, s)
	}

	minor, _ := strconv.Atoi(m[2]) //nolint:errcheck // two digits guaranteed by the pattern

	patch := 0
	if m[3] != "" {
		patch = int(m[3][0]-'a') + 1
	}

	return Code(major*majorUnit + minor*minorUnit + patch), nil
}

// Encode renders a Code back into the vendor's string form.
func Encode(c Code) (string, error) {
	if c < 0 {
		return "", fmt.Errorf("%w: negative version code %d", ErrOutOfRange, int32(c))
	}

	major, minor, patch := c.Parts()
	if major > MaxMajor {
		return "", fmt.Errorf("%w: major version %d in code %d", ErrOutOfRange, major, int32(c))
	}
	if patch > MaxPatch {
		return "", fmt.Errorf("%w: patch %d in code %d has no letter", ErrOutOfRange, patch, int32(c))
	}

	suffix := ""
	if patch > 0 {
		suffix = string(rune('a' + patch - 1))
	}
	return fmt.Sprintf("V%d.%02d%s", major, minor, suffix), nil
}

// MustEncode is like Encode but panics on error. Intended for constants in tests.
func MustEncode(c Code) string {
	s, err := Encode(c)
	if err != nil {
		panic(err)
	}
	return s
}

// Normalize returns the canonical spelling of a version string.
func Normalize(s string) (string, error) {
	c, err := Decode(s)
	if err != nil {
		return "", err
	}
	return Encode(c)
}

// Parts splits the code into major, minor and patch.
func (c Code) Parts() (major, minor, patch int) {
	n := int(c)
	return n / majorUnit, (n / minorUnit) % 100, n % minorUnit
}

// Compare returns -1, 0 or 1.
func (c Code) Compare(other Code) int {
	switch {
	case c < other:
		return -1
	case c > other:
		return 1
	}
	return 0
}

// String returns the vendor spelling, or a diagnostic form for codes that
// cannot be encoded.
func (c Code) String() string {
	s, err := Encode(c)
	if err != nil {
		return fmt.Sprintf("invalid(%d)", int32(c))
	}
	return s
}
