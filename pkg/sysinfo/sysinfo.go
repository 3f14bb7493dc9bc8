// Package sysinfo resolves the platform facts that select the J-Link
// package to download and the command used to install it.
package sysinfo

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Auto is the override value that requests auto-detection.
const Auto = "auto"

// Family is the normalized operating system category.
type Family string

const (
	FamilyLinux   Family = "Linux"
	FamilyMacOSX  Family = "MacOSX"
	FamilyWindows Family = "Windows"
)

// Closed sets of accepted values, in the vendor's vocabulary.
var (
	Architectures = []string{"x86_64", "i386", "arm", "arm64", "universal"}
	Systems       = []string{string(FamilyLinux), string(FamilyMacOSX), string(FamilyWindows)}
	PackageTypes  = []string{"deb", "rpm", "tgz", "pkg", "exe"}
)

// ErrUnsupportedSystem is returned for an operating system outside the known table.
var ErrUnsupportedSystem = errors.New("unsupported system")

// SystemInfo describes the platform for one run. It is built once by
// Resolve and never modified.
type SystemInfo struct {
	Architecture          string
	Family                Family
	PackageType           string
	PackageInstallCommand string
}

// Overrides carries user choices. Each field is either Auto (or empty) or
// an explicit value that wins over detection.
type Overrides struct {
	Arch              string
	System            string
	PackageType       string
	PackageInstallCmd string
}

// HostFacts are the raw facts read from the running host.
type HostFacts struct {
	OS   string // runtime.GOOS spelling, e.g. "linux"
	Arch string // runtime.GOARCH spelling, e.g. "amd64"
}

// Host returns the facts of the running process.
func Host() HostFacts {
	return HostFacts{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

type familyDefaults struct {
	family         Family
	packageType    string
	installCommand string
}

// familyTable maps lowercased OS names to their defaults.
var familyTable = map[string]familyDefaults{
	"linux":   {FamilyLinux, "deb", "sudo dpkg -i"},
	"darwin":  {FamilyMacOSX, "pkg", "sudo installer -target / -pkg"},
	"macos":   {FamilyMacOSX, "pkg", "sudo installer -target / -pkg"},
	"macosx":  {FamilyMacOSX, "pkg", "sudo installer -target / -pkg"},
	"windows": {FamilyWindows, "exe", ""},
}

// Resolve builds the SystemInfo for the running host.
func Resolve(o Overrides) (SystemInfo, error) {
	return ResolveFor(Host(), o)
}

// ResolveFor builds the SystemInfo from the given host facts and overrides.
func ResolveFor(host HostFacts, o Overrides) (SystemInfo, error) {
	osName := host.OS
	if !isAuto(o.System) {
		osName = o.System
	}

	defaults, ok := familyTable[strings.ToLower(osName)]
	if !ok {
		return SystemInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedSystem, osName)
	}

	arch := o.Arch
	if isAuto(arch) {
		arch = autoArch(defaults.family, host.Arch)
	}

	info := SystemInfo{
		Architecture:          NormalizeArch(arch),
		Family:                defaults.family,
		PackageType:           defaults.packageType,
		PackageInstallCommand: defaults.installCommand,
	}
	if !isAuto(o.PackageType) {
		info.PackageType = o.PackageType
	}
	if !isAuto(o.PackageInstallCmd) {
		info.PackageInstallCommand = o.PackageInstallCmd
	}

	return info, nil
}

// autoArch picks the architecture when none was given. macOS packages are
// universal binaries.
func autoArch(family Family, goarch string) string {
	if family == FamilyMacOSX {
		return "universal"
	}
	return hostArch(goarch)
}

// hostArch translates Go architecture names that differ from the vendor's.
func hostArch(goarch string) string {
	switch goarch {
	case "386":
		return "i386"
	}
	return goarch
}

// NormalizeArch maps architecture synonyms onto the vendor vocabulary.
// Unknown names pass through unchanged.
func NormalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "aarch64":
		return "arm64"
	case "amd64":
		return "x86_64"
	}
	return arch
}

// IsValidChoice reports whether value is "auto" or one of choices.
func IsValidChoice(value string, choices []string) bool {
	if isAuto(value) {
		return true
	}
	for _, c := range choices {
		if c == value {
			return true
		}
	}
	return false
}

func isAuto(v string) bool {
	return v == "" || v == Auto
}

// IsLinux returns true for the Linux family.
func (s SystemInfo) IsLinux() bool {
	return s.Family == FamilyLinux
}

// IsMacOSX returns true for the macOS family.
func (s SystemInfo) IsMacOSX() bool {
	return s.Family == FamilyMacOSX
}

// IsWindows returns true for the Windows family.
func (s SystemInfo) IsWindows() bool {
	return s.Family == FamilyWindows
}
