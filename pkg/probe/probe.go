// Package probe finds the installed J-Link driver library and asks it for
// its version.
//
// The library is located with per-OS glob patterns, loaded at runtime, and
// its JLINK_GetDLLVersion export is called. Calling into an arbitrary
// native library can crash the process, so the default Loader runs the
// call in a helper subprocess and reports a crash as a *FaultError.
package probe

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"jlink-update/pkg/sysinfo"
	"jlink-update/pkg/version"
)

// SymbolGetDLLVersion is the export that returns the driver version code.
const SymbolGetDLLVersion = "JLINK_GetDLLVersion"

// searchPatterns lists the install locations of the vendor package per OS.
var searchPatterns = map[sysinfo.Family][]string{
	sysinfo.FamilyLinux:   {"/opt/SEGGER/JLink*/libjlink*"},
	sysinfo.FamilyMacOSX:  {"/Applications/SEGGER/JLink*/libjlink*"},
	sysinfo.FamilyWindows: {`C:\Program Files*\SEGGER\JLink*\JLink*.dll`},
}

// Patterns returns the glob patterns searched for the given family. The
// result is empty for unknown families.
func Patterns(family sysinfo.Family) []string {
	p := searchPatterns[family]
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// Loader loads a candidate library and returns the version it reports.
//
// Implementations return an error wrapping ErrLoadFailed or
// ErrSymbolNotFound for ordinary misses, and a *FaultError when the call
// itself misbehaved.
type Loader interface {
	Load(ctx context.Context, path string) (version.Code, error)
}

// Result is the outcome of a probe. Absence is not an error: Found is
// false and Code is zero.
type Result struct {
	Found bool
	Code  version.Code
	Path  string

	// Faults collects candidates whose invocation crashed or hung.
	Faults []*FaultError
}

// NotFound is the empty result.
var NotFound = Result{}

// Found builds a successful result.
func Found(code version.Code, path string) Result {
	return Result{Found: true, Code: code, Path: path}
}

// Prober searches for and queries the installed library.
type Prober struct {
	loader Loader
	logger zerolog.Logger

	// PatternsFor selects the search patterns. Defaults to Patterns.
	PatternsFor func(sysinfo.Family) []string

	// ExtraPatterns are searched after the built-in ones, for installs in
	// non-default locations.
	ExtraPatterns []string

	// Glob expands a pattern. Defaults to filepath.Glob.
	Glob func(pattern string) ([]string, error)
}

// New creates a Prober using the given loader.
func New(loader Loader, logger zerolog.Logger) *Prober {
	return &Prober{
		loader:      loader,
		logger:      logger,
		PatternsFor: Patterns,
		Glob:        filepath.Glob,
	}
}

// Probe returns the version of the first candidate library that loads and
// answers. Candidates are tried in pattern order, then in the order the
// filesystem returns them.
func (p *Prober) Probe(ctx context.Context, family sysinfo.Family) Result {
	patterns := append(p.PatternsFor(family), p.ExtraPatterns...)
	if len(patterns) == 0 {
		p.logger.Debug().Str("family", string(family)).Msg("no search patterns for system")
		return NotFound
	}

	var faults []*FaultError
	for _, pattern := range patterns {
		matches, err := p.Glob(pattern)
		if err != nil {
			p.logger.Debug().Err(err).Str("pattern", pattern).Msg("bad search pattern")
			continue
		}
		p.logger.Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("searched for driver library")

		for _, path := range matches {
			if ctx.Err() != nil {
				return Result{Faults: faults}
			}

			code, err := p.loader.Load(ctx, path)
			if err == nil {
				p.logger.Debug().Str("path", path).Int32("code", int32(code)).Msg("driver library answered")
				res := Found(code, path)
				res.Faults = faults
				return res
			}

			if fault, ok := AsFault(err); ok {
				p.logger.Warn().Err(fault.Cause).Str("path", path).Bool("timeout", fault.Timeout).
					Msg("driver library faulted during version query; ignoring it")
				if fault.Stderr != "" {
					p.logger.Debug().Str("path", path).Str("stderr", fault.Stderr).Msg("probe helper error output")
				}
				faults = append(faults, fault)
				continue
			}
			p.logger.Debug().Err(err).Str("path", path).Msg("skipping candidate")
		}
	}

	return Result{Faults: faults}
}
