package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"jlink-update/pkg/version"
)

const (
	// HelperCommand is the hidden sub-command that runs NativeLoader.
	HelperCommand = "probe-helper"

	// DefaultTimeout bounds one helper invocation. Library initializers run
	// inside dlopen, so a hung driver must not hang the update.
	DefaultTimeout = 5 * time.Second

	// Helper exit codes. Anything else, including death by signal, is a fault.
	helperExitOK       = 0
	helperExitNotFound = 1
	helperExitUsage    = 2
)

const (
	reasonLoad   = "load"
	reasonSymbol = "symbol"
)

// helperReport is the JSON document the helper writes to stdout.
type helperReport struct {
	Path    string `json:"path"`
	OK      bool   `json:"ok"`
	Version int32  `json:"version,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubprocessLoader runs the version query in a child process so that a
// crash inside the driver library cannot abort the caller.
type SubprocessLoader struct {
	// Command and Args form the helper invocation; the library path is
	// appended as the final argument.
	Command string
	Args    []string

	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration

	// Env is appended to the sanitized parent environment.
	Env []string
}

// NewSubprocessLoader returns a loader that re-executes the running binary
// with the HelperCommand sub-command.
func NewSubprocessLoader(timeout time.Duration) (*SubprocessLoader, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate own executable: %w", err)
	}
	return &SubprocessLoader{
		Command: exe,
		Args:    []string{HelperCommand},
		Timeout: timeout,
	}, nil
}

// Load runs the helper against path.
func (l *SubprocessLoader) Load(ctx context.Context, path string) (version.Code, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, l.Args...), path)
	cmd := exec.CommandContext(runCtx, l.Command, args...)
	cmd.Env = append(sanitizedEnv(), l.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return 0, &FaultError{Path: path, Cause: context.DeadlineExceeded, Timeout: true}
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 0, &FaultError{Path: path, Cause: fmt.Errorf("failed to start probe helper: %w", err)}
		}
		if code := exitErr.ExitCode(); code != helperExitNotFound {
			return 0, &FaultError{
				Path:   path,
				Cause:  fmt.Errorf("probe helper exited with %v: %s", err, firstLine(stderr.String())),
				Stderr: stderr.String(),
			}
		}
	}

	var report helperReport
	if parseErr := json.Unmarshal(stdout.Bytes(), &report); parseErr != nil {
		return 0, &FaultError{
			Path:   path,
			Cause:  fmt.Errorf("unreadable probe helper output: %w", parseErr),
			Stderr: stderr.String(),
		}
	}

	if report.OK {
		return version.Code(report.Version), nil
	}
	if report.Reason == reasonSymbol {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, report.Error)
	}
	return 0, fmt.Errorf("%w: %s", ErrLoadFailed, report.Error)
}

// maxCauseLen bounds the stderr excerpt kept in a fault's cause.
const maxCauseLen = 160

// firstLine returns the first non-blank line of s, cut to maxCauseLen.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxCauseLen {
			line = line[:maxCauseLen] + "..."
		}
		return line
	}
	return "no error output"
}

// sanitizedEnv drops loader variables that would let the environment
// inject code into the helper.
func sanitizedEnv() []string {
	dangerous := map[string]bool{
		"LD_PRELOAD": true, "LD_AUDIT": true, "LD_DEBUG": true,
		"LD_DEBUG_OUTPUT": true, "LD_PROFILE": true, "LD_PROFILE_OUTPUT": true,
		"DYLD_INSERT_LIBRARIES": true, "DYLD_FORCE_FLAT_NAMESPACE": true,
		"DYLD_PRINT_LIBRARIES": true, "DYLD_PRINT_LIBRARIES_POST_LAUNCH": true,
	}

	var env []string
	for _, e := range os.Environ() {
		key := strings.SplitN(e, "=", 2)[0]
		if !dangerous[key] {
			env = append(env, e)
		}
	}
	return env
}

// HelperMain is the body of the probe-helper sub-command. It loads the
// library at args[0] in-process, writes a JSON report to w and returns
// the process exit code.
func HelperMain(ctx context.Context, args []string, w io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintf(w, `{"ok":false,"error":"usage: %s <library>"}`+"\n", HelperCommand)
		return helperExitUsage
	}
	path := args[0]

	report := helperReport{Path: path}
	exit := helperExitOK

	code, err := NativeLoader{}.Load(ctx, path)
	switch {
	case err == nil:
		report.OK = true
		report.Version = int32(code)
	case errors.Is(err, ErrSymbolNotFound):
		report.Reason = reasonSymbol
		report.Error = err.Error()
		exit = helperExitNotFound
	default:
		report.Reason = reasonLoad
		report.Error = err.Error()
		exit = helperExitNotFound
	}

	if encErr := json.NewEncoder(w).Encode(report); encErr != nil {
		return helperExitUsage
	}
	return exit
}
