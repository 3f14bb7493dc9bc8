// Package executor runs the vendor installer, elevating with sudo where the
// install command asks for it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoPackage is returned when no package path is given.
var ErrNoPackage = errors.New("no package file to install")

// Executor handles command execution with optional sudo elevation.
type Executor struct {
	dryRun  bool
	verbose bool
	out     io.Writer
}

// New creates a new Executor with the given options.
func New(dryRun, verbose bool) *Executor {
	return &Executor{
		dryRun:  dryRun,
		verbose: verbose,
		out:     os.Stdout,
	}
}

// SetOutput redirects the executor's own messages.
func (e *Executor) SetOutput(w io.Writer) {
	e.out = w
}

// InstallCommand builds the argument vector that installs pkgPath.
// An empty command runs the package itself, as the Windows installer is an
// executable. Otherwise the command is split on whitespace and the absolute
// package path is appended.
func InstallCommand(command, pkgPath string) ([]string, error) {
	if pkgPath == "" {
		return nil, ErrNoPackage
	}
	abs, err := filepath.Abs(pkgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", pkgPath, err)
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return []string{abs}, nil
	}
	return append(fields, abs), nil
}

// InstallPackage runs the installer for pkgPath. A leading "sudo" is dropped
// when the process already has root privileges.
func (e *Executor) InstallPackage(ctx context.Context, command, pkgPath string) error {
	argv, err := InstallCommand(command, pkgPath)
	if err != nil {
		return err
	}

	if argv[0] == "sudo" {
		if len(argv) == 1 {
			return fmt.Errorf("install command %q names no program", command)
		}
		return e.RunSudo(ctx, argv[1], argv[2:]...)
	}
	return e.Run(ctx, argv[0], argv[1:]...)
}

// Run executes a command without sudo.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	if e.dryRun {
		e.printDryRun(name, args)
		return nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if e.verbose {
		fmt.Fprintf(e.out, "Executing: %s %s\n", name, strings.Join(args, " "))
	}

	return cmd.Run()
}

// RunSudo executes a command with sudo if not already root.
func (e *Executor) RunSudo(ctx context.Context, name string, args ...string) error {
	if e.dryRun {
		e.printDryRunSudo(name, args)
		return nil
	}

	var cmd *exec.Cmd
	if isRoot() {
		cmd = exec.CommandContext(ctx, name, args...)
	} else if hasSudo() {
		sudoArgs := append([]string{name}, args...)
		cmd = exec.CommandContext(ctx, "sudo", sudoArgs...)
	} else {
		return ErrNoPrivileges
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if e.verbose {
		if isRoot() {
			fmt.Fprintf(e.out, "Executing (as root): %s %s\n", name, strings.Join(args, " "))
		} else {
			fmt.Fprintf(e.out, "Executing (with sudo): %s %s\n", name, strings.Join(args, " "))
		}
	}

	return cmd.Run()
}

func (e *Executor) printDryRun(name string, args []string) {
	fmt.Fprintf(e.out, "[dry-run] Would execute: %s\n", strings.TrimSpace(name+" "+strings.Join(args, " ")))
}

func (e *Executor) printDryRunSudo(name string, args []string) {
	cmdline := strings.TrimSpace(name + " " + strings.Join(args, " "))
	if isRoot() {
		fmt.Fprintf(e.out, "[dry-run] Would execute (as root): %s\n", cmdline)
	} else {
		fmt.Fprintf(e.out, "[dry-run] Would execute (with sudo): sudo %s\n", cmdline)
	}
}
