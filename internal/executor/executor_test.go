package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	exec := New(false, false)
	if exec == nil {
		t.Fatal("New() returned nil")
	}
}

func TestInstallCommand(t *testing.T) {
	pkg := filepath.Join(t.TempDir(), "JLink_Linux_V794a_x86_64.deb")

	tests := []struct {
		name     string
		command  string
		expected []string
	}{
		{"dpkg", "sudo dpkg -i", []string{"sudo", "dpkg", "-i", pkg}},
		{"installer", "sudo installer -target / -pkg", []string{"sudo", "installer", "-target", "/", "-pkg", pkg}},
		{"extra spaces", "  rpm   -U ", []string{"rpm", "-U", pkg}},
		{"run package", "", []string{pkg}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InstallCommand(tt.command, pkg)
			if err != nil {
				t.Fatalf("InstallCommand() error: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("InstallCommand(%q) = %v, want %v", tt.command, got, tt.expected)
			}
		})
	}
}

func TestInstallCommandRelativePath(t *testing.T) {
	got, err := InstallCommand("sudo dpkg -i", "JLink.deb")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got[len(got)-1]) {
		t.Errorf("package path should be absolute, got %s", got[len(got)-1])
	}

	if _, err := InstallCommand("sudo dpkg -i", ""); !errors.Is(err, ErrNoPackage) {
		t.Errorf("expected ErrNoPackage, got %v", err)
	}
}

func TestInstallPackageDryRun(t *testing.T) {
	var out bytes.Buffer
	exec := New(true, false)
	exec.SetOutput(&out)

	pkg := filepath.Join(t.TempDir(), "JLink_Linux_V794a_x86_64.deb")
	if err := exec.InstallPackage(context.Background(), "sudo dpkg -i", pkg); err != nil {
		t.Fatalf("InstallPackage() in dry-run mode error: %v", err)
	}

	msg := out.String()
	if !strings.Contains(msg, "[dry-run]") || !strings.Contains(msg, "dpkg -i "+pkg) {
		t.Errorf("unexpected dry-run output: %q", msg)
	}
	if isRoot() && strings.Contains(msg, "sudo dpkg") {
		t.Errorf("sudo should be dropped when running as root: %q", msg)
	}
}

func TestInstallPackageRunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}

	dir := t.TempDir()
	pkg := filepath.Join(dir, "JLink.deb")
	marker := filepath.Join(dir, "installed")
	if err := os.WriteFile(pkg, []byte(marker), 0644); err != nil {
		t.Fatal(err)
	}

	script := filepath.Join(dir, "install.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ntouch \"$(cat \"$1\")\"\n"), 0755); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := New(false, false).InstallPackage(ctx, script, pkg); err != nil {
		t.Fatalf("InstallPackage() error: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("installer did not run: %v", err)
	}
}

func TestInstallPackageFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX command")
	}

	pkg := filepath.Join(t.TempDir(), "JLink.deb")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := New(false, false).InstallPackage(ctx, "false", pkg); err == nil {
		t.Error("InstallPackage() should return the installer's failure")
	}
}

func TestRunDryRun(t *testing.T) {
	var out bytes.Buffer
	exec := New(true, false)
	exec.SetOutput(&out)

	if err := exec.Run(context.Background(), "false"); err != nil {
		t.Errorf("Run() in dry-run mode should not error: %v", err)
	}
	if !strings.Contains(out.String(), "Would execute: false") {
		t.Errorf("unexpected dry-run output: %q", out.String())
	}
}

func TestContextCancellation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX command")
	}

	exec := New(false, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := exec.Run(ctx, "sleep", "10"); err == nil {
		t.Error("Run() should error with cancelled context")
	}
}
