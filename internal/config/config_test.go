package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if !cfg.General.Install {
		t.Error("expected Install to be true by default")
	}
	if cfg.General.History {
		t.Error("expected History to be off by default")
	}
	if cfg.General.AutoConfirm {
		t.Error("expected AutoConfirm to be false by default")
	}

	if !cfg.Output.Color {
		t.Error("expected Color to be true by default")
	}
	if cfg.Output.Verbose {
		t.Error("expected Verbose to be false by default")
	}

	if cfg.Vendor.Timeout.Duration != 30*time.Second {
		t.Errorf("expected vendor timeout 30s, got %s", cfg.Vendor.Timeout)
	}
	if cfg.Probe.Timeout.Duration != 5*time.Second {
		t.Errorf("expected probe timeout 5s, got %s", cfg.Probe.Timeout)
	}

	for name, v := range map[string]string{
		"arch":                cfg.System.Arch,
		"system":              cfg.System.System,
		"package_type":        cfg.System.PackageType,
		"package_install_cmd": cfg.System.PackageInstallCmd,
	} {
		if v != "auto" {
			t.Errorf("expected %s to default to auto, got %q", name, v)
		}
	}
}

func TestShouldUseColor(t *testing.T) {
	cfg := &Config{
		Output: OutputConfig{Color: true},
	}

	t.Setenv("NO_COLOR", "")
	if !cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return true")
	}

	t.Setenv("NO_COLOR", "1")
	if cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return false when NO_COLOR is set")
	}

	t.Setenv("NO_COLOR", "")
	cfg.Output.Color = false
	if cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return false when Color is false")
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		output   OutputConfig
		debug    bool
		expected string
	}{
		{"default", OutputConfig{}, false, "warn"},
		{"verbose", OutputConfig{Verbose: true}, false, "info"},
		{"configured", OutputConfig{Verbose: true, LogLevel: "error"}, false, "error"},
		{"debug wins", OutputConfig{LogLevel: "error"}, true, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Output: tt.output}
			if got := cfg.LogLevel(tt.debug); got != tt.expected {
				t.Errorf("LogLevel() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestLoadSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.General.History = true
	cfg.Probe.Timeout = Duration{750 * time.Millisecond}
	cfg.Probe.ExtraPatterns = []string{"/usr/local/SEGGER/JLink*/libjlink*"}
	cfg.System.Arch = "arm64"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if !loaded.General.History {
		t.Error("history setting was not preserved")
	}
	if loaded.Probe.Timeout.Duration != 750*time.Millisecond {
		t.Errorf("probe timeout = %s, want 750ms", loaded.Probe.Timeout)
	}
	if len(loaded.Probe.ExtraPatterns) != 1 {
		t.Errorf("expected 1 extra pattern, got %v", loaded.Probe.ExtraPatterns)
	}
	if loaded.System.Arch != "arm64" {
		t.Errorf("arch = %q, want arm64", loaded.System.Arch)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[vendor]
timeout = "1m"

[system]
package_type = "rpm"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Vendor.Timeout.Duration != time.Minute {
		t.Errorf("vendor timeout = %s, want 1m", cfg.Vendor.Timeout)
	}
	if cfg.System.PackageType != "rpm" {
		t.Errorf("package_type = %q, want rpm", cfg.System.PackageType)
	}
	// Untouched keys keep their defaults.
	if cfg.System.Arch != "auto" || !cfg.General.Install {
		t.Error("defaults should survive a partial config")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[probe]\ntimeout = \"soon\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected an error for an invalid duration")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	cfg, err := LoadFrom("/non/existent/path/config.toml")
	if err != nil {
		t.Fatalf("LoadFrom() should not error for non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadFrom() should return default config for non-existent file")
	}

	if !cfg.Output.Color {
		t.Error("expected default Color to be true")
	}
}
