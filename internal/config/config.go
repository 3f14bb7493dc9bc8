package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete jlink-update configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Output  OutputConfig  `toml:"output"`
	Vendor  VendorConfig  `toml:"vendor"`
	Probe   ProbeConfig   `toml:"probe"`
	System  SystemConfig  `toml:"system"`
}

// GeneralConfig contains general settings.
type GeneralConfig struct {
	// Install runs the installer after downloading (like --install).
	Install bool `toml:"install"`

	// AutoConfirm skips confirmation prompts when true (like -y flag).
	AutoConfirm bool `toml:"auto_confirm"`

	// DryRun shows what would happen without executing when true.
	DryRun bool `toml:"dry_run"`

	// DownloadDir is where packages are saved. Empty means a temporary directory.
	DownloadDir string `toml:"download_dir"`

	// KeepDownload keeps the package file after a successful install.
	KeepDownload bool `toml:"keep_download"`

	// History records install attempts in the local history database.
	History bool `toml:"history"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	// Color enables colored output (respects NO_COLOR env var).
	Color bool `toml:"color"`

	// Unicode enables unicode symbols in output.
	Unicode bool `toml:"unicode"`

	// Verbose enables detailed output.
	Verbose bool `toml:"verbose"`

	// LogLevel sets the diagnostic log level (debug, info, warn, error).
	// Empty derives the level from the verbose and debug flags.
	LogLevel string `toml:"log_level"`
}

// VendorConfig describes the download site.
type VendorConfig struct {
	URL       string   `toml:"url"`
	Timeout   Duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`
}

// ProbeConfig controls how installed libraries are inspected.
type ProbeConfig struct {
	// Timeout bounds a single library probe.
	Timeout Duration `toml:"timeout"`

	// InProcess loads libraries into the updater itself instead of a helper
	// process. A crashing library then takes the updater down with it.
	InProcess bool `toml:"in_process"`

	// ExtraPatterns are searched after the built-in install locations.
	ExtraPatterns []string `toml:"extra_patterns"`
}

// SystemConfig holds platform overrides. "auto" keeps the detected value.
type SystemConfig struct {
	Arch              string `toml:"arch"`
	System            string `toml:"system"`
	PackageType       string `toml:"package_type"`
	PackageInstallCmd string `toml:"package_install_cmd"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			Install:      true,
			AutoConfirm:  false,
			DryRun:       false,
			KeepDownload: false,
			History:      false,
		},
		Output: OutputConfig{
			Color:   true,
			Unicode: true,
			Verbose: false,
		},
		Vendor: VendorConfig{
			URL:       "https://www.segger.com/downloads/jlink/",
			Timeout:   Duration{30 * time.Second},
			UserAgent: "jlink-update",
		},
		Probe: ProbeConfig{
			Timeout: Duration{5 * time.Second},
		},
		System: SystemConfig{
			Arch:              "auto",
			System:            "auto",
			PackageType:       "auto",
			PackageInstallCmd: "auto",
		},
	}
}

// Load loads the configuration from the default path.
// If the config file doesn't exist, it returns the default configuration.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path.
// If the config file doesn't exist, it returns the default configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ShouldUseColor returns true if colored output should be used.
// Respects the NO_COLOR environment variable.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.Output.Color
}

// LogLevel returns the configured log level, falling back to one derived
// from the verbose and debug switches.
func (c *Config) LogLevel(debug bool) string {
	switch {
	case debug:
		return "debug"
	case c.Output.LogLevel != "":
		return c.Output.LogLevel
	case c.Output.Verbose:
		return "info"
	default:
		return "warn"
	}
}
