// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DepsPolicyBestEffort keeps the environment when dependency installation
	// fails: the failure is logged and the app may start under-provisioned.
	// This matches the historical behavior of the launcher being replaced.
	DepsPolicyBestEffort DepsPolicy = "best-effort"
	// DepsPolicyFailFast discards the partially built environment when
	// dependency installation fails and reports the setup as failed.
	DepsPolicyFailFast DepsPolicy = "fail-fast"
)

var (
	// ErrInvalidDepsPolicy is returned when a DepsPolicy value is not recognized.
	ErrInvalidDepsPolicy = errors.New("invalid deps policy")
	// ErrInvalidTimeout is returned when a timeout value cannot be parsed as a duration.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

type (
	// DepsPolicy specifies how dependency-install failures are handled.
	DepsPolicy string

	// InvalidDepsPolicyError is returned when a DepsPolicy value is not recognized.
	// It wraps ErrInvalidDepsPolicy for errors.Is() compatibility.
	InvalidDepsPolicyError struct {
		Value DepsPolicy
	}

	// InvalidTimeoutError is returned when a timeout string does not parse.
	// It wraps ErrInvalidTimeout for errors.Is() compatibility.
	InvalidTimeoutError struct {
		Field string
		Value string
		Cause error
	}

	// LayoutConfig holds the default names of the fixed sub-paths resolved
	// relative to the app directory. A launchfile can override all of them.
	LayoutConfig struct {
		EnvDirName   string `mapstructure:"env_dir_name"`
		ManifestName string `mapstructure:"manifest_name"`
		EntryName    string `mapstructure:"entry_name"`
	}

	// SetupConfig controls environment provisioning behavior.
	SetupConfig struct {
		// Auto provisions the environment during 'bootlace run' when it is
		// absent. When false, 'run' goes straight to launcher location and
		// provisioning only happens via 'bootlace setup'.
		Auto bool `mapstructure:"auto"`
		// DepsPolicy is the dependency-install failure policy.
		DepsPolicy DepsPolicy `mapstructure:"deps_policy"`
		// CreateTimeout bounds the environment-creation subprocess (duration string).
		CreateTimeout string `mapstructure:"create_timeout"`
		// InstallTimeout bounds the dependency-install subprocess (duration string).
		InstallTimeout string `mapstructure:"install_timeout"`
	}

	// UIConfig holds UI-related settings.
	UIConfig struct {
		Verbose bool `mapstructure:"verbose"`
	}

	// Config is the root bootlace configuration.
	Config struct {
		Layout LayoutConfig `mapstructure:"layout"`
		Setup  SetupConfig  `mapstructure:"setup"`
		UI     UIConfig     `mapstructure:"ui"`
	}
)

// IsValid returns whether the DepsPolicy is a recognized value.
func (p DepsPolicy) IsValid() bool {
	return p == DepsPolicyBestEffort || p == DepsPolicyFailFast
}

// Error implements the error interface for InvalidDepsPolicyError.
func (e *InvalidDepsPolicyError) Error() string {
	return fmt.Sprintf("invalid deps policy %q (valid: %q, %q)",
		e.Value, DepsPolicyBestEffort, DepsPolicyFailFast)
}

// Unwrap returns ErrInvalidDepsPolicy for errors.Is() compatibility.
func (e *InvalidDepsPolicyError) Unwrap() error { return ErrInvalidDepsPolicy }

// Error implements the error interface for InvalidTimeoutError.
func (e *InvalidTimeoutError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Cause)
}

// Unwrap returns ErrInvalidTimeout for errors.Is() compatibility.
func (e *InvalidTimeoutError) Unwrap() error { return ErrInvalidTimeout }

// CreateTimeoutDuration parses the configured create timeout.
// Call Validate first; on a validated config this never fails.
func (s SetupConfig) CreateTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.CreateTimeout)
	if err != nil {
		return DefaultConfig().Setup.CreateTimeoutDuration()
	}
	return d
}

// InstallTimeoutDuration parses the configured install timeout.
// Call Validate first; on a validated config this never fails.
func (s SetupConfig) InstallTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.InstallTimeout)
	if err != nil {
		return DefaultConfig().Setup.InstallTimeoutDuration()
	}
	return d
}

// Validate checks constraints the CUE schema cannot express once defaults
// have been merged in (duration syntax, enum values after env overrides).
func (c *Config) Validate() error {
	if !c.Setup.DepsPolicy.IsValid() {
		return &InvalidDepsPolicyError{Value: c.Setup.DepsPolicy}
	}
	if _, err := time.ParseDuration(c.Setup.CreateTimeout); err != nil {
		return &InvalidTimeoutError{Field: "setup.create_timeout", Value: c.Setup.CreateTimeout, Cause: err}
	}
	if _, err := time.ParseDuration(c.Setup.InstallTimeout); err != nil {
		return &InvalidTimeoutError{Field: "setup.install_timeout", Value: c.Setup.InstallTimeout, Cause: err}
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Layout: LayoutConfig{
			EnvDirName:   ".venv",
			ManifestName: "requirements.txt",
			EntryName:    "main.py",
		},
		Setup: SetupConfig{
			Auto:           true,
			DepsPolicy:     DepsPolicyBestEffort,
			CreateTimeout:  "2m",
			InstallTimeout: "10m",
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
