// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Empty config dir: defaults apply, no error
	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if resolved != "" {
		t.Errorf("resolved path = %q, want empty (no config file)", resolved)
	}

	want := DefaultConfig()
	if cfg.Layout.EnvDirName != want.Layout.EnvDirName {
		t.Errorf("EnvDirName = %q, want %q", cfg.Layout.EnvDirName, want.Layout.EnvDirName)
	}
	if cfg.Setup.DepsPolicy != DepsPolicyBestEffort {
		t.Errorf("DepsPolicy = %q, want %q", cfg.Setup.DepsPolicy, DepsPolicyBestEffort)
	}
	if !cfg.Setup.Auto {
		t.Error("Setup.Auto default should be true")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
layout: env_dir_name: "venv"

setup: {
	auto:            false
	deps_policy:     "fail-fast"
	install_timeout: "30m"
}
`)

	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if resolved == "" {
		t.Error("resolved path should name the loaded file")
	}

	if cfg.Layout.EnvDirName != "venv" {
		t.Errorf("EnvDirName = %q, want %q", cfg.Layout.EnvDirName, "venv")
	}
	if cfg.Setup.Auto {
		t.Error("Setup.Auto should be overridden to false")
	}
	if cfg.Setup.DepsPolicy != DepsPolicyFailFast {
		t.Errorf("DepsPolicy = %q, want %q", cfg.Setup.DepsPolicy, DepsPolicyFailFast)
	}
	if cfg.Setup.InstallTimeoutDuration() != 30*time.Minute {
		t.Errorf("InstallTimeoutDuration() = %v, want 30m", cfg.Setup.InstallTimeoutDuration())
	}
	// Untouched keys keep defaults
	if cfg.Layout.EntryName != "main.py" {
		t.Errorf("EntryName = %q, want default main.py", cfg.Layout.EntryName)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `setup: deps_policy: "yolo"`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected schema violation error, got nil")
	}
	if !strings.Contains(err.Error(), "deps_policy") {
		t.Errorf("error %q should name the offending field", err.Error())
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `setup: create_timeout: "ninety seconds"`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected timeout validation error, got nil")
	}
	if !errors.Is(err, ErrInvalidTimeout) {
		t.Errorf("errors.Is(err, ErrInvalidTimeout) = false, err = %v", err)
	}
}

func TestLoad_ExplicitFileNotFound(t *testing.T) {
	_, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file, got nil")
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := loadWithOptions(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}

func TestDepsPolicy_IsValid(t *testing.T) {
	tests := []struct {
		policy DepsPolicy
		want   bool
	}{
		{DepsPolicyBestEffort, true},
		{DepsPolicyFailFast, true},
		{"", false},
		{"retry", false},
	}

	for _, tt := range tests {
		if got := tt.policy.IsValid(); got != tt.want {
			t.Errorf("DepsPolicy(%q).IsValid() = %v, want %v", tt.policy, got, tt.want)
		}
	}
}

func TestConfigDir_Override(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/custom/dir")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != "/custom/dir" {
		t.Errorf("ConfigDir() = %q, want /custom/dir", dir)
	}
}

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}
