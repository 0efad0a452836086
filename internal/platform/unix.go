// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bootlace-cli/internal/locator"
)

// unixPlatform implements Platform for freedesktop-style hosts. There is no
// separate windowed interpreter on unix; the regular one serves both roles.
type unixPlatform struct{}

func host() Platform { return &unixPlatform{} }

func (p *unixPlatform) Name() string { return "unix" }

func (p *unixPlatform) LauncherCandidates(envDir string) []locator.Candidate {
	return []locator.Candidate{
		locator.FileCandidate("env python", p.EnvInterpreterPath(envDir)),
		locator.PathCandidate("python3 on PATH", "python3"),
		locator.PathCandidate("python on PATH", "python"),
	}
}

func (p *unixPlatform) BaseInterpreterCandidates() []locator.Candidate {
	return []locator.Candidate{
		locator.PathCandidate("python3 on PATH", "python3"),
		locator.PathCandidate("python on PATH", "python"),
	}
}

func (p *unixPlatform) EnvInterpreterPath(envDir string) string {
	return filepath.Join(envDir, "bin", "python")
}

func (p *unixPlatform) EnvWindowedPath(envDir string) string {
	return p.EnvInterpreterPath(envDir)
}

func (p *unixPlatform) EnvBinDir(envDir string) string {
	return filepath.Join(envDir, "bin")
}

// DesktopDir honors XDG_DESKTOP_DIR, falling back to ~/Desktop.
func (p *unixPlatform) DesktopDir() (string, error) {
	if dir := os.Getenv("XDG_DESKTOP_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "Desktop"), nil
}

func (p *unixPlatform) ApplicationsDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "applications"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "applications"), nil
}

func (p *unixPlatform) ShortcutPath(name, dir string) string {
	return filepath.Join(dir, desktopEntryFileName(name))
}

// WriteShortcut writes a freedesktop .desktop entry. Re-running overwrites the
// previous entry, so installation is idempotent.
func (p *unixPlatform) WriteShortcut(spec ShortcutSpec, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create shortcut directory: %w", err)
	}

	path := p.ShortcutPath(spec.Name, dir)
	if err := os.WriteFile(path, []byte(FormatDesktopEntry(spec)), 0o755); err != nil {
		return "", fmt.Errorf("failed to write desktop entry: %w", err)
	}
	return path, nil
}

// desktopEntryFileName derives a safe .desktop file name from the display name.
func desktopEntryFileName(name string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	if stem == "" {
		stem = "app"
	}
	return stem + ".desktop"
}
