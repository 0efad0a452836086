// SPDX-License-Identifier: MPL-2.0

//go:build windows

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"bootlace-cli/internal/locator"
)

// windowsPlatform implements Platform for Windows hosts. The windowed
// launcher is pythonw.exe (no console window); the 'py' version selector
// covers machines where only the launcher shim is installed.
type windowsPlatform struct{}

func host() Platform { return &windowsPlatform{} }

func (p *windowsPlatform) Name() string { return "windows" }

func (p *windowsPlatform) LauncherCandidates(envDir string) []locator.Candidate {
	return []locator.Candidate{
		locator.FileCandidate("env pythonw", p.EnvWindowedPath(envDir)),
		locator.PathCandidate("py launcher", "py", "-3"),
		locator.PathCandidate("pythonw on PATH", "pythonw"),
	}
}

func (p *windowsPlatform) BaseInterpreterCandidates() []locator.Candidate {
	return []locator.Candidate{
		locator.PathCandidate("py launcher", "py", "-3"),
		locator.PathCandidate("python on PATH", "python"),
	}
}

func (p *windowsPlatform) EnvInterpreterPath(envDir string) string {
	return filepath.Join(envDir, "Scripts", "python.exe")
}

func (p *windowsPlatform) EnvWindowedPath(envDir string) string {
	return filepath.Join(envDir, "Scripts", "pythonw.exe")
}

func (p *windowsPlatform) EnvBinDir(envDir string) string {
	return filepath.Join(envDir, "Scripts")
}

func (p *windowsPlatform) DesktopDir() (string, error) {
	profile := os.Getenv("USERPROFILE")
	if profile == "" {
		return "", fmt.Errorf("USERPROFILE is not set")
	}
	return filepath.Join(profile, "Desktop"), nil
}

func (p *windowsPlatform) ApplicationsDir() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return "", fmt.Errorf("APPDATA is not set")
	}
	return filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs"), nil
}

func (p *windowsPlatform) ShortcutPath(name, dir string) string {
	return filepath.Join(dir, lnkFileName(name))
}

// WriteShortcut creates a .lnk file through the WScript.Shell COM object,
// invoked via PowerShell. Re-running overwrites the existing link.
func (p *windowsPlatform) WriteShortcut(spec ShortcutSpec, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create shortcut directory: %w", err)
	}

	path := p.ShortcutPath(spec.Name, dir)
	script := FormatLnkScript(spec, path)

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to create shortcut via powershell: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return path, nil
}

// lnkFileName derives the .lnk file name from the display name, dropping
// characters Windows forbids in file names.
func lnkFileName(name string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		default:
			return r
		}
	}, name)
	if stem == "" {
		stem = "app"
	}
	return stem + ".lnk"
}
