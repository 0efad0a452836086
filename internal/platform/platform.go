// SPDX-License-Identifier: MPL-2.0

// Package platform supplies the host-specific pieces of the launcher: the
// launcher-candidate cascade, the base-interpreter fallback used for
// provisioning, and the desktop-shortcut format.
//
// Orchestration code never branches on GOOS; it asks the Platform interface.
// Other targets plug in their own candidate lists and shortcut formats without
// touching the launch logic.
package platform

import (
	"bootlace-cli/internal/locator"
)

type (
	// Platform abstracts everything that differs between host operating systems.
	Platform interface {
		// Name returns the platform name ("windows", "linux", ...).
		Name() string

		// LauncherCandidates returns the launch cascade in priority order:
		// environment-local windowed launcher first, then the system
		// version-selector, then a windowed interpreter from PATH.
		LauncherCandidates(envDir string) []locator.Candidate

		// BaseInterpreterCandidates returns the fallback used to find an
		// interpreter capable of creating isolated environments.
		BaseInterpreterCandidates() []locator.Candidate

		// EnvInterpreterPath returns the console interpreter inside an
		// environment rooted at envDir. Its existence is the provisioning
		// idempotence gate.
		EnvInterpreterPath(envDir string) string

		// EnvWindowedPath returns the windowed (no console) launcher inside
		// an environment rooted at envDir.
		EnvWindowedPath(envDir string) string

		// EnvBinDir returns the directory holding the environment's binaries.
		EnvBinDir(envDir string) string

		// DesktopDir resolves the user's desktop directory.
		DesktopDir() (string, error)

		// ApplicationsDir resolves the per-user application-menu directory
		// (Start Menu programs on Windows, ~/.local/share/applications on
		// freedesktop hosts).
		ApplicationsDir() (string, error)

		// ShortcutPath returns where a shortcut with the given display name
		// lives inside dir, whether or not it exists yet.
		ShortcutPath(name, dir string) string

		// WriteShortcut writes a shortcut for spec into dir, overwriting any
		// previous one, and returns the created path.
		WriteShortcut(spec ShortcutSpec, dir string) (string, error)
	}

	// ShortcutSpec describes a desktop shortcut, format-independently.
	ShortcutSpec struct {
		// Name is the display name (also the shortcut's file stem).
		Name string
		// Target is the executable the shortcut runs.
		Target string
		// Args are arguments passed to Target.
		Args []string
		// WorkingDir is the directory the target starts in.
		WorkingDir string
		// Icon is the icon file path ("" falls back to the target itself).
		Icon string
		// Description is the hover/tooltip text.
		Description string
	}
)

// Current returns the Platform implementation for the host OS.
func Current() Platform {
	return host()
}
