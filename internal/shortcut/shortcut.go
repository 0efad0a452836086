// SPDX-License-Identifier: MPL-2.0

// Package shortcut installs desktop and application-menu links for an app.
// It runs out-of-band only ('bootlace shortcut'); the launch path never
// touches it.
package shortcut

import (
	"errors"
	"fmt"
	"os"

	"bootlace-cli/internal/platform"

	"github.com/charmbracelet/log"
)

var (
	// ErrNoLocation is returned when neither the desktop nor the applications
	// directory could be resolved on this host.
	ErrNoLocation = errors.New("no shortcut location resolvable")
	// ErrInstallFailed is the sentinel error wrapped by InstallError.
	ErrInstallFailed = errors.New("shortcut installation failed")
)

// InstallError is returned when writing a shortcut into a resolved location
// failed. It wraps ErrInstallFailed for errors.Is() compatibility.
type InstallError struct {
	Location string
	Cause    error
}

// Error implements the error interface for InstallError.
func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install %s shortcut: %v", e.Location, e.Cause)
}

// Unwrap returns ErrInstallFailed for errors.Is() compatibility.
func (e *InstallError) Unwrap() error { return ErrInstallFailed }

type (
	// Options controls where links go and whether existing ones are replaced.
	Options struct {
		// Desktop installs a link on the user's desktop.
		Desktop bool
		// Menu installs a link in the application menu.
		Menu bool
		// Force overwrites links that already exist. Without it existing
		// links are left untouched and reported as skipped.
		Force bool
	}

	// Result reports what Install did, per location.
	Result struct {
		// Created lists the link paths written.
		Created []string
		// Skipped lists pre-existing link paths left alone.
		Skipped []string
	}

	// Installer writes the platform's shortcut format into the resolved
	// locations.
	Installer struct {
		Platform platform.Platform
		Logger   *log.Logger
	}
)

// DefaultOptions installs into both locations without overwriting.
func DefaultOptions() Options {
	return Options{Desktop: true, Menu: true}
}

// New creates an Installer for the given platform.
func New(p platform.Platform, logger *log.Logger) *Installer {
	return &Installer{Platform: p, Logger: logger}
}

// Install writes the shortcut described by spec into each requested location.
// A location whose directory cannot be resolved is skipped with a warning;
// Install fails only when no location could be resolved at all, or a resolved
// write failed.
func (i *Installer) Install(spec platform.ShortcutSpec, opts Options) (Result, error) {
	type location struct {
		name    string
		resolve func() (string, error)
	}

	var locations []location
	if opts.Desktop {
		locations = append(locations, location{"desktop", i.Platform.DesktopDir})
	}
	if opts.Menu {
		locations = append(locations, location{"application menu", i.Platform.ApplicationsDir})
	}
	if len(locations) == 0 {
		return Result{}, ErrNoLocation
	}

	var res Result
	resolved := 0
	for _, loc := range locations {
		dir, err := loc.resolve()
		if err != nil {
			i.Logger.Warn("shortcut location unavailable", "location", loc.name, "err", err)
			continue
		}
		resolved++

		path := i.Platform.ShortcutPath(spec.Name, dir)
		if !opts.Force && fileExists(path) {
			i.Logger.Info("shortcut already exists, skipping", "path", path)
			res.Skipped = append(res.Skipped, path)
			continue
		}

		created, err := i.Platform.WriteShortcut(spec, dir)
		if err != nil {
			return res, &InstallError{Location: loc.name, Cause: err}
		}
		i.Logger.Info("shortcut installed", "path", created)
		res.Created = append(res.Created, created)
	}

	if resolved == 0 {
		return res, ErrNoLocation
	}
	return res, nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
