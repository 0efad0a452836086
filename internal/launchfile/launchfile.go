// SPDX-License-Identifier: MPL-2.0

// Package launchfile loads the per-app descriptor (launchfile.cue) and resolves
// it into the explicit path Layout every other component receives.
//
// The launchfile is optional: an app directory with just an entry file under the
// configured default name is launchable without one. When present, it overrides
// the layout defaults and can declare a post-setup hook.
package launchfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bootlace-cli/internal/config"
	"bootlace-cli/internal/cueutil"
)

// FileName is the well-known descriptor name inside an app directory.
const FileName = "launchfile.cue"

//go:embed launchfile_schema.cue
var launchfileSchema string

var (
	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("launchfile not found")
	// ErrParse is the sentinel error wrapped by ParseError.
	ErrParse = errors.New("launchfile parse error")
)

type (
	// NotFoundError is returned when an app directory has neither a
	// launchfile nor an entry file under the default name.
	// It wraps ErrNotFound for errors.Is() compatibility.
	NotFoundError struct {
		Dir string
	}

	// ParseError is returned when a launchfile exists but does not parse or
	// validate. It wraps ErrParse for errors.Is() compatibility.
	ParseError struct {
		Path  string
		Cause error
	}
)

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no launchfile or entry file found in %s", e.Dir)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Cause)
}

// Unwrap returns ErrParse for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrParse }

type (
	// Hooks holds optional lifecycle scripts from the launchfile.
	Hooks struct {
		// PostSetup is a POSIX shell script run once after a successful
		// environment setup. Failures are logged, never fatal.
		PostSetup string `json:"post_setup,omitempty"`
	}

	// Launchfile is the decoded per-app descriptor.
	Launchfile struct {
		Name         string `json:"name,omitempty"`
		Entry        string `json:"entry"`
		Requirements string `json:"requirements,omitempty"`
		EnvDir       string `json:"env_dir,omitempty"`
		Icon         string `json:"icon,omitempty"`
		Hooks        Hooks  `json:"hooks,omitempty"`

		// FilePath is where the descriptor was read from (empty when defaulted).
		FilePath string `json:"-"`
	}

	// Layout holds every path the launcher touches, resolved once relative to
	// the app directory and passed explicitly to all components. Nothing in
	// bootlace reads these locations ambiently.
	Layout struct {
		// AppDir is the absolute install root of the app.
		AppDir string
		// EnvDir is the isolated environment directory (may not exist yet).
		EnvDir string
		// ManifestPath is the dependency manifest (may not exist; optional).
		ManifestPath string
		// EntryPath is the app's entry file.
		EntryPath string
		// IconPath is the shortcut icon ("" when the app declares none).
		IconPath string
	}
)

// Parse reads and parses a launchfile from the given path.
func Parse(path string) (*Launchfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read launchfile at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses launchfile content from bytes.
// Uses cueutil.ParseAndDecodeString for the 3-step CUE parsing flow:
// compile schema → compile user data → validate and decode.
func ParseBytes(data []byte, path string) (*Launchfile, error) {
	result, err := cueutil.ParseAndDecodeString[Launchfile](
		launchfileSchema,
		data,
		"#Launchfile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	lf := result.Value
	lf.FilePath = path

	return lf, nil
}

// Resolve loads the app directory's launchfile (when present), fills the gaps
// from the config defaults, and returns the descriptor together with the fully
// resolved Layout. A missing launchfile is not an error; a malformed one is.
func Resolve(appDir string, defaults config.LayoutConfig) (*Launchfile, Layout, error) {
	absDir, err := filepath.Abs(appDir)
	if err != nil {
		return nil, Layout{}, fmt.Errorf("failed to resolve app directory %s: %w", appDir, err)
	}

	lf := &Launchfile{}
	lfPath := filepath.Join(absDir, FileName)
	if _, statErr := os.Stat(lfPath); statErr == nil {
		lf, err = Parse(lfPath)
		if err != nil {
			return nil, Layout{}, err
		}
	}

	if lf.Entry == "" {
		lf.Entry = defaults.EntryName
	}
	if lf.Requirements == "" {
		lf.Requirements = defaults.ManifestName
	}
	if lf.EnvDir == "" {
		lf.EnvDir = defaults.EnvDirName
	}
	if lf.Name == "" {
		lf.Name = filepath.Base(absDir)
	}

	layout := Layout{
		AppDir:       absDir,
		EnvDir:       filepath.Join(absDir, lf.EnvDir),
		ManifestPath: filepath.Join(absDir, lf.Requirements),
		EntryPath:    filepath.Join(absDir, lf.Entry),
	}
	if lf.Icon != "" {
		layout.IconPath = filepath.Join(absDir, lf.Icon)
	}

	// A directory with neither a launchfile nor an entry under the default
	// name is not an app. With a launchfile, a missing entry is reported at
	// launch time instead, naming the configured path.
	if lf.FilePath == "" && !fileExists(layout.EntryPath) {
		return nil, Layout{}, &NotFoundError{Dir: absDir}
	}

	return lf, layout, nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
