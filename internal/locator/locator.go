// SPDX-License-Identifier: MPL-2.0

// Package locator picks the launcher binary used to run the app.
//
// Candidates are probed in a fixed priority order and the first one present on
// the machine wins. Probing is pure (existence checks only) and never cached:
// every launch re-evaluates the cascade, so an environment provisioned a moment
// ago is picked up immediately.
package locator

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrRuntimeUnavailable is the sentinel error wrapped by UnavailableError.
var ErrRuntimeUnavailable = errors.New("no usable launcher available")

type (
	// Candidate is one concrete way to run the app: a name for diagnostics and
	// a presence predicate returning the launcher path when the candidate is
	// usable on the current machine.
	Candidate struct {
		// Name identifies the candidate in diagnostics (e.g., "env pythonw").
		Name string
		// Detect probes for the candidate. It must be side-effect free.
		Detect func() (path string, ok bool)
		// Args are extra arguments the launcher needs before the entry file
		// (e.g., []string{"-3"} for the Windows py selector).
		Args []string
	}

	// Selection is the winning candidate, resolved to an executable path.
	Selection struct {
		Name string
		Path string
		Args []string
	}

	// ProbeResult reports one candidate's availability, for 'bootlace doctor'.
	ProbeResult struct {
		Name      string
		Path      string
		Available bool
	}

	// UnavailableError is returned when every candidate's predicate failed.
	// It wraps ErrRuntimeUnavailable for errors.Is() compatibility.
	UnavailableError struct {
		// Probed lists the candidate names in the order they were tried.
		Probed []string
	}
)

// Error implements the error interface for UnavailableError.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("no usable launcher available (probed: %s)", strings.Join(e.Probed, ", "))
}

// Unwrap returns ErrRuntimeUnavailable for errors.Is() compatibility.
func (e *UnavailableError) Unwrap() error { return ErrRuntimeUnavailable }

// Locate returns the first candidate, in slice order, whose Detect succeeds.
// When all candidates fail it returns an UnavailableError naming everything
// that was probed.
func Locate(candidates []Candidate) (Selection, error) {
	probed := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if path, ok := c.Detect(); ok {
			return Selection{Name: c.Name, Path: path, Args: c.Args}, nil
		}
		probed = append(probed, c.Name)
	}
	return Selection{}, &UnavailableError{Probed: probed}
}

// Probe evaluates every candidate without short-circuiting.
// Used by 'bootlace doctor' to show the whole cascade.
func Probe(candidates []Candidate) []ProbeResult {
	results := make([]ProbeResult, 0, len(candidates))
	for _, c := range candidates {
		path, ok := c.Detect()
		results = append(results, ProbeResult{Name: c.Name, Path: path, Available: ok})
	}
	return results
}

// FileCandidate builds a candidate present iff a regular file exists at path.
// Used for launchers at fixed locations, like the environment-local interpreter.
func FileCandidate(name, path string, args ...string) Candidate {
	return Candidate{
		Name: name,
		Args: args,
		Detect: func() (string, bool) {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				return "", false
			}
			return path, true
		},
	}
}

// PathCandidate builds a candidate present iff exe resolves via the
// executable search path.
func PathCandidate(name, exe string, args ...string) Candidate {
	return Candidate{
		Name: name,
		Args: args,
		Detect: func() (string, bool) {
			path, err := exec.LookPath(exe)
			if err != nil {
				return "", false
			}
			return path, true
		},
	}
}
