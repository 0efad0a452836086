// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoBaseRuntime is the sentinel error wrapped by NoBaseRuntimeError.
	ErrNoBaseRuntime = errors.New("no base interpreter available")
	// ErrEnvCreationFailed is the sentinel error wrapped by EnvCreationError.
	ErrEnvCreationFailed = errors.New("environment creation failed")
	// ErrDepsInstallFailed is the sentinel error wrapped by DepsInstallError.
	ErrDepsInstallFailed = errors.New("dependency installation failed")
)

type (
	// NoBaseRuntimeError is returned when no interpreter capable of creating
	// isolated environments exists on the machine.
	NoBaseRuntimeError struct {
		// Probed lists the base-interpreter candidates that were tried.
		Probed []string
	}

	// EnvCreationError is returned when the environment-creation subprocess
	// failed. The staging directory has been discarded.
	EnvCreationError struct {
		EnvDir string
		Cause  error
	}

	// DepsInstallError is returned (fail-fast policy) or logged (best-effort)
	// when installing the declared dependencies failed.
	DepsInstallError struct {
		ManifestPath string
		Cause        error
	}
)

// Error implements the error interface for NoBaseRuntimeError.
func (e *NoBaseRuntimeError) Error() string {
	return fmt.Sprintf("no base interpreter available (probed: %s)", strings.Join(e.Probed, ", "))
}

// Unwrap returns ErrNoBaseRuntime for errors.Is() compatibility.
func (e *NoBaseRuntimeError) Unwrap() error { return ErrNoBaseRuntime }

// Error implements the error interface for EnvCreationError.
func (e *EnvCreationError) Error() string {
	return fmt.Sprintf("failed to create environment at %s: %v", e.EnvDir, e.Cause)
}

// Unwrap returns ErrEnvCreationFailed for errors.Is() compatibility.
func (e *EnvCreationError) Unwrap() error { return ErrEnvCreationFailed }

// Error implements the error interface for DepsInstallError.
func (e *DepsInstallError) Error() string {
	return fmt.Sprintf("failed to install dependencies from %s: %v", e.ManifestPath, e.Cause)
}

// Unwrap returns ErrDepsInstallFailed for errors.Is() compatibility.
func (e *DepsInstallError) Unwrap() error { return ErrDepsInstallFailed }
