// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package launch

import (
	"syscall"
)

// execHandoff replaces the current process with the launcher via execve.
// It does not return on success: the app takes over the pid, the terminal,
// and the exit status. On failure it returns the execve error.
func execHandoff(path string, argv []string, env []string) error {
	return syscall.Exec(path, argv, env)
}
