// SPDX-License-Identifier: MPL-2.0

//go:build windows

package launch

import (
	"os"
	"os/exec"
)

// execHandoff starts the launcher as a detached child and exits the current
// process. Windows has no execve; a windowed app must not stay tied to the
// console process that started it, so the child is released rather than
// waited on.
func execHandoff(path string, argv []string, env []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return err
	}
	if err := cmd.Process.Release(); err != nil {
		return err
	}

	os.Exit(0)
	return nil
}
