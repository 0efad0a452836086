// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// RunPostSetupHook executes the launchfile's post_setup script in the embedded
// POSIX interpreter, with the environment's bin directory prepended to PATH so
// the script sees the freshly provisioned tools first. The interpreter runs
// in-process, so hooks behave identically on every host.
func RunPostSetupHook(ctx context.Context, script, workDir, envBinDir string, stdout, stderr io.Writer) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "post_setup")
	if err != nil {
		return fmt.Errorf("hook syntax error: %w", err)
	}

	env := append(os.Environ(), "PATH="+envBinDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	runner, err := interp.New(
		interp.Dir(workDir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create hook interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return fmt.Errorf("hook exited with status %d", int(exitStatus))
		}
		return fmt.Errorf("hook execution failed: %w", err)
	}

	return nil
}
