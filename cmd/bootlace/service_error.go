// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"bootlace-cli/internal/issue"
	"bootlace-cli/internal/launch"
	"bootlace-cli/internal/launchfile"
	"bootlace-cli/internal/locator"
	"bootlace-cli/internal/provision"
	"bootlace-cli/internal/shortcut"
	"bootlace-cli/pkg/types"
)

// classifyError maps a launch or setup failure onto the issue catalog entry
// that explains it and the exit code the process should report. Unrecognized
// errors get no catalog entry and a generic failure code.
func classifyError(err error) (issue.Id, types.ExitCode) {
	switch {
	case errors.Is(err, provision.ErrNoBaseRuntime):
		return issue.NoBaseRuntimeId, types.ExitRuntimeUnavailable
	case errors.Is(err, locator.ErrRuntimeUnavailable):
		return issue.RuntimeUnavailableId, types.ExitRuntimeUnavailable
	case errors.Is(err, provision.ErrEnvCreationFailed):
		return issue.EnvCreationFailedId, types.ExitFailure
	case errors.Is(err, provision.ErrDepsInstallFailed):
		return issue.DepsInstallFailedId, types.ExitFailure
	case errors.Is(err, launch.ErrEntryNotFound):
		return issue.EntryNotFoundId, types.ExitFailure
	case errors.Is(err, launchfile.ErrNotFound):
		return issue.LaunchfileNotFoundId, types.ExitFailure
	case errors.Is(err, launchfile.ErrParse):
		return issue.LaunchfileParseErrorId, types.ExitFailure
	case errors.Is(err, shortcut.ErrNoLocation), errors.Is(err, shortcut.ErrInstallFailed):
		return issue.ShortcutFailedId, types.ExitFailure
	default:
		return 0, types.ExitFailure
	}
}

// reportFailure prints the error and, when the catalog knows the failure
// class, the rendered remediation text. It returns the ExitError for RunE.
func reportFailure(stderr io.Writer, err error) *ExitError {
	id, code := classifyError(err)

	fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	if id != 0 {
		if catalogEntry := issue.Get(id); catalogEntry != nil {
			rendered, renderErr := catalogEntry.Render("dark")
			if renderErr != nil {
				slog.Warn("failed to render issue catalog entry", "issueID", id, "error", renderErr)
			} else {
				fmt.Fprint(stderr, rendered)
			}
		}
	}

	return &ExitError{Code: code, Err: err}
}
