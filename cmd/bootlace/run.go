// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"bootlace-cli/internal/launch"
	"bootlace-cli/internal/platform"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [appdir] [-- app-args...]",
	Short: "Launch the app, provisioning its environment on first run",
	Long: `Launch the app in the given directory (default: current directory).

When the app's isolated environment does not exist yet and auto-setup is
enabled, it is created and populated first. On success the process is handed
over to the app: bootlace itself is gone by the time the app runs.

Arguments after '--' are passed to the app unchanged.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		appDir, extra := splitAppArgs(cmd, args)

		cfg := loadConfigOrDefault()
		o := launch.New(platform.Current(), cfg, newLogger())
		if err := o.Run(cmd.Context(), appDir, extra); err != nil {
			return reportFailure(os.Stderr, err)
		}
		return nil
	},
}

// splitAppArgs separates the app directory from pass-through arguments.
// The first positional argument is the directory unless it sits after the
// '--' separator, in which case everything belongs to the app.
func splitAppArgs(cmd *cobra.Command, args []string) (string, []string) {
	if len(args) == 0 {
		return ".", nil
	}
	if cmd.ArgsLenAtDash() == 0 {
		return ".", args
	}
	return args[0], args[1:]
}

// newLogger builds the CLI logger, honoring --verbose.
func newLogger() *log.Logger {
	opts := log.Options{Prefix: "bootlace"}
	if verbose {
		opts.Level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, opts)
}
