// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bootlace-cli/internal/config"
	"bootlace-cli/internal/issue"
	"bootlace-cli/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "bootlace",
		Short: "Bootstrap and launch Python apps from a self-contained directory",
		Long: TitleStyle.Render("bootlace") + SubtitleStyle.Render(" - Bootstrap and launch Python apps") + `

bootlace turns a plain directory holding a Python program into a
double-clickable app: on first run it creates an isolated environment
(venv), installs the dependencies declared in the app's manifest, and
then hands the process over to the best available launcher.

An app directory needs nothing but an entry file. An optional
'launchfile.cue' can override the entry name, the manifest, the
environment directory, and declare a post-setup hook.

` + SubtitleStyle.Render("Examples:") + `
  bootlace run ~/apps/chronodex        Launch the app (provisions on first run)
  bootlace setup ~/apps/chronodex      Provision or repair without launching
  bootlace doctor ~/apps/chronodex     Show the launcher cascade and env state
  bootlace shortcut ~/apps/chronodex   Install desktop and menu links`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/bootlace/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(shortcutCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	// Set custom config file path if provided via --config flag
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Always surface config loading errors to the user; the run proceeds
		// on built-in defaults.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		if verbose {
			if entry := issue.Get(issue.ConfigLoadFailedId); entry != nil {
				if rendered, renderErr := entry.Render("dark"); renderErr == nil {
					fmt.Fprint(os.Stderr, rendered)
				}
			}
		}
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// loadConfigOrDefault returns the loaded config, falling back to the built-in
// defaults when loading failed (the warning was already printed by
// initRootConfig).
func loadConfigOrDefault() *config.Config {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}
