// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"bootlace-cli/internal/config"
	"bootlace-cli/internal/launchfile"
	"bootlace-cli/internal/locator"
	"bootlace-cli/internal/platform"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [appdir]",
	Short: "Show the launcher cascade and environment state for an app",
	Long: `Probe every launcher and base-interpreter candidate for the app in the
given directory (default: current directory) and report which paths exist.

Nothing is modified; doctor is read-only.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		appDir, _ := splitAppArgs(cmd, args)

		cfg := loadConfigOrDefault()
		plat := platform.Current()

		lf, layout, err := launchfile.Resolve(appDir, cfg.Layout)
		if err != nil {
			return reportFailure(os.Stderr, err)
		}

		fmt.Println(TitleStyle.Render("bootlace doctor") + SubtitleStyle.Render(" - "+lf.Name))
		fmt.Println()

		fmt.Println(SubtitleStyle.Render("Host"))
		fmt.Printf("  platform:   %s\n", plat.Name())
		if dir, err := config.ConfigDir(); err == nil {
			fmt.Printf("  config dir: %s\n", dir)
		}
		fmt.Println()

		fmt.Println(SubtitleStyle.Render("App layout"))
		printPath("entry", layout.EntryPath)
		printPath("manifest", layout.ManifestPath)
		printPath("environment", plat.EnvInterpreterPath(layout.EnvDir))
		if lf.FilePath != "" {
			printPath("launchfile", lf.FilePath)
		}
		fmt.Println()

		fmt.Println(SubtitleStyle.Render("Launcher cascade"))
		printProbes(locator.Probe(plat.LauncherCandidates(layout.EnvDir)))
		fmt.Println()

		fmt.Println(SubtitleStyle.Render("Base interpreters (for provisioning)"))
		printProbes(locator.Probe(plat.BaseInterpreterCandidates()))
		return nil
	},
}

// printPath prints one layout entry with an existence marker.
func printPath(label, path string) {
	marker := ErrorStyle.Render("✗")
	if _, err := os.Stat(path); err == nil {
		marker = SuccessStyle.Render("✓")
	}
	fmt.Printf("  %s %-12s %s\n", marker, label+":", CmdStyle.Render(path))
}

// printProbes prints the cascade probe results in priority order.
func printProbes(results []locator.ProbeResult) {
	for _, r := range results {
		if r.Available {
			fmt.Printf("  %s %-24s %s\n", SuccessStyle.Render("✓"), r.Name, CmdStyle.Render(r.Path))
		} else {
			fmt.Printf("  %s %-24s %s\n", ErrorStyle.Render("✗"), r.Name, SubtitleStyle.Render("not found"))
		}
	}
}
