// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"bootlace-cli/internal/launch"
	"bootlace-cli/internal/platform"
	"bootlace-cli/internal/provision"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup [appdir]",
	Short: "Provision or repair the app's environment without launching",
	Long: `Create the app's isolated environment and install its declared
dependencies, without launching the app.

When the environment already exists, setup verifies it against the app's
dependency manifest and reinstalls when the manifest changed or a previous
install failed.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		appDir, _ := splitAppArgs(cmd, args)

		cfg := loadConfigOrDefault()
		o := launch.New(platform.Current(), cfg, newLogger())
		res, err := o.Setup(cmd.Context(), appDir)
		if err != nil {
			return reportFailure(os.Stderr, err)
		}

		switch res.Status {
		case provision.StatusCreated:
			fmt.Println(SuccessStyle.Render("✓") + " Environment created and populated")
		case provision.StatusAlreadyPresent:
			fmt.Println(SuccessStyle.Render("✓") + " Environment is up to date")
		}
		if !res.DepsInstalled {
			fmt.Println(WarningStyle.Render("!") + " Dependency installation failed; run 'bootlace setup' again to retry")
		}
		return nil
	},
}
