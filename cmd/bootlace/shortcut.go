// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"bootlace-cli/internal/launchfile"
	"bootlace-cli/internal/platform"
	"bootlace-cli/internal/shortcut"

	"github.com/spf13/cobra"
)

var (
	shortcutForce   bool
	shortcutDesktop bool
	shortcutMenu    bool

	shortcutCmd = &cobra.Command{
		Use:   "shortcut [appdir]",
		Short: "Install desktop and application-menu links for the app",
		Long: `Install links that launch the app in the given directory (default:
current directory) through 'bootlace run'.

By default both a desktop link and an application-menu entry are installed.
Existing links are left untouched unless --force is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			appDir, _ := splitAppArgs(cmd, args)

			cfg := loadConfigOrDefault()
			lf, layout, err := launchfile.Resolve(appDir, cfg.Layout)
			if err != nil {
				return reportFailure(os.Stderr, err)
			}

			self, err := os.Executable()
			if err != nil {
				return reportFailure(os.Stderr, fmt.Errorf("failed to resolve own executable: %w", err))
			}

			spec := platform.ShortcutSpec{
				Name:        lf.Name,
				Target:      self,
				Args:        []string{"run", layout.AppDir},
				WorkingDir:  layout.AppDir,
				Icon:        resolvedIcon(layout),
				Description: "Launch " + lf.Name,
			}

			opts := shortcut.Options{Desktop: shortcutDesktop, Menu: shortcutMenu, Force: shortcutForce}
			inst := shortcut.New(platform.Current(), newLogger())
			res, err := inst.Install(spec, opts)
			if err != nil {
				return reportFailure(os.Stderr, err)
			}

			for _, p := range res.Created {
				fmt.Println(SuccessStyle.Render("✓") + " Installed " + CmdStyle.Render(p))
			}
			for _, p := range res.Skipped {
				fmt.Println(SubtitleStyle.Render("- Already exists: ") + CmdStyle.Render(p) + SubtitleStyle.Render(" (use --force to replace)"))
			}
			return nil
		},
	}
)

func init() {
	shortcutCmd.Flags().BoolVarP(&shortcutForce, "force", "f", false, "replace existing links")
	shortcutCmd.Flags().BoolVar(&shortcutDesktop, "desktop", true, "install a desktop link")
	shortcutCmd.Flags().BoolVar(&shortcutMenu, "menu", true, "install an application-menu entry")
}

// resolvedIcon returns the app's icon path when the file exists, "" otherwise.
// The platform shortcut format falls back to the target itself.
func resolvedIcon(layout launchfile.Layout) string {
	if layout.IconPath == "" {
		return ""
	}
	if _, err := os.Stat(layout.IconPath); err != nil {
		return ""
	}
	return layout.IconPath
}
