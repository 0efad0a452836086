// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"fmt"
	"strings"
)

// FormatDesktopEntry renders spec as a freedesktop .desktop entry.
// Kept free of build tags so the format is testable on every host.
func FormatDesktopEntry(spec ShortcutSpec) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", spec.Name)
	if spec.Description != "" {
		fmt.Fprintf(&b, "Comment=%s\n", spec.Description)
	}

	exec := quoteDesktopArg(spec.Target)
	for _, arg := range spec.Args {
		exec += " " + quoteDesktopArg(arg)
	}
	fmt.Fprintf(&b, "Exec=%s\n", exec)

	if spec.WorkingDir != "" {
		fmt.Fprintf(&b, "Path=%s\n", spec.WorkingDir)
	}
	if spec.Icon != "" {
		fmt.Fprintf(&b, "Icon=%s\n", spec.Icon)
	}
	b.WriteString("Terminal=false\n")
	return b.String()
}

// quoteDesktopArg quotes an Exec= argument per the desktop-entry spec when it
// contains whitespace or reserved characters.
func quoteDesktopArg(arg string) string {
	if !strings.ContainsAny(arg, " \t\"'\\><~|&;$*?#()`") {
		return arg
	}
	escaped := strings.ReplaceAll(arg, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "`", "\\`")
	escaped = strings.ReplaceAll(escaped, `$`, `\$`)
	return `"` + escaped + `"`
}

// FormatLnkScript renders the PowerShell script that writes a .lnk shortcut
// through the WScript.Shell COM object. The icon falls back to the target
// itself when none is declared, matching the shell's own behavior for
// executables. Kept free of build tags so the format is testable everywhere.
func FormatLnkScript(spec ShortcutSpec, lnkPath string) string {
	icon := spec.Icon
	if icon == "" {
		icon = spec.Target
	}

	var b strings.Builder
	b.WriteString("$sh = New-Object -ComObject WScript.Shell; ")
	fmt.Fprintf(&b, "$sc = $sh.CreateShortcut(%s); ", quotePS(lnkPath))
	fmt.Fprintf(&b, "$sc.TargetPath = %s; ", quotePS(spec.Target))
	if len(spec.Args) > 0 {
		fmt.Fprintf(&b, "$sc.Arguments = %s; ", quotePS(strings.Join(spec.Args, " ")))
	}
	if spec.WorkingDir != "" {
		fmt.Fprintf(&b, "$sc.WorkingDirectory = %s; ", quotePS(spec.WorkingDir))
	}
	fmt.Fprintf(&b, "$sc.IconLocation = %s; ", quotePS(icon))
	if spec.Description != "" {
		fmt.Fprintf(&b, "$sc.Description = %s; ", quotePS(spec.Description))
	}
	b.WriteString("$sc.Save()")
	return b.String()
}

// quotePS single-quotes a PowerShell string literal (single quotes are the
// only character needing escaping inside).
func quotePS(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
