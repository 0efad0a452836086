// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for bootlace.
//
// This package implements the Cobra command hierarchy for the bootlace CLI:
// the root command, 'run' (launch an app, provisioning on first run),
// 'setup' (provision or repair without launching), 'doctor' (show the
// launcher cascade and environment state), and 'shortcut' (install desktop
// and menu links).
package cmd
