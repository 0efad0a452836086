// SPDX-License-Identifier: MPL-2.0

package main

import (
	cmd "bootlace-cli/cmd/bootlace"
)

func main() {
	cmd.Execute()
}
