// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/forgecad/forge/cmd/forge"

func main() {
	cmd.Execute()
}
