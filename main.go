// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/enggenv/envrun/cmd/envrun"

func main() {
	cmd.Execute()
}
