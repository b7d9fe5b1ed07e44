// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/nexus-app/workspace-service/cmd"

func main() {
	cmd.Execute()
}
