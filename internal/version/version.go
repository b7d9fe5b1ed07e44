// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package version

// Version is overridden at build time with -ldflags "-X ...version.Version=<tag>".
var Version = "0.1.0" // x-release-please-version
