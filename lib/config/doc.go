// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for freqd.
//
// Configuration comes from at most one file, named either by the
// FREQD_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. Without a file
// the daemon runs on [Default] values; command-line flags are applied
// on top by cmd/freqd in either case. YAML is the primary format; files
// named *.json or *.jsonc are accepted as JSON with comments.
//
// Variable expansion is performed on path fields after loading:
// ${SYS_ROOT}, ${HOME}, and ${VAR:-default} patterns are expanded, so
// sensor paths can be written relative to a non-default sysfs mount.
//
// Key exports:
//
//   - [Config] -- master struct with Load, Speed, Thermal, Power, Log
//   - [Default] -- the values freqd uses when nothing overrides them
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
//
// This package depends on no other freqd packages.
package config
