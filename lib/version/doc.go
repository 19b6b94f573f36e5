// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version describes the running freqd binary for --version and
// the startup log line.
//
// Release builds inject [Version], [GitCommit], [GitDirty] and
// [BuildTime] with -ldflags -X. Anything left empty is taken from the
// VCS stamp the Go toolchain records in the binary.
package version
