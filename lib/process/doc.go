// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for freqd. These
// functions centralize the raw process-level operations that happen
// outside the structured logger:
//
//   - Fatal error reporting to stderr, including the errno name when
//     a system call failed.
//   - Re-raising a terminating signal with its default disposition, so
//     the exit status tells the parent which signal ended the daemon.
//   - Detaching into a new session (daemonizing) by re-executing the
//     running binary.
package process
