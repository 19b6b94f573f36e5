// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ctlfile reads and writes single-line kernel control files
// (sysfs attributes, procfs entries) with typed failures.
//
// Every function reads or writes only the first line of the file.
// Failures come back as one of three error types so callers can tell
// them apart with errors.As:
//
//   - [*IOError]: the file could not be opened, read, or written. Wraps
//     the underlying *os.PathError / syscall.Errno.
//   - [*ParseError]: a token that should have been a base-10 integer
//     was not.
//   - [*RangeError]: an integer overflowed int64, or a list held more
//     values than the caller allows.
//
// The daemon treats all three as fatal. These are kernel interfaces
// that are contractually always present; there is nothing to retry.
package ctlfile
