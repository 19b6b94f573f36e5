// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ctlfile

import "fmt"

// IOError reports a failed open, read, or write of a control file.
type IOError struct {
	Op   string // "open", "read", or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports a token that is not a base-10 integer.
type ParseError struct {
	Path  string
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("not an integer in %s: [%s]", e.Path, e.Token)
}

// RangeError reports an integer that does not fit in int64, or a list
// longer than the permitted maximum. Exactly one of Token or Max is
// meaningful: Token for overflow, Max (with Count) for list length.
type RangeError struct {
	Path  string
	Token string
	Count int
	Max   int
}

func (e *RangeError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("number is out of range in %s: %s", e.Path, e.Token)
	}
	return fmt.Sprintf("more than the maximum allowed %d values in %s (found %d)", e.Max, e.Path, e.Count)
}
