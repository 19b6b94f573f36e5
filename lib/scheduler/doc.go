// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler runs the control loop of one clock domain.
//
// Time is counted in ticks of [Tick]. Three independent checks fall due
// on their own intervals: load (always), temperature (when a thermal
// file is configured), and power source (when a power file is
// configured). Whenever any check falls due the policy is evaluated at
// once; the loop then waits for the nearest next due tick.
//
// Control messages ([ForceMax], [ForceMin], [Resume], [Terminate])
// arrive on a mailbox and are handled on the loop goroutine, so they
// never interleave with an evaluation or with each other. A message
// that arrives mid-wait does not restart the wait: the loop goes back
// to the same deadline.
package scheduler
