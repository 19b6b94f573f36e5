// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package loadstat turns the cumulative per-core counters in /proc/stat
// into per-core idle percentages.
//
// /proc/stat carries one row per core:
//
//	cpu3 user nice system idle iowait irq softirq steal guest guest_nice
//
// Only the first five counters are used. Idle time is idle, plus nice
// and iowait when the corresponding [Options] flag is set (both are by
// default: niced batch work and I/O stalls do not justify a faster
// clock). Total time is the sum of all five counters, so nice and iowait
// count as busy when their flag is cleared.
//
// An [Accountant] keeps the previous totals of each core in its domain
// and reports 100*Δidle/Δtotal on every sample. A core with no previous
// totals, or whose row is missing from this read, reports nothing.
package loadstat
