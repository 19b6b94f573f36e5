// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package speedtable discovers the frequency steps a clock domain can
// really run at.
//
// cpufreq accepts any value between the hardware minimum and maximum,
// but the processor snaps each request to one of a small set of real
// operating points. The only reliable way to learn that set is to ask:
// write a value, read back what the hardware settled on.
//
// [Discover] walks the domain from its maximum down to its minimum in
// fixed-size requests (the granularity), recording each new read-back
// value as a step. If the walk would produce more than [MaxSteps]
// steps, it starts again with twice the granularity, on the assumption
// that coarser requests reveal fewer distinct operating points. That
// assumption is a heuristic and does not hold for every part; when it
// fails discovery reports [ErrTooManySteps].
//
// The resulting [Table] is indexed fastest-first: index 0 is the
// maximum and [Table.LastStep] the minimum.
package speedtable
