// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loadstat

// Options selects which time counts as idle.
type Options struct {
	NiceIsIdle   bool
	IOWaitIsIdle bool
}

// DefaultOptions counts both nice and iowait time as idle.
func DefaultOptions() Options {
	return Options{NiceIsIdle: true, IOWaitIsIdle: true}
}

// Idle is one core's idle percentage over the last sampling window.
type Idle struct {
	Core    int
	Percent uint64
}

type totals struct {
	total uint64
	idle  uint64
}

// Accountant tracks the previous totals of every core in one clock
// domain. It is not safe for concurrent use; its owner is the domain's
// scheduler loop.
type Accountant struct {
	cores    []int
	options  Options
	previous map[int]totals
}

// NewAccountant returns an Accountant for cores with no history.
func NewAccountant(cores []int, options Options) *Accountant {
	return &Accountant{
		cores:    append([]int(nil), cores...),
		options:  options,
		previous: make(map[int]totals, len(cores)),
	}
}

// Sample records the counters in stat as the new baseline of each core
// and returns the idle percentage of every core that had a baseline and
// whose total time advanced. Cores missing from stat keep their old
// baseline and are not reported.
func (a *Accountant) Sample(stat Stat) []Idle {
	var idle []Idle
	for _, core := range a.cores {
		counters, ok := stat[core]
		if !ok {
			continue
		}
		current := a.totals(counters)
		previous, hadBaseline := a.previous[core]
		a.previous[core] = current

		if !hadBaseline || current.total < previous.total || current.idle < previous.idle {
			continue
		}
		totalDelta := current.total - previous.total
		if totalDelta == 0 {
			continue
		}
		idleDelta := current.idle - previous.idle
		percent := idleDelta * 100 / totalDelta
		// Only reachable when a busy counter went backwards.
		if percent > 100 {
			percent = 100
		}
		idle = append(idle, Idle{Core: core, Percent: percent})
	}
	return idle
}

// Reset discards the baseline of every core. The next Sample only
// re-establishes baselines and reports nothing, so the first percentage
// after a reset covers a fresh window.
func (a *Accountant) Reset() {
	clear(a.previous)
}

func (a *Accountant) totals(counters Counters) totals {
	idle := counters.Idle
	if a.options.NiceIsIdle {
		idle += counters.Nice
	}
	if a.options.IOWaitIsIdle {
		idle += counters.IOWait
	}
	return totals{
		total: counters.User + counters.Nice + counters.System + counters.Idle + counters.IOWait,
		idle:  idle,
	}
}
