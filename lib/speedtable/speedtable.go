// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package speedtable

import (
	"errors"
	"fmt"
	"log/slog"
)

// MaxSteps bounds the number of entries in a Table.
const MaxSteps = 15

// Request granularity bounds, in kHz.
const (
	MinGranularity int64 = 25000
	MaxGranularity       = MinGranularity << 8
)

var (
	// ErrNoRange means the clamped maximum is not above the clamped
	// minimum, so there is nothing to scale between.
	ErrNoRange = errors.New("no speed steps could be determined")

	// ErrTooManySteps means every granularity produced more than
	// MaxSteps distinct operating points.
	ErrTooManySteps = errors.New("detected more speed steps than can be handled")
)

// Hardware is the part of a clock domain that discovery drives.
// cpufreq.Domain implements it.
type Hardware interface {
	Bounds() (minKHz, maxKHz int64, err error)
	Frequency() (int64, error)
	SetFrequency(khz int64) error
}

// Limits are the user-configured bounds. Zero means unbounded.
type Limits struct {
	MinKHz int64
	MaxKHz int64
}

// Step is one entry of a Table.
type Step struct {
	Index int
	KHz   int64
}

// Table is the ordered set of real operating points of a domain.
// Frequency strictly decreases with index.
type Table struct {
	khz         []int64
	granularity int64
}

// New builds a Table from frequencies ordered fastest first. It exists
// for callers that already know the operating points; it rejects
// input that Discover could never produce.
func New(khz ...int64) (*Table, error) {
	if len(khz) == 0 || len(khz) > MaxSteps {
		return nil, fmt.Errorf("table needs 1 to %d steps, got %d", MaxSteps, len(khz))
	}
	for i := 1; i < len(khz); i++ {
		if khz[i] >= khz[i-1] {
			return nil, fmt.Errorf("step %d (%d kHz) is not below step %d (%d kHz)", i, khz[i], i-1, khz[i-1])
		}
	}
	return &Table{khz: append([]int64(nil), khz...)}, nil
}

// Len returns the number of steps.
func (t *Table) Len() int { return len(t.khz) }

// LastStep returns the index of the slowest step.
func (t *Table) LastStep() int { return len(t.khz) - 1 }

// KHz returns the frequency of step index.
func (t *Table) KHz(index int) int64 { return t.khz[index] }

// Granularity returns the request size the table was discovered with,
// or zero for tables built with New.
func (t *Table) Granularity() int64 { return t.granularity }

// Steps returns a copy of the table's entries.
func (t *Table) Steps() []Step {
	steps := make([]Step, len(t.khz))
	for i, khz := range t.khz {
		steps[i] = Step{Index: i, KHz: khz}
	}
	return steps
}

// LogValue renders the table as "index:kHz" pairs.
func (t *Table) LogValue() slog.Value {
	attrs := make([]slog.Attr, len(t.khz))
	for i, khz := range t.khz {
		attrs[i] = slog.Int64(fmt.Sprint(i), khz)
	}
	return slog.GroupValue(attrs...)
}

// Discover probes hardware for its operating points between its
// bounds, clamped to limits. On success the domain is left at the
// slowest step. Every write goes through hardware.SetFrequency, which
// is responsible for the settle delay.
func Discover(hardware Hardware, limits Limits, logger *slog.Logger) (*Table, error) {
	lowest, highest, err := hardware.Bounds()
	if err != nil {
		return nil, err
	}
	logger.Debug("hardware speed range", "min_khz", lowest, "max_khz", highest)

	if limits.MinKHz > 0 {
		lowest = max(lowest, limits.MinKHz)
	}
	if limits.MaxKHz > 0 {
		highest = min(highest, limits.MaxKHz)
	}

	for granularity := MinGranularity; granularity <= MaxGranularity; granularity *= 2 {
		lowest = max(lowest, granularity)
		if highest <= lowest {
			return nil, fmt.Errorf("%w: max %d kHz <= min %d kHz", ErrNoRange, highest, lowest)
		}

		khz, complete, err := probe(hardware, lowest, highest, granularity)
		if err != nil {
			return nil, err
		}
		if complete {
			table := &Table{khz: khz, granularity: granularity}
			logger.Debug("speed table discovered", "granularity_khz", granularity, "steps", table)
			return table, nil
		}
		logger.Debug("too many speed steps, retrying coarser", "granularity_khz", granularity)
	}
	return nil, ErrTooManySteps
}

// probe runs one discovery pass. complete is false when MaxSteps were
// recorded before the walk reached lowest.
func probe(hardware Hardware, lowest, highest, granularity int64) (khz []int64, complete bool, err error) {
	// Climb to the top one granularity at a time; some parts fault on
	// large jumps.
	current, err := hardware.Frequency()
	if err != nil {
		return nil, false, err
	}
	for ; current < highest; current += granularity {
		if err := hardware.SetFrequency(min(current, highest)); err != nil {
			return nil, false, err
		}
	}
	if err := hardware.SetFrequency(highest); err != nil {
		return nil, false, err
	}
	top, err := hardware.Frequency()
	if err != nil {
		return nil, false, err
	}
	khz = []int64{top}

	for request := highest - granularity; request > lowest-granularity; request -= granularity {
		request = max(request, lowest)
		if err := hardware.SetFrequency(request); err != nil {
			return nil, false, err
		}
		observed, err := hardware.Frequency()
		if err != nil {
			return nil, false, err
		}
		// Only a lower read-back is a new step; a part that snaps a
		// lower request upward has not revealed anything.
		if observed >= khz[len(khz)-1] {
			continue
		}
		khz = append(khz, observed)
		if len(khz) == MaxSteps && request > lowest {
			return khz, false, nil
		}
	}
	return khz, true, nil
}
