// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"

	"github.com/bureau-foundation/freqd/lib/loadstat"
)

// Mode is the externally selected operating mode.
type Mode int

const (
	// Dynamic follows load, temperature, and power source.
	Dynamic Mode = iota
	// ForceMax pins the fastest step.
	ForceMax
	// ForceMin pins the slowest step.
	ForceMin
)

func (m Mode) String() string {
	switch m {
	case Dynamic:
		return "dynamic"
	case ForceMax:
		return "force-max"
	case ForceMin:
		return "force-min"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Thresholds are idle percentages.
type Thresholds struct {
	// FastUp: a core this idle or busier jumps straight to step 0.
	FastUp uint64
	// Idle: below it a core wants to go faster, above it slower.
	Idle uint64
}

// DefaultThresholds returns fast-up 10 and idle 25.
func DefaultThresholds() Thresholds {
	return Thresholds{FastUp: 10, Idle: 25}
}

// Options are the policy knobs.
type Options struct {
	Thresholds Thresholds

	// MaxOnAC pins the fastest step while external power is connected.
	MaxOnAC bool

	// MinOnBattery pins the slowest step while running on battery.
	MinOnBattery bool

	// ThermalLimit is compared against readings from the temperature
	// file, in that file's unit. Readings strictly above it pin the
	// slowest step.
	ThermalLimit int64
}

// DefaultOptions returns the default thresholds with MinOnBattery set.
func DefaultOptions() Options {
	return Options{
		Thresholds:   DefaultThresholds(),
		MinOnBattery: true,
	}
}

// Inputs are the readings available to one evaluation.
type Inputs struct {
	// LoadDue is set when a load check fell due; Load is only
	// consulted then.
	LoadDue bool
	Load    []loadstat.Idle

	// OnAC is the last known power-source state. Callers without a
	// power file leave it true.
	OnAC bool

	// HasTemperature is set when a temperature file is configured;
	// Temperature holds its latest reading.
	HasTemperature bool
	Temperature    int64
}

// Effective returns the mode that applies to this evaluation: mode
// itself when forced, otherwise the power and thermal overrides in
// priority order, falling back to Dynamic (load decides).
func (o Options) Effective(mode Mode, inputs Inputs) Mode {
	if mode != Dynamic {
		return mode
	}
	switch {
	case o.MaxOnAC && inputs.OnAC:
		return ForceMax
	case o.MinOnBattery && !inputs.OnAC:
		return ForceMin
	case inputs.HasTemperature && inputs.Temperature > o.ThermalLimit:
		return ForceMin
	}
	return Dynamic
}

// Desired returns the index one core wants given its idle percentage,
// the current index, and the slowest index.
func (t Thresholds) Desired(idle uint64, current, last int) int {
	switch {
	case idle <= t.FastUp:
		return 0
	case idle < t.Idle && current > 0:
		return current - 1
	case idle > t.Idle && current < last:
		return current + 1
	}
	return current
}

// Target returns the fastest index desired by any of a domain's
// members. load holds the members with a valid reading; members
// beyond len(load) hold the current index.
func (t Thresholds) Target(load []loadstat.Idle, members, current, last int) int {
	target := -1
	if len(load) < members {
		target = current
	}
	for _, sample := range load {
		desired := t.Desired(sample.Percent, current, last)
		if target < 0 || desired < target {
			target = desired
		}
	}
	if target < 0 {
		return current
	}
	return target
}

// Ramp returns the indices visited moving from one index to another in
// unit steps, excluding from and including to. It is empty when the
// two are equal.
func Ramp(from, to int) []int {
	if from == to {
		return nil
	}
	delta := 1
	if to < from {
		delta = -1
	}
	steps := make([]int, 0, max(from-to, to-from))
	for index := from; index != to; {
		index += delta
		steps = append(steps, index)
	}
	return steps
}
