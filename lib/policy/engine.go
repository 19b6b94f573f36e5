// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/freqd/lib/speedtable"
)

// Stepper applies one frequency and waits for it to settle.
// cpufreq.Domain implements it.
type Stepper interface {
	SetFrequency(khz int64) error
}

// State is the engine's position.
type State struct {
	Index int
	Mode  Mode
}

// EngineConfig configures NewEngine.
type EngineConfig struct {
	Table   *speedtable.Table
	Stepper Stepper

	// Members is the number of cores in the domain.
	Members int

	Options Options
	Logger  *slog.Logger
}

// Engine owns the speed index of one clock domain. It is not safe for
// concurrent use.
type Engine struct {
	table   *speedtable.Table
	stepper Stepper
	members int
	options Options
	logger  *slog.Logger
	state   State
}

// NewEngine returns an engine in Dynamic mode positioned at the
// slowest step, where discovery leaves the hardware.
func NewEngine(config EngineConfig) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		table:   config.Table,
		stepper: config.Stepper,
		members: config.Members,
		options: config.Options,
		logger:  logger,
		state:   State{Index: config.Table.LastStep(), Mode: Dynamic},
	}
}

// State returns the current index and mode.
func (e *Engine) State() State { return e.state }

// Mode returns the selected mode.
func (e *Engine) Mode() Mode { return e.state.Mode }

// SetMode selects mode. It takes effect at the next Evaluate.
func (e *Engine) SetMode(mode Mode) {
	if mode != e.state.Mode {
		e.logger.Info("policy mode changed", "from", e.state.Mode, "to", mode)
	}
	e.state.Mode = mode
}

// Evaluate works out the target index for inputs and ramps the domain
// to it. On a write failure the state reflects the last step that was
// applied.
func (e *Engine) Evaluate(inputs Inputs) error {
	last := e.table.LastStep()
	current := e.state.Index

	target := current
	switch effective := e.options.Effective(e.state.Mode, inputs); effective {
	case ForceMax:
		target = 0
	case ForceMin:
		target = last
	case Dynamic:
		if !inputs.LoadDue {
			break
		}
		for _, sample := range inputs.Load {
			e.logger.Debug("core idle", "core", sample.Core, "idle_percent", sample.Percent)
		}
		target = e.options.Thresholds.Target(inputs.Load, e.members, current, last)
	}

	if target == current {
		return nil
	}
	e.logger.Debug("changing speed",
		"from_index", current, "from_khz", e.table.KHz(current),
		"to_index", target, "to_khz", e.table.KHz(target),
	)
	return e.rampTo(target)
}

func (e *Engine) rampTo(target int) error {
	for _, index := range Ramp(e.state.Index, target) {
		khz := e.table.KHz(index)
		if err := e.stepper.SetFrequency(khz); err != nil {
			return fmt.Errorf("stepping to index %d (%d kHz): %w", index, khz, err)
		}
		e.state.Index = index
	}
	return nil
}
