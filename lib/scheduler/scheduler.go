// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bureau-foundation/freqd/lib/clock"
	"github.com/bureau-foundation/freqd/lib/loadstat"
	"github.com/bureau-foundation/freqd/lib/policy"
	"github.com/bureau-foundation/freqd/lib/sensor"
)

// Tick is the unit the loop counts in.
const Tick = 100 * time.Millisecond

// Ticks converts d to whole ticks, rounding to nearest, never below one.
func Ticks(d time.Duration) int64 {
	return max(1, int64((d+Tick/2)/Tick))
}

// Kind identifies a control message.
type Kind int

const (
	// ForceMax pins the fastest step and evaluates at once.
	ForceMax Kind = iota + 1
	// ForceMin pins the slowest step and evaluates at once.
	ForceMin
	// Resume returns to dynamic scaling with fresh load baselines.
	Resume
	// Terminate restores saved hardware state and ends the loop.
	Terminate
)

func (k Kind) String() string {
	switch k {
	case ForceMax:
		return "force-max"
	case ForceMin:
		return "force-min"
	case Resume:
		return "resume"
	case Terminate:
		return "terminate"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Message is one control request. Signal records the OS signal that
// produced it, if any, for logging.
type Message struct {
	Kind   Kind
	Signal os.Signal
}

// Config configures New.
type Config struct {
	Engine     *policy.Engine
	Accountant *loadstat.Accountant

	// Stat returns the current per-core counters.
	Stat func() (loadstat.Stat, error)

	// Thermal and Power are optional.
	Thermal *sensor.Thermal
	Power   *sensor.Power

	LoadInterval    time.Duration
	ThermalInterval time.Duration
	PowerInterval   time.Duration

	// Restore is called on Terminate. Nil when no state was saved.
	Restore func() error

	Clock  clock.Clock
	Logger *slog.Logger
}

// Scheduler is the control loop of one domain. All of its state is
// owned by the goroutine calling Run.
type Scheduler struct {
	engine     *policy.Engine
	accountant *loadstat.Accountant
	stat       func() (loadstat.Stat, error)
	thermal    *sensor.Thermal
	power      *sensor.Power
	restore    func() error
	clock      clock.Clock
	logger     *slog.Logger

	loadInterval    int64
	thermalInterval int64
	powerInterval   int64

	loadDue    bool
	thermalDue bool
	powerDue   bool

	onAC        bool
	temperature int64
}

// New validates config and returns a Scheduler.
func New(config Config) (*Scheduler, error) {
	if config.Engine == nil {
		return nil, errors.New("scheduler: Engine is required")
	}
	if config.Accountant == nil {
		return nil, errors.New("scheduler: Accountant is required")
	}
	if config.Stat == nil {
		return nil, errors.New("scheduler: Stat is required")
	}
	if config.Clock == nil {
		return nil, errors.New("scheduler: Clock is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:          config.Engine,
		accountant:      config.Accountant,
		stat:            config.Stat,
		thermal:         config.Thermal,
		power:           config.Power,
		restore:         config.Restore,
		clock:           config.Clock,
		logger:          logger,
		loadInterval:    Ticks(config.LoadInterval),
		thermalInterval: Ticks(config.ThermalInterval),
		powerInterval:   Ticks(config.PowerInterval),
		onAC:            true,
	}, nil
}

// Run drives the loop until a Terminate message has been handled
// (returning nil), ctx is cancelled (returning ctx.Err() without
// restoring), or a control file fails (returning the error without
// restoring). A closed mailbox is treated as one that never delivers.
func (s *Scheduler) Run(ctx context.Context, mailbox <-chan Message) error {
	var counter, loadNext, thermalNext, powerNext int64

	for {
		if counter == loadNext {
			loadNext += s.loadInterval
			s.loadDue = true
		}
		next := loadNext
		if s.thermal != nil {
			if counter == thermalNext {
				thermalNext += s.thermalInterval
				s.thermalDue = true
			}
			next = min(next, thermalNext)
		}
		if s.power != nil {
			if counter == powerNext {
				powerNext += s.powerInterval
				s.powerDue = true
			}
			next = min(next, powerNext)
		}

		if s.loadDue || s.thermalDue || s.powerDue {
			if err := s.evaluate(); err != nil {
				return err
			}
		}

		deadline := s.clock.After(time.Duration(next-counter) * Tick)
	wait:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-deadline:
				break wait
			case message, ok := <-mailbox:
				if !ok {
					mailbox = nil
					continue
				}
				done, err := s.handle(message)
				if err != nil || done {
					return err
				}
			}
		}
		counter = next
	}
}

func (s *Scheduler) handle(message Message) (done bool, err error) {
	s.logger.Info("control message", "kind", message.Kind, "signal", message.Signal)
	switch message.Kind {
	case ForceMax:
		s.engine.SetMode(policy.ForceMax)
	case ForceMin:
		s.engine.SetMode(policy.ForceMin)
	case Resume:
		s.accountant.Reset()
		s.engine.SetMode(policy.Dynamic)
		s.loadDue = true
	case Terminate:
		if s.restore != nil {
			if err := s.restore(); err != nil {
				return true, fmt.Errorf("restoring saved state: %w", err)
			}
		}
		return true, nil
	default:
		s.logger.Warn("ignoring unknown control message", "kind", message.Kind)
		return false, nil
	}
	return false, s.evaluate()
}

// evaluate reads whatever is due, applies the policy, and clears the
// due flags. Sensors are only consulted in Dynamic mode; their last
// readings carry over between checks.
func (s *Scheduler) evaluate() error {
	inputs := policy.Inputs{
		HasTemperature: s.thermal != nil,
	}

	if s.engine.Mode() == policy.Dynamic {
		if s.powerDue && s.power != nil {
			connected, err := s.power.Connected()
			if err != nil {
				return err
			}
			if connected != s.onAC {
				s.logger.Info("power source changed", "connected", connected)
			}
			s.onAC = connected
		}
		if s.thermalDue && s.thermal != nil {
			temperature, err := s.thermal.Read()
			if err != nil {
				return err
			}
			s.logger.Debug("temperature", "value", temperature)
			s.temperature = temperature
		}
		if s.loadDue {
			stat, err := s.stat()
			if err != nil {
				return err
			}
			inputs.LoadDue = true
			inputs.Load = s.accountant.Sample(stat)
		}
	}

	inputs.OnAC = s.onAC
	inputs.Temperature = s.temperature
	if err := s.engine.Evaluate(inputs); err != nil {
		return err
	}
	s.loadDue, s.thermalDue, s.powerDue = false, false, false
	return nil
}
