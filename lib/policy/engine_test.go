// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/bureau-foundation/freqd/lib/loadstat"
	"github.com/bureau-foundation/freqd/lib/speedtable"
)

type recordingStepper struct {
	writes []int64
	failAt int64
}

var errStepFailed = errors.New("write failed")

func (r *recordingStepper) SetFrequency(khz int64) error {
	if r.failAt != 0 && khz == r.failAt {
		return errStepFailed
	}
	r.writes = append(r.writes, khz)
	return nil
}

// Six steps: index 0 = 2400000 kHz down to index 5 = 1400000 kHz.
func newTestEngine(t *testing.T, options Options, members int) (*Engine, *recordingStepper) {
	t.Helper()
	table, err := speedtable.New(2400000, 2200000, 2000000, 1800000, 1600000, 1400000)
	if err != nil {
		t.Fatalf("speedtable.New: %v", err)
	}
	stepper := &recordingStepper{}
	engine := NewEngine(EngineConfig{
		Table:   table,
		Stepper: stepper,
		Members: members,
		Options: options,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return engine, stepper
}

// moveTo positions the engine at index and clears the recorded writes.
func moveTo(t *testing.T, engine *Engine, stepper *recordingStepper, index int) {
	t.Helper()
	engine.state.Index = index
	stepper.writes = nil
}

func TestNewEngineStartsAtSlowest(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultOptions(), 1)
	if got := engine.State(); got != (State{Index: 5, Mode: Dynamic}) {
		t.Errorf("State() = %+v, want index 5 dynamic", got)
	}
}

func TestEvaluateFastUpFromAnyIndex(t *testing.T) {
	for start := 0; start <= 5; start++ {
		engine, stepper := newTestEngine(t, DefaultOptions(), 1)
		moveTo(t, engine, stepper, start)

		err := engine.Evaluate(Inputs{OnAC: true, LoadDue: true, Load: []loadstat.Idle{{Core: 0, Percent: 5}}})
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if engine.State().Index != 0 {
			t.Errorf("start %d: index = %d, want 0", start, engine.State().Index)
		}
		if len(stepper.writes) != start {
			t.Errorf("start %d: %d writes, want one per step", start, len(stepper.writes))
		}
	}
}

func TestEvaluateIdleStepsSlower(t *testing.T) {
	engine, stepper := newTestEngine(t, DefaultOptions(), 1)
	moveTo(t, engine, stepper, 2)

	err := engine.Evaluate(Inputs{OnAC: true, LoadDue: true, Load: []loadstat.Idle{{Core: 0, Percent: 90}}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if engine.State().Index != 3 {
		t.Errorf("index = %d, want 3", engine.State().Index)
	}
	if want := []int64{1800000}; !reflect.DeepEqual(stepper.writes, want) {
		t.Errorf("writes = %v, want %v", stepper.writes, want)
	}
}

func TestEvaluateRampsOneStepAtATime(t *testing.T) {
	engine, stepper := newTestEngine(t, DefaultOptions(), 1)
	moveTo(t, engine, stepper, 5)

	if err := engine.Evaluate(Inputs{OnAC: true, LoadDue: true, Load: []loadstat.Idle{{Core: 0, Percent: 0}}}); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := []int64{1600000, 1800000, 2000000, 2200000, 2400000}
	if !reflect.DeepEqual(stepper.writes, want) {
		t.Errorf("writes = %v, want %v", stepper.writes, want)
	}
}

func TestEvaluateBatteryPinsSlowest(t *testing.T) {
	engine, stepper := newTestEngine(t, DefaultOptions(), 1)
	moveTo(t, engine, stepper, 1)

	// Saturated load would otherwise demand index 0.
	err := engine.Evaluate(Inputs{OnAC: false, LoadDue: true, Load: []loadstat.Idle{{Core: 0, Percent: 0}}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if engine.State().Index != 5 {
		t.Errorf("index = %d, want last step 5", engine.State().Index)
	}
}

func TestEvaluateForcedModeIsNeverDisplaced(t *testing.T) {
	options := Options{Thresholds: DefaultThresholds(), MinOnBattery: true, ThermalLimit: 60}
	engine, stepper := newTestEngine(t, options, 1)
	engine.SetMode(ForceMax)

	readings := []Inputs{
		{OnAC: false},
		{OnAC: true, HasTemperature: true, Temperature: 99},
		{OnAC: true, LoadDue: true, Load: []loadstat.Idle{{Core: 0, Percent: 100}}},
	}
	for _, inputs := range readings {
		if err := engine.Evaluate(inputs); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if engine.State().Index != 0 {
			t.Fatalf("index = %d after %+v, want 0", engine.State().Index, inputs)
		}
	}
	if len(stepper.writes) != 5 {
		t.Errorf("%d writes, want only the initial ramp of 5", len(stepper.writes))
	}

	engine.SetMode(Dynamic)
	if err := engine.Evaluate(Inputs{OnAC: false}); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if engine.State().Index != 5 {
		t.Errorf("index after resume on battery = %d, want 5", engine.State().Index)
	}
}

func TestEvaluateWithoutLoadDueHolds(t *testing.T) {
	engine, stepper := newTestEngine(t, DefaultOptions(), 1)
	moveTo(t, engine, stepper, 3)

	err := engine.Evaluate(Inputs{OnAC: true, Load: []loadstat.Idle{{Core: 0, Percent: 0}}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if engine.State().Index != 3 || len(stepper.writes) != 0 {
		t.Errorf("index = %d writes = %v, want unchanged", engine.State().Index, stepper.writes)
	}
}

func TestEvaluateDomainFollowsBusiestMember(t *testing.T) {
	engine, stepper := newTestEngine(t, DefaultOptions(), 2)
	moveTo(t, engine, stepper, 3)

	err := engine.Evaluate(Inputs{OnAC: true, LoadDue: true, Load: []loadstat.Idle{
		{Core: 0, Percent: 99},
		{Core: 1, Percent: 20},
	}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if engine.State().Index != 2 {
		t.Errorf("index = %d, want 2", engine.State().Index)
	}
}

func TestEvaluateWriteFailureKeepsLastAppliedStep(t *testing.T) {
	engine, stepper := newTestEngine(t, DefaultOptions(), 1)
	moveTo(t, engine, stepper, 5)
	stepper.failAt = 1800000

	err := engine.Evaluate(Inputs{OnAC: true, LoadDue: true, Load: []loadstat.Idle{{Core: 0, Percent: 0}}})
	if !errors.Is(err, errStepFailed) {
		t.Fatalf("error = %v, want errStepFailed", err)
	}
	if engine.State().Index != 4 {
		t.Errorf("index = %d, want 4 (last applied)", engine.State().Index)
	}
}
