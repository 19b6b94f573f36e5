// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/bureau-foundation/freqd/lib/clock"
	"github.com/bureau-foundation/freqd/lib/loadstat"
	"github.com/bureau-foundation/freqd/lib/policy"
	"github.com/bureau-foundation/freqd/lib/sensor"
	"github.com/bureau-foundation/freqd/lib/speedtable"
	"github.com/bureau-foundation/freqd/lib/testutil"
)

const receiveTimeout = 5 * time.Second

// channelStepper reports every frequency write on a channel.
type channelStepper struct {
	writes chan int64
}

func (c *channelStepper) SetFrequency(khz int64) error {
	c.writes <- khz
	return nil
}

// harness wires a Scheduler to a fake clock, a channel stepper, and a
// stat source the test feeds one sample at a time.
type harness struct {
	clock     *clock.FakeClock
	stepper   *channelStepper
	engine    *policy.Engine
	requests  chan struct{}
	stats     chan loadstat.Stat
	mailbox   chan Message
	restored  chan struct{}
	done      chan error
	scheduler *Scheduler
}

type harnessOptions struct {
	policy  policy.Options
	thermal *sensor.Thermal
	power   *sensor.Power
	restore bool
}

func newHarness(t *testing.T, options harnessOptions) *harness {
	t.Helper()
	table, err := speedtable.New(2400000, 2200000, 2000000, 1800000, 1600000, 1400000)
	if err != nil {
		t.Fatalf("speedtable.New: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		clock:    clock.Fake(time.Unix(1_700_000_000, 0)),
		stepper:  &channelStepper{writes: make(chan int64, 32)},
		requests: make(chan struct{}, 1),
		stats:    make(chan loadstat.Stat),
		mailbox:  make(chan Message),
		restored: make(chan struct{}, 1),
		done:     make(chan error, 1),
	}
	h.engine = policy.NewEngine(policy.EngineConfig{
		Table:   table,
		Stepper: h.stepper,
		Members: 1,
		Options: options.policy,
		Logger:  logger,
	})
	config := Config{
		Engine:     h.engine,
		Accountant: loadstat.NewAccountant([]int{0}, loadstat.DefaultOptions()),
		Stat: func() (loadstat.Stat, error) {
			h.requests <- struct{}{}
			return <-h.stats, nil
		},
		Thermal:         options.thermal,
		Power:           options.power,
		LoadInterval:    2 * time.Second,
		ThermalInterval: time.Second,
		PowerInterval:   5 * time.Second,
		Clock:           h.clock,
		Logger:          logger,
	}
	if options.restore {
		config.Restore = func() error {
			h.restored <- struct{}{}
			return nil
		}
	}
	h.scheduler, err = New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func (h *harness) start(t *testing.T) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { h.done <- h.scheduler.Run(ctx, h.mailbox) }()
	t.Cleanup(cancel)
	return cancel
}

// feed waits for the loop to ask for counters and hands it stat.
func (h *harness) feed(t *testing.T, stat loadstat.Stat) {
	t.Helper()
	testutil.RequireReceive(t, h.requests, receiveTimeout, "stat request")
	h.stats <- stat
}

func (h *harness) expectWrites(t *testing.T, want ...int64) {
	t.Helper()
	for _, khz := range want {
		got := testutil.RequireReceive(t, h.stepper.writes, receiveTimeout, "frequency write")
		if got != khz {
			t.Fatalf("write = %d, want %d", got, khz)
		}
	}
}

func counters(busy, idle uint64) loadstat.Stat {
	return loadstat.Stat{0: {User: busy, Idle: idle}}
}

func TestTicks(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int64
	}{
		{d: 0, want: 1},
		{d: 20 * time.Millisecond, want: 1},
		{d: 100 * time.Millisecond, want: 1},
		{d: 250 * time.Millisecond, want: 3},
		{d: 2 * time.Second, want: 20},
	}
	for _, test := range tests {
		if got := Ticks(test.d); got != test.want {
			t.Errorf("Ticks(%v) = %d, want %d", test.d, got, test.want)
		}
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New accepted an empty Config")
	}
}

func TestLoadDrivesSteps(t *testing.T) {
	h := newHarness(t, harnessOptions{policy: policy.DefaultOptions()})
	h.start(t)

	// Tick 0 only establishes the baseline.
	h.feed(t, counters(0, 0))
	h.clock.WaitForTimers(1)

	// Fully busy: ramp from the slowest step straight to the fastest.
	h.clock.Advance(2 * time.Second)
	h.feed(t, counters(1000, 0))
	h.expectWrites(t, 1600000, 1800000, 2000000, 2200000, 2400000)
	h.clock.WaitForTimers(1)

	// Mostly idle: one step slower.
	h.clock.Advance(2 * time.Second)
	h.feed(t, counters(1100, 900))
	h.expectWrites(t, 2200000)
	h.clock.WaitForTimers(1)

	if state := h.engine.State(); state.Index != 1 {
		t.Errorf("index = %d, want 1", state.Index)
	}
}

func TestMessageDuringWaitKeepsDeadline(t *testing.T) {
	h := newHarness(t, harnessOptions{policy: policy.DefaultOptions()})
	h.start(t)

	h.feed(t, counters(0, 0))
	h.clock.WaitForTimers(1)

	h.clock.Advance(time.Second)
	h.mailbox <- Message{Kind: ForceMax, Signal: syscall.SIGUSR1}
	h.expectWrites(t, 1600000, 1800000, 2000000, 2200000, 2400000)

	if pending := h.clock.PendingCount(); pending != 1 {
		t.Fatalf("pending timers = %d, want the first deadline only", pending)
	}

	// The first two-second deadline fires one second later. ForceMax
	// skips load sampling, so the evaluation produces no stat request
	// and no write; the next deadline is registered.
	h.clock.Advance(time.Second)
	h.clock.WaitForTimers(1)
	testutil.RequireNotReceived(t, h.requests, 50*time.Millisecond, "stat request in forced mode")
	if state := h.engine.State(); state != (policy.State{Index: 0, Mode: policy.ForceMax}) {
		t.Errorf("state = %+v, want index 0 force-max", state)
	}
}

func TestResumeUsesFreshBaseline(t *testing.T) {
	h := newHarness(t, harnessOptions{policy: policy.DefaultOptions()})
	h.start(t)

	h.feed(t, counters(0, 0))
	h.clock.WaitForTimers(1)

	h.mailbox <- Message{Kind: ForceMax}
	h.expectWrites(t, 1600000, 1800000, 2000000, 2200000, 2400000)

	// Resume re-baselines on these counters and changes nothing.
	h.mailbox <- Message{Kind: Resume}
	h.feed(t, counters(1000, 0))

	// Against the stale baseline this window would read 8% idle and
	// hold the fastest step; against the fresh one it reads 90%.
	h.clock.Advance(2 * time.Second)
	h.feed(t, counters(1010, 90))
	h.expectWrites(t, 2200000)
	h.clock.WaitForTimers(1)

	if state := h.engine.State(); state != (policy.State{Index: 1, Mode: policy.Dynamic}) {
		t.Errorf("state = %+v, want index 1 dynamic", state)
	}
}

func TestForceMinThenTerminateRestores(t *testing.T) {
	h := newHarness(t, harnessOptions{policy: policy.DefaultOptions(), restore: true})
	h.start(t)

	h.feed(t, counters(0, 0))
	h.clock.WaitForTimers(1)

	h.mailbox <- Message{Kind: ForceMax}
	h.expectWrites(t, 1600000, 1800000, 2000000, 2200000, 2400000)
	h.mailbox <- Message{Kind: ForceMin}
	h.expectWrites(t, 2200000, 2000000, 1800000, 1600000, 1400000)

	h.mailbox <- Message{Kind: Terminate, Signal: syscall.SIGTERM}
	testutil.RequireReceive(t, h.restored, receiveTimeout, "restore")
	if err := testutil.RequireReceive(t, h.done, receiveTimeout, "loop exit"); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestTerminateWithoutSavedState(t *testing.T) {
	h := newHarness(t, harnessOptions{policy: policy.DefaultOptions()})
	h.start(t)

	h.feed(t, counters(0, 0))
	h.mailbox <- Message{Kind: Terminate, Signal: syscall.SIGINT}
	if err := testutil.RequireReceive(t, h.done, receiveTimeout, "loop exit"); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestCancelDoesNotRestore(t *testing.T) {
	h := newHarness(t, harnessOptions{policy: policy.DefaultOptions(), restore: true})
	cancel := h.start(t)

	h.feed(t, counters(0, 0))
	h.clock.WaitForTimers(1)
	cancel()

	err := testutil.RequireReceive(t, h.done, receiveTimeout, "loop exit")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	select {
	case <-h.restored:
		t.Error("state restored on cancellation")
	default:
	}
}

func TestBatteryPinsSlowestDespiteLoad(t *testing.T) {
	directory := t.TempDir()
	powerPath := filepath.Join(directory, "online")
	testutil.WriteFile(t, powerPath, "1\n")

	h := newHarness(t, harnessOptions{
		policy: policy.DefaultOptions(),
		power:  sensor.NewPower(powerPath),
	})
	h.start(t)

	h.feed(t, counters(0, 0))
	h.clock.WaitForTimers(1)
	h.clock.Advance(2 * time.Second)
	h.feed(t, counters(1000, 0))
	h.expectWrites(t, 1600000, 1800000, 2000000, 2200000, 2400000)

	// Unplug. The load check at tick 40 still sees the old reading; the
	// power check at tick 50 picks up the change.
	testutil.WriteFile(t, powerPath, "0\n")
	h.clock.WaitForTimers(1)
	h.clock.Advance(2 * time.Second)
	h.feed(t, counters(2000, 0))
	h.clock.WaitForTimers(1)
	h.clock.Advance(time.Second)
	h.expectWrites(t, 2200000, 2000000, 1800000, 1600000, 1400000)
	h.clock.WaitForTimers(1)

	if state := h.engine.State(); state.Index != 5 {
		t.Errorf("index = %d, want last step 5", state.Index)
	}
}

func TestHotPinsSlowest(t *testing.T) {
	directory := t.TempDir()
	thermalPath := filepath.Join(directory, "temp")
	testutil.WriteFile(t, thermalPath, "85000\n")

	options := policy.DefaultOptions()
	options.ThermalLimit = 80000
	h := newHarness(t, harnessOptions{
		policy:  options,
		thermal: sensor.NewThermal(thermalPath),
	})
	h.start(t)

	h.feed(t, counters(0, 0))
	h.mailbox <- Message{Kind: ForceMax}
	h.expectWrites(t, 1600000, 1800000, 2000000, 2200000, 2400000)

	// Resume evaluates with the reading taken at tick 0.
	h.mailbox <- Message{Kind: Resume}
	h.feed(t, counters(0, 0))
	h.expectWrites(t, 2200000, 2000000, 1800000, 1600000, 1400000)
}

func TestStatFailureIsFatal(t *testing.T) {
	table, err := speedtable.New(2000000, 1000000)
	if err != nil {
		t.Fatalf("speedtable.New: %v", err)
	}
	errStat := errors.New("stat unavailable")
	scheduler, err := New(Config{
		Engine: policy.NewEngine(policy.EngineConfig{
			Table:   table,
			Stepper: &channelStepper{writes: make(chan int64, 4)},
			Members: 1,
			Options: policy.DefaultOptions(),
		}),
		Accountant: loadstat.NewAccountant([]int{0}, loadstat.DefaultOptions()),
		Stat:       func() (loadstat.Stat, error) { return nil, errStat },
		Clock:      clock.Fake(time.Unix(0, 0)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := scheduler.Run(context.Background(), nil); !errors.Is(err, errStat) {
		t.Fatalf("Run error = %v, want errStat", err)
	}
}

func TestKindString(t *testing.T) {
	if ForceMax.String() != "force-max" || Terminate.String() != "terminate" || Kind(0).String() != "Kind(0)" {
		t.Errorf("unexpected Kind strings: %v %v %v", ForceMax, Terminate, Kind(0))
	}
}
