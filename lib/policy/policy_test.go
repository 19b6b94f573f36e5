// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"reflect"
	"testing"

	"github.com/bureau-foundation/freqd/lib/loadstat"
)

func TestDesired(t *testing.T) {
	thresholds := DefaultThresholds()
	tests := []struct {
		name    string
		idle    uint64
		current int
		want    int
	}{
		{name: "fast up from slowest", idle: 5, current: 5, want: 0},
		{name: "fast up at threshold", idle: 10, current: 3, want: 0},
		{name: "busy steps faster", idle: 20, current: 3, want: 2},
		{name: "busy at fastest holds", idle: 20, current: 0, want: 0},
		{name: "idle steps slower", idle: 90, current: 2, want: 3},
		{name: "idle at slowest holds", idle: 90, current: 5, want: 5},
		{name: "exactly at idle threshold holds", idle: 25, current: 2, want: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := thresholds.Desired(test.idle, test.current, 5); got != test.want {
				t.Errorf("Desired(%d, %d, 5) = %d, want %d", test.idle, test.current, got, test.want)
			}
		})
	}
}

func TestTargetIsFastestDesired(t *testing.T) {
	thresholds := DefaultThresholds()
	load := []loadstat.Idle{
		{Core: 0, Percent: 95}, // wants 3
		{Core: 1, Percent: 15}, // wants 1
		{Core: 2, Percent: 50}, // wants 3
	}
	if got := thresholds.Target(load, 3, 2, 5); got != 1 {
		t.Errorf("Target() = %d, want 1", got)
	}

	load = append(load, loadstat.Idle{Core: 3, Percent: 2})
	if got := thresholds.Target(load, 4, 2, 5); got != 0 {
		t.Errorf("Target() with a saturated core = %d, want 0", got)
	}
}

func TestTargetMembersWithoutReadingHoldCurrent(t *testing.T) {
	thresholds := DefaultThresholds()
	load := []loadstat.Idle{{Core: 0, Percent: 95}}

	// Two members, one reading: the silent member pins the current index.
	if got := thresholds.Target(load, 2, 2, 5); got != 2 {
		t.Errorf("Target() = %d, want 2", got)
	}
	if got := thresholds.Target(load, 1, 2, 5); got != 3 {
		t.Errorf("Target() with full readings = %d, want 3", got)
	}
	if got := thresholds.Target(nil, 2, 4, 5); got != 4 {
		t.Errorf("Target() with no readings = %d, want 4", got)
	}
}

func TestEffective(t *testing.T) {
	tests := []struct {
		name    string
		options Options
		mode    Mode
		inputs  Inputs
		want    Mode
	}{
		{
			name:    "forced max ignores battery",
			options: DefaultOptions(),
			mode:    ForceMax,
			inputs:  Inputs{OnAC: false},
			want:    ForceMax,
		},
		{
			name:    "forced min ignores ac",
			options: Options{MaxOnAC: true},
			mode:    ForceMin,
			inputs:  Inputs{OnAC: true},
			want:    ForceMin,
		},
		{
			name:    "battery pins min",
			options: DefaultOptions(),
			inputs:  Inputs{OnAC: false, LoadDue: true},
			want:    ForceMin,
		},
		{
			name:    "battery ignored when disabled",
			options: Options{Thresholds: DefaultThresholds()},
			inputs:  Inputs{OnAC: false},
			want:    Dynamic,
		},
		{
			name:    "ac pins max",
			options: Options{MaxOnAC: true, MinOnBattery: true},
			inputs:  Inputs{OnAC: true},
			want:    ForceMax,
		},
		{
			name:    "ac outranks temperature",
			options: Options{MaxOnAC: true, ThermalLimit: 70},
			inputs:  Inputs{OnAC: true, HasTemperature: true, Temperature: 90},
			want:    ForceMax,
		},
		{
			name:    "hot pins min",
			options: Options{ThermalLimit: 70},
			inputs:  Inputs{OnAC: true, HasTemperature: true, Temperature: 71},
			want:    ForceMin,
		},
		{
			name:    "at limit is not hot",
			options: Options{ThermalLimit: 70},
			inputs:  Inputs{OnAC: true, HasTemperature: true, Temperature: 70},
			want:    Dynamic,
		},
		{
			name:    "temperature ignored without a file",
			options: Options{ThermalLimit: 70},
			inputs:  Inputs{OnAC: true, Temperature: 95},
			want:    Dynamic,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.options.Effective(test.mode, test.inputs); got != test.want {
				t.Errorf("Effective() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestRamp(t *testing.T) {
	tests := []struct {
		from, to int
		want     []int
	}{
		{from: 2, to: 2, want: nil},
		{from: 0, to: 3, want: []int{1, 2, 3}},
		{from: 4, to: 1, want: []int{3, 2, 1}},
		{from: 5, to: 4, want: []int{4}},
	}
	for _, test := range tests {
		if got := Ramp(test.from, test.to); !reflect.DeepEqual(got, test.want) {
			t.Errorf("Ramp(%d, %d) = %v, want %v", test.from, test.to, got, test.want)
		}
	}
}

func TestModeString(t *testing.T) {
	for mode, want := range map[Mode]string{
		Dynamic:  "dynamic",
		ForceMax: "force-max",
		ForceMin: "force-min",
		Mode(9):  "Mode(9)",
	} {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(mode), got, want)
		}
	}
}
