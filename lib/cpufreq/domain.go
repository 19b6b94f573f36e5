// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cpufreq

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/freqd/lib/clock"
	"github.com/bureau-foundation/freqd/lib/ctlfile"
)

// UserspaceGovernor is the governor token that hands frequency choice
// to scaling_setspeed writes.
const UserspaceGovernor = "userspace"

// DefaultSettleDelay is the pause after every frequency write.
const DefaultSettleDelay = 10 * time.Millisecond

// Domain is the control handle for one clock domain.
type Domain struct {
	layout Layout
	master int
	clock  clock.Clock
	settle time.Duration
}

// NewDomain returns the handle for the domain whose master core is
// master. The settle delay starts at DefaultSettleDelay.
func NewDomain(layout Layout, master int, clk clock.Clock) *Domain {
	return &Domain{
		layout: layout,
		master: master,
		clock:  clk,
		settle: DefaultSettleDelay,
	}
}

// SetSettleDelay overrides the pause after frequency writes.
func (d *Domain) SetSettleDelay(delay time.Duration) { d.settle = delay }

// Master returns the core whose files this domain is driven through.
func (d *Domain) Master() int { return d.master }

// Bounds returns the hardware minimum and maximum frequency in kHz.
func (d *Domain) Bounds() (minKHz, maxKHz int64, err error) {
	minKHz, err = ctlfile.ReadInt(d.layout.Attr(d.master, MinFreqFile))
	if err != nil {
		return 0, 0, err
	}
	maxKHz, err = ctlfile.ReadInt(d.layout.Attr(d.master, MaxFreqFile))
	if err != nil {
		return 0, 0, err
	}
	return minKHz, maxKHz, nil
}

// Frequency reads back the speed the domain is running at, as reported
// by scaling_setspeed. After a write this is the hardware-snapped value,
// which may differ from what was requested.
func (d *Domain) Frequency() (int64, error) {
	return ctlfile.ReadInt(d.layout.Attr(d.master, SetSpeedFile))
}

// SetFrequency requests khz and waits out the settle delay.
func (d *Domain) SetFrequency(khz int64) error {
	if err := ctlfile.WriteLine(d.layout.Attr(d.master, SetSpeedFile), "%d", khz); err != nil {
		return err
	}
	d.clock.Sleep(d.settle)
	return nil
}

// Governor returns the active governor token.
func (d *Domain) Governor() (string, error) {
	line, err := ctlfile.ReadLine(d.layout.Attr(d.master, GovernorFile))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// SetGovernor writes a governor token.
func (d *Domain) SetGovernor(token string) error {
	return ctlfile.WriteLine(d.layout.Attr(d.master, GovernorFile), "%s", token)
}

// Snapshot is the hardware state captured before the daemon took over a
// domain, restored on graceful termination.
type Snapshot struct {
	KHz      int64
	Governor string
}

// TakeOver switches the domain to the userspace governor. With save
// set, the observed frequency and the previous governor are captured
// first and returned; otherwise the returned snapshot is nil.
//
// The setspeed file must be writable once the governor is switched;
// anything else means the kernel will not honor our writes.
func (d *Domain) TakeOver(save bool) (*Snapshot, error) {
	var snapshot *Snapshot
	if save {
		khz, err := ctlfile.ReadInt(d.layout.Attr(d.master, CurFreqFile))
		if err != nil {
			return nil, err
		}
		governor, err := d.Governor()
		if err != nil {
			return nil, err
		}
		snapshot = &Snapshot{KHz: khz, Governor: governor}
	}

	if err := d.SetGovernor(UserspaceGovernor); err != nil {
		return nil, err
	}

	setspeed := d.layout.Attr(d.master, SetSpeedFile)
	if err := unix.Access(setspeed, unix.W_OK); err != nil {
		return nil, fmt.Errorf("cannot write to speed control file %s: %w", setspeed, err)
	}
	return snapshot, nil
}

// Restore writes back a snapshot taken by TakeOver: frequency first,
// while the userspace governor still accepts it, then the governor.
func (d *Domain) Restore(snapshot *Snapshot) error {
	if snapshot == nil {
		return nil
	}
	if err := d.SetFrequency(snapshot.KHz); err != nil {
		return err
	}
	return d.SetGovernor(snapshot.Governor)
}
