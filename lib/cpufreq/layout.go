// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cpufreq

import (
	"path/filepath"
	"strconv"
)

// DefaultSysRoot is where sysfs is mounted.
const DefaultSysRoot = "/sys"

// cpufreq attribute names under cpuN/cpufreq/.
const (
	MinFreqFile      = "scaling_min_freq"
	MaxFreqFile      = "scaling_max_freq"
	SetSpeedFile     = "scaling_setspeed"
	CurFreqFile      = "scaling_cur_freq"
	GovernorFile     = "scaling_governor"
	AffectedCPUsFile = "affected_cpus"
)

// Layout resolves per-core cpufreq paths under a sysfs root.
type Layout struct {
	SysRoot string
}

// DefaultLayout returns the layout for the live system.
func DefaultLayout() Layout { return Layout{SysRoot: DefaultSysRoot} }

// CPURoot returns the directory holding the cpuN entries.
func (l Layout) CPURoot() string {
	return filepath.Join(l.SysRoot, "devices", "system", "cpu")
}

// CoreDir returns the sysfs directory of one core.
func (l Layout) CoreDir(core int) string {
	return filepath.Join(l.CPURoot(), "cpu"+strconv.Itoa(core))
}

// FreqDir returns the cpufreq directory of one core. It does not exist
// for cores the kernel cannot scale.
func (l Layout) FreqDir(core int) string {
	return filepath.Join(l.CoreDir(core), "cpufreq")
}

// Attr returns the path of one cpufreq attribute of a core.
func (l Layout) Attr(core int, name string) string {
	return filepath.Join(l.FreqDir(core), name)
}
