// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sensor reads the optional temperature and power-source files
// that can override load-driven frequency choice.
//
// Both readers accept the legacy ACPI procfs formats and their sysfs
// replacements:
//
//	/proc/acpi/thermal_zone/THM0/temperature    "temperature:             45 C"
//	/sys/class/thermal/thermal_zone0/temp       "45000"
//	/proc/acpi/ac_adapter/AC/state              "state:                   off-line"
//	/sys/class/power_supply/AC/online           "0"
//
// The thermal reading is compared against a threshold in the file's
// own unit; no conversion happens here.
package sensor

import (
	"strconv"
	"strings"

	"github.com/bureau-foundation/freqd/lib/ctlfile"
)

// Thermal reads a temperature file.
type Thermal struct {
	path string
}

// NewThermal returns a reader for path.
func NewThermal(path string) *Thermal {
	return &Thermal{path: path}
}

// Path returns the file being read.
func (t *Thermal) Path() string { return t.path }

// Read returns the first run of decimal digits on the first line.
func (t *Thermal) Read() (int64, error) {
	line, err := ctlfile.ReadLine(t.path)
	if err != nil {
		return 0, err
	}
	return firstInteger(t.path, line)
}

func firstInteger(path, line string) (int64, error) {
	start := strings.IndexAny(line, "0123456789")
	if start < 0 {
		return 0, &ctlfile.ParseError{Path: path, Token: line}
	}
	end := start
	for end < len(line) && line[end] >= '0' && line[end] <= '9' {
		end++
	}
	token := line[start:end]
	value, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, &ctlfile.RangeError{Path: path, Token: token}
	}
	return value, nil
}

// Power reads a power-source state file.
type Power struct {
	path string
}

// NewPower returns a reader for path.
func NewPower(path string) *Power {
	return &Power{path: path}
}

// Path returns the file being read.
func (p *Power) Path() string { return p.path }

// Connected reports whether external power is present. The source is
// disconnected when the first line mentions "off-line" or is exactly
// "0"; anything else counts as connected.
func (p *Power) Connected() (bool, error) {
	line, err := ctlfile.ReadLine(p.path)
	if err != nil {
		return false, err
	}
	return connected(line), nil
}

func connected(line string) bool {
	if strings.Contains(line, "off-line") {
		return false
	}
	return strings.TrimSpace(line) != "0"
}
