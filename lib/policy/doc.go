// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy turns load, temperature, and power-source readings
// into a speed index for one clock domain, and moves the domain there
// one step at a time.
//
// The engine holds two pieces of state: the index the domain is
// currently running at and the [Mode] chosen by external overrides.
// Forced modes pin the domain to the fastest or slowest step and are
// never displaced by sensor readings; only a return to [Dynamic]
// releases them.
//
// In [Dynamic] mode the effective choice is made in priority order:
//
//  1. power connected and MaxOnAC set: fastest step
//  2. power disconnected and MinOnBattery set: slowest step
//  3. temperature above ThermalLimit: slowest step
//  4. load, if a load check is due
//
// Load is judged per core. A core at or below the fast-up threshold
// wants the fastest step outright; a core below the idle threshold
// wants one step faster, and a core above it one step slower. The
// domain goes to the fastest step any member wants.
//
// Index changes are applied as a ramp of unit steps, each written
// through the [Stepper] with its settle delay, so the hardware never
// sees a jump of more than one operating point.
package policy
