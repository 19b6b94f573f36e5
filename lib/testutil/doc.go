// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for freqd packages.
//
// [WriteCPUFreq] and [WriteStat] build synthetic sysfs and procfs
// trees under t.TempDir(), so every package can exercise its real file
// handling without root or real hardware.
//
// [RequireReceive] and [RequireNotReceived] wrap the timeout safety
// valve pattern (select with a real-time fallback). They are the only
// place tests use wall-clock timeouts; everything else runs on
// clock.FakeClock.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
