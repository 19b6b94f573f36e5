// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cpufreq drives one clock domain through the Linux cpufreq
// sysfs interface.
//
// A [Layout] maps core ids to attribute paths under a sysfs root, so
// tests can point it at a synthetic tree. A [Domain] is the handle for
// one clock domain, addressed through its master core: every member
// core follows the master's frequency, so only the master's files are
// read and written.
//
// Frequency writes go to scaling_setspeed, which the kernel honors
// only while the domain runs the "userspace" governor. [Domain.TakeOver]
// switches to that governor (optionally snapshotting the previous
// governor and speed first) and [Domain.Restore] puts the snapshot back.
//
// Every frequency write is followed by a settle delay so the voltage
// regulator can stabilize before the next write. Some parts fault on
// back-to-back transitions; the delay is part of the write, not an
// optimization the caller may skip.
package cpufreq
