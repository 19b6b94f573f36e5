// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Freqd scales processor clock frequency with load through the Linux
// cpufreq userspace governor.
//
// On startup:
//  1. Loads configuration (--config or FREQD_CONFIG) and applies flags.
//  2. Resolves clock domains from sysfs, or takes the single domain
//     named by --cores.
//  3. Optionally detaches into a new session (--daemonize).
//  4. Starts one worker per domain. Each switches its domain to the
//     userspace governor, probes the real frequency steps, and then
//     polls load, temperature, and power source.
//
// Signals: SIGUSR1 pins the fastest step, SIGUSR2 the slowest, and
// SIGHUP resumes dynamic scaling. SIGTERM, SIGINT, and SIGQUIT restore
// the saved frequency and governor (with --restore) and then terminate
// the process with the same signal.
package main
