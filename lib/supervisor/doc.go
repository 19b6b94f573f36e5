// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisor runs one isolated worker per clock domain and
// bridges OS signals to them.
//
// Each worker owns its domain outright: it switches the domain to the
// userspace governor, discovers the speed table, and runs a
// [scheduler.Scheduler] until told to stop. Workers share nothing but
// the read-only configuration; a failure in one cancels the rest and
// [Supervisor.Run] returns the error without restoring any hardware
// state.
//
// The signal bridge maps SIGUSR1 to force-max, SIGUSR2 to force-min,
// SIGHUP to resume, and SIGTERM, SIGINT, and SIGQUIT to terminate,
// delivering each message to every worker's mailbox in arrival order.
// Terminate is one-shot: the first terminating signal triggers
// [Config.OnTerminate] (cmd/freqd resets the signals to their default
// disposition there) and stops the bridge. Run returns that signal once
// every worker has restored its saved state, and the caller re-raises
// it.
package supervisor
