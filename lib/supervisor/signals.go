// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/freqd/lib/scheduler"
)

// ControlSignals switch the policy mode.
var ControlSignals = []os.Signal{unix.SIGUSR1, unix.SIGUSR2, unix.SIGHUP}

// TerminateSignals end the daemon.
var TerminateSignals = []os.Signal{unix.SIGTERM, unix.SIGINT, unix.SIGQUIT}

// Signals returns every signal the bridge handles, for signal.Notify.
func Signals() []os.Signal {
	return append(append([]os.Signal(nil), ControlSignals...), TerminateSignals...)
}

// Translate maps sig to the control message it requests.
func Translate(sig os.Signal) (scheduler.Message, bool) {
	var kind scheduler.Kind
	switch sig {
	case unix.SIGUSR1:
		kind = scheduler.ForceMax
	case unix.SIGUSR2:
		kind = scheduler.ForceMin
	case unix.SIGHUP:
		kind = scheduler.Resume
	case unix.SIGTERM, unix.SIGINT, unix.SIGQUIT:
		kind = scheduler.Terminate
	default:
		return scheduler.Message{}, false
	}
	return scheduler.Message{Kind: kind, Signal: sig}, true
}
