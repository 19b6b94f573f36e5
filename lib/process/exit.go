// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Fatal writes "error: err" to stderr and exits with code 1. When the
// chain holds a system call errno its symbolic name follows on a second
// line.
func Fatal(err error) {
	writeFatal(os.Stderr, err)
	os.Exit(1)
}

func writeFatal(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
	var errno syscall.Errno
	if errors.As(err, &errno) {
		name := unix.ErrnoName(errno)
		if name == "" {
			name = "errno"
		}
		fmt.Fprintf(w, "  %s (%d): %s\n", name, int(errno), errno.Error())
	}
}

// reraiseGrace bounds how long Reraise waits for the kernel to deliver
// the signal before falling back to an explicit exit.
const reraiseGrace = time.Second

// Reraise restores sig to its default disposition and sends it to the
// current process. It does not return. If delivery does not end the
// process (the signal is ignored by default, or blocked), it exits
// with status 128+signal. SIGQUIT is not sent: the Go runtime answers
// it with a goroutine dump and status 2, so Reraise exits with 128+3
// directly, as a shell reports a process killed by SIGQUIT.
func Reraise(sig os.Signal) {
	number, ok := sig.(syscall.Signal)
	if !ok {
		os.Exit(1)
	}
	if runtimeDumpsOn(number) {
		os.Exit(128 + int(number))
	}
	signal.Reset(number)
	if err := unix.Kill(unix.Getpid(), number); err != nil {
		Fatal(fmt.Errorf("re-raising %v: %w", number, err))
	}
	time.Sleep(reraiseGrace)
	os.Exit(128 + int(number))
}

// runtimeDumpsOn reports whether the Go runtime's default handling of
// sig prints every goroutine's stack instead of dying from the signal.
func runtimeDumpsOn(sig syscall.Signal) bool {
	return sig == unix.SIGQUIT
}
