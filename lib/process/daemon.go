// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// DaemonEnv marks a process started by Daemonize.
const DaemonEnv = "FREQD_DAEMONIZED"

// IsDaemon reports whether this process was started by Daemonize.
func IsDaemon() bool {
	return os.Getenv(DaemonEnv) == "1"
}

// Daemonize starts a copy of the running binary with args in a new
// session with its working directory at / and standard streams on
// /dev/null. Paths in args must be absolute. It returns the child's
// pid; the caller should then exit. In the copy, IsDaemon reports true
// and Daemonize must not be called again.
func Daemonize(args []string) (int, error) {
	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("locating own executable: %w", err)
	}

	cmd := exec.Command(executable, args...)
	cmd.Env = append(os.Environ(), DaemonEnv+"=1")
	cmd.Dir = "/"
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting detached copy: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("releasing detached copy: %w", err)
	}
	return pid, nil
}
