// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"path/filepath"

	"github.com/bureau-foundation/freqd/lib/config"
)

// detachedArgs returns args for the detached copy, which runs with its
// working directory at /. Every path the copy opens is appended as an
// absolute flag; repeated flags take the last value, so these win over
// both the originals in args and the config file.
func detachedArgs(args []string, configPath string, cfg *config.Config) ([]string, error) {
	paths := []struct {
		flag string
		path string
	}{
		{"config", configPath},
		{"sys-root", cfg.SysRoot},
		{"stat-path", cfg.StatPath},
		{"thermal-file", cfg.Thermal.File},
		{"power-file", cfg.Power.File},
	}

	detached := append([]string(nil), args...)
	for _, entry := range paths {
		if entry.path == "" {
			continue
		}
		absolute, err := filepath.Abs(entry.path)
		if err != nil {
			return nil, fmt.Errorf("resolving --%s %s: %w", entry.flag, entry.path, err)
		}
		detached = append(detached, "--"+entry.flag+"="+absolute)
	}
	return detached, nil
}
