// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteCPUFreq creates sysRoot/devices/system/cpu/cpuN/cpufreq and
// writes each attribute with a trailing newline. A nil attrs map still
// creates the directory.
func WriteCPUFreq(t testing.TB, sysRoot string, core int, attrs map[string]string) {
	t.Helper()
	directory := filepath.Join(sysRoot, "devices", "system", "cpu", "cpu"+strconv.Itoa(core), "cpufreq")
	if err := os.MkdirAll(directory, 0o755); err != nil {
		t.Fatalf("creating %s: %v", directory, err)
	}
	for name, value := range attrs {
		WriteFile(t, filepath.Join(directory, name), value+"\n")
	}
}

// WriteCore creates sysRoot/devices/system/cpu/cpuN without a cpufreq
// directory, as the kernel does for cores it cannot scale.
func WriteCore(t testing.TB, sysRoot string, core int) {
	t.Helper()
	directory := filepath.Join(sysRoot, "devices", "system", "cpu", "cpu"+strconv.Itoa(core))
	if err := os.MkdirAll(directory, 0o755); err != nil {
		t.Fatalf("creating %s: %v", directory, err)
	}
}

// WriteStat writes a /proc/stat-style file at path with one row per
// entry in rows (already formatted, e.g. "cpu0 10 0 5 85 0 0 0 0").
func WriteStat(t testing.TB, path string, rows ...string) {
	t.Helper()
	WriteFile(t, path, strings.Join(rows, "\n")+"\n")
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// ReadFile returns the trimmed content of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.TrimSpace(string(data))
}
