// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loadstat

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bureau-foundation/freqd/lib/ctlfile"
)

// DefaultStatPath is the kernel's counter source.
const DefaultStatPath = "/proc/stat"

// maxLineBytes bounds a single row. The "intr" row of a host with many
// interrupt sources runs well past bufio's 64 KiB default.
const maxLineBytes = 16 << 20

// Counters is one core's cumulative time, in USER_HZ ticks.
type Counters struct {
	User   uint64
	Nice   uint64
	System uint64
	Idle   uint64
	IOWait uint64
}

// Stat maps core id to its counters.
type Stat map[int]Counters

// ReadStat reads and parses a /proc/stat-format file.
func ReadStat(path string) (Stat, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ctlfile.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()
	return ParseStat(path, file)
}

// ParseStat parses per-core rows from reader. The aggregate "cpu" row
// is skipped. The kernel writes every cpu row before anything else, so
// parsing stops at the first other row once per-core rows have been
// seen. source names the input in errors.
func ParseStat(source string, reader io.Reader) (Stat, error) {
	stat := make(Stat)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		core, ok := coreLabel(fields[0])
		if !ok {
			if len(stat) > 0 && !strings.HasPrefix(fields[0], "cpu") {
				break
			}
			continue
		}
		counters, err := parseCounters(source, fields[1:])
		if err != nil {
			return nil, err
		}
		stat[core] = counters
	}
	if err := scanner.Err(); err != nil {
		return nil, &ctlfile.IOError{Op: "read", Path: source, Err: err}
	}
	return stat, nil
}

// coreLabel extracts N from "cpuN". The aggregate "cpu" label is not a
// core.
func coreLabel(label string) (int, bool) {
	suffix, found := strings.CutPrefix(label, "cpu")
	if !found || suffix == "" {
		return 0, false
	}
	core, err := strconv.Atoi(suffix)
	if err != nil || core < 0 {
		return 0, false
	}
	return core, true
}

// parseCounters reads user, nice, system, idle and (when present)
// iowait. Trailing fields are ignored.
func parseCounters(source string, fields []string) (Counters, error) {
	if len(fields) < 4 {
		return Counters{}, &ctlfile.ParseError{Path: source, Token: strings.Join(fields, " ")}
	}
	var values [5]uint64
	for i := 0; i < len(values) && i < len(fields); i++ {
		value, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return Counters{}, &ctlfile.RangeError{Path: source, Token: fields[i]}
			}
			return Counters{}, &ctlfile.ParseError{Path: source, Token: fields[i]}
		}
		values[i] = value
	}
	return Counters{
		User:   values[0],
		Nice:   values[1],
		System: values[2],
		Idle:   values[3],
		IOWait: values[4],
	}, nil
}
