// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/bureau-foundation/freqd/lib/config"
)

// newLogger builds the process logger. In auto format a terminal gets
// tint's coloured output and anything else (journald, a pipe, a file)
// gets JSON.
func newLogger(logConfig config.LogConfig, output *os.File) (*slog.Logger, error) {
	level, err := logConfig.SlogLevel()
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch logConfig.Format {
	case "auto":
		if term.IsTerminal(int(output.Fd())) {
			handler = tint.NewHandler(output, &tint.Options{Level: level, TimeFormat: "15:04:05"})
		} else {
			handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
		}
	case "text":
		handler = tint.NewHandler(output, &tint.Options{Level: level, TimeFormat: "15:04:05", NoColor: true})
	case "json":
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("unknown log format %q", logConfig.Format)
	}
	return slog.New(handler), nil
}
