// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bureau-foundation/freqd/lib/clock"
	"github.com/bureau-foundation/freqd/lib/config"
	"github.com/bureau-foundation/freqd/lib/cpufreq"
	"github.com/bureau-foundation/freqd/lib/loadstat"
	"github.com/bureau-foundation/freqd/lib/policy"
	"github.com/bureau-foundation/freqd/lib/process"
	"github.com/bureau-foundation/freqd/lib/speedtable"
	"github.com/bureau-foundation/freqd/lib/supervisor"
	"github.com/bureau-foundation/freqd/lib/topology"
	"github.com/bureau-foundation/freqd/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	invocation, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}
	switch {
	case invocation.help:
		return nil
	case invocation.showVersion:
		version.Write(os.Stdout, "freqd")
		return nil
	}

	cfg := invocation.config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	layout := cpufreq.Layout{SysRoot: cfg.SysRoot}
	domains, err := resolveDomains(cfg, layout, logger)
	if err != nil {
		return err
	}

	if cfg.Daemonize && !process.IsDaemon() {
		args, err := detachedArgs(os.Args[1:], invocation.configPath, cfg)
		if err != nil {
			return err
		}
		pid, err := process.Daemonize(args)
		if err != nil {
			return err
		}
		logger.Info("detached", "pid", pid)
		return nil
	}

	signals := make(chan os.Signal, 8)
	signal.Notify(signals, supervisor.Signals()...)
	defer signal.Stop(signals)

	daemon, err := supervisor.New(supervisorConfig(cfg, layout, domains, logger))
	if err != nil {
		return err
	}

	logger.Info("freqd starting", "build", version.Current(), "domains", len(domains))
	sig, err := daemon.Run(context.Background(), signals)
	if err != nil {
		return err
	}
	process.Reraise(sig)
	return nil
}

func resolveDomains(cfg *config.Config, layout cpufreq.Layout, logger *slog.Logger) ([]topology.Domain, error) {
	if cfg.Cores != "" {
		return topology.FromList(cfg.Cores)
	}
	return topology.Resolve(layout, logger)
}

func supervisorConfig(cfg *config.Config, layout cpufreq.Layout, domains []topology.Domain, logger *slog.Logger) supervisor.Config {
	return supervisor.Config{
		Domains:  domains,
		Layout:   layout,
		StatPath: cfg.StatPath,
		Limits: speedtable.Limits{
			MinKHz: cfg.Speed.MinKHz,
			MaxKHz: cfg.Speed.MaxKHz,
		},
		Policy: policy.Options{
			Thresholds: policy.Thresholds{
				FastUp: cfg.Load.FastUp,
				Idle:   cfg.Load.Threshold,
			},
			MaxOnAC:      cfg.Power.MaxOnAC,
			MinOnBattery: cfg.Power.MinOnBattery,
			ThermalLimit: cfg.Thermal.Max,
		},
		Load: loadstat.Options{
			NiceIsIdle:   cfg.Load.NiceIsIdle,
			IOWaitIsIdle: cfg.Load.IOWaitIsIdle,
		},
		ThermalFile:     cfg.Thermal.File,
		PowerFile:       cfg.Power.File,
		LoadInterval:    cfg.Load.Interval,
		ThermalInterval: cfg.Thermal.Interval,
		PowerInterval:   cfg.Power.Interval,
		SaveState:       cfg.RestoreOnExit,
		OnTerminate: func(os.Signal) {
			// A second terminating signal kills the process outright.
			signal.Reset(supervisor.TerminateSignals...)
		},
		Clock:  clock.Real(),
		Logger: logger,
	}
}
