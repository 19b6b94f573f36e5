// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/freqd/lib/config"
)

// invocation is the outcome of command-line parsing.
type invocation struct {
	config *config.Config
	// configPath is the file config was loaded from, empty for defaults.
	configPath  string
	showVersion bool
	help        bool
}

// flagValues holds every flag that overrides a config field. Fields
// default to config.Default so --help shows the effective defaults.
type flagValues struct {
	config.Config

	niceIsBusy     bool
	iowaitIsBusy   bool
	noMinOnBattery bool
	thresholds     []uint
}

// overrides copies one flag's value into a loaded config. Only flags
// that were set on the command line are applied.
var overrides = map[string]func(dst *config.Config, src *flagValues){
	"daemonize":         func(dst *config.Config, src *flagValues) { dst.Daemonize = src.Daemonize },
	"restore":           func(dst *config.Config, src *flagValues) { dst.RestoreOnExit = src.RestoreOnExit },
	"max-on-ac":         func(dst *config.Config, src *flagValues) { dst.Power.MaxOnAC = src.Power.MaxOnAC },
	"no-min-on-battery": func(dst *config.Config, src *flagValues) { dst.Power.MinOnBattery = !src.noMinOnBattery },
	"nice-is-busy":      func(dst *config.Config, src *flagValues) { dst.Load.NiceIsIdle = !src.niceIsBusy },
	"iowait-is-busy":    func(dst *config.Config, src *flagValues) { dst.Load.IOWaitIsIdle = !src.iowaitIsBusy },
	"interval":          func(dst *config.Config, src *flagValues) { dst.Load.Interval = src.Load.Interval },
	"thresholds":        applyThresholds,
	"min-khz":           func(dst *config.Config, src *flagValues) { dst.Speed.MinKHz = src.Speed.MinKHz },
	"max-khz":           func(dst *config.Config, src *flagValues) { dst.Speed.MaxKHz = src.Speed.MaxKHz },
	"thermal-file":      func(dst *config.Config, src *flagValues) { dst.Thermal.File = src.Thermal.File },
	"thermal-max":       func(dst *config.Config, src *flagValues) { dst.Thermal.Max = src.Thermal.Max },
	"thermal-interval":  func(dst *config.Config, src *flagValues) { dst.Thermal.Interval = src.Thermal.Interval },
	"power-file":        func(dst *config.Config, src *flagValues) { dst.Power.File = src.Power.File },
	"power-interval":    func(dst *config.Config, src *flagValues) { dst.Power.Interval = src.Power.Interval },
	"cores":             func(dst *config.Config, src *flagValues) { dst.Cores = src.Cores },
	"sys-root":          func(dst *config.Config, src *flagValues) { dst.SysRoot = src.SysRoot },
	"stat-path":         func(dst *config.Config, src *flagValues) { dst.StatPath = src.StatPath },
	"log-level":         func(dst *config.Config, src *flagValues) { dst.Log.Level = src.Log.Level },
	"log-format":        func(dst *config.Config, src *flagValues) { dst.Log.Format = src.Log.Format },
}

func applyThresholds(dst *config.Config, src *flagValues) {
	dst.Load.FastUp, dst.Load.Threshold = uint64(src.thresholds[0]), uint64(src.thresholds[1])
}

// parseArgs parses args, loads the configuration file, and applies the
// flags that were set on top of it. Help output goes to output.
func parseArgs(args []string, output io.Writer) (*invocation, error) {
	defaults := config.Default()
	values := &flagValues{Config: *defaults}
	values.thresholds = []uint{uint(defaults.Load.FastUp), uint(defaults.Load.Threshold)}

	var configPath string
	var result invocation

	flagSet := pflag.NewFlagSet("freqd", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() { printHelp(output, flagSet) }

	flagSet.StringVar(&configPath, "config", "", "YAML configuration file (default: $"+config.EnvVar+")")
	flagSet.BoolVar(&result.showVersion, "version", false, "print version information and exit")

	flagSet.BoolVarP(&values.Daemonize, "daemonize", "d", values.Daemonize, "detach into the background")
	flagSet.BoolVarP(&values.RestoreOnExit, "restore", "r", values.RestoreOnExit, "restore the startup frequency and governor on exit")
	flagSet.BoolVarP(&values.Power.MaxOnAC, "max-on-ac", "C", values.Power.MaxOnAC, "run at maximum speed while on external power (needs --power-file)")
	flagSet.BoolVarP(&values.noMinOnBattery, "no-min-on-battery", "D", false, "do not force minimum speed while on battery")
	flagSet.BoolVarP(&values.niceIsBusy, "nice-is-busy", "n", false, "do not count niced time as idle")
	flagSet.BoolVarP(&values.iowaitIsBusy, "iowait-is-busy", "w", false, "do not count I/O wait time as idle")
	flagSet.DurationVarP(&values.Load.Interval, "interval", "i", values.Load.Interval, "interval between load checks")
	flagSet.UintSliceVarP(&values.thresholds, "thresholds", "p", values.thresholds, "idle percentages FAST,THRESHOLD: at or below FAST jump to full speed; below THRESHOLD speed up, above it slow down")
	flagSet.Int64VarP(&values.Speed.MinKHz, "min-khz", "m", values.Speed.MinKHz, "lowest frequency to use in kHz (0: hardware minimum)")
	flagSet.Int64VarP(&values.Speed.MaxKHz, "max-khz", "M", values.Speed.MaxKHz, "highest frequency to use in kHz (0: hardware maximum)")
	flagSet.StringVarP(&values.Thermal.File, "thermal-file", "t", values.Thermal.File, "temperature file; above --thermal-max the minimum speed is forced")
	flagSet.Int64Var(&values.Thermal.Max, "thermal-max", values.Thermal.Max, "temperature limit, in the unit of --thermal-file")
	flagSet.DurationVarP(&values.Thermal.Interval, "thermal-interval", "T", values.Thermal.Interval, "interval between temperature checks")
	flagSet.StringVarP(&values.Power.File, "power-file", "a", values.Power.File, "power source state file (ACPI state or power_supply online)")
	flagSet.DurationVarP(&values.Power.Interval, "power-interval", "A", values.Power.Interval, "interval between power source checks")
	flagSet.StringVarP(&values.Cores, "cores", "S", values.Cores, "manage only these cores as one domain (e.g. \"0-3\" or \"0 1\")")
	flagSet.StringVar(&values.SysRoot, "sys-root", values.SysRoot, "sysfs mount point")
	flagSet.StringVar(&values.StatPath, "stat-path", values.StatPath, "per-core CPU time file")
	flagSet.StringVar(&values.Log.Level, "log-level", values.Log.Level, "log level: debug, info, warn, error")
	flagSet.StringVar(&values.Log.Format, "log-format", values.Log.Format, "log format: auto, text, json")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			result.help = true
			return &result, nil
		}
		return nil, err
	}
	if remaining := flagSet.Args(); len(remaining) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", remaining[0])
	}
	if flagSet.Changed("thresholds") && len(values.thresholds) != 2 {
		return nil, fmt.Errorf("--thresholds takes exactly two values, got %d", len(values.thresholds))
	}
	if result.showVersion {
		return &result, nil
	}

	var err error
	if configPath != "" {
		result.config, err = config.LoadFile(configPath)
	} else {
		configPath = os.Getenv(config.EnvVar)
		result.config, err = config.Load()
	}
	result.configPath = configPath
	if err != nil {
		return nil, err
	}

	flagSet.Visit(func(flag *pflag.Flag) {
		if apply, ok := overrides[flag.Name]; ok {
			apply(result.config, values)
		}
	})
	return &result, nil
}

func printHelp(output io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(output, `freqd: scale CPU frequency with load.

Switches every cpufreq clock domain to the userspace governor and steps
its frequency up and down as the cores get busier or idler. Optional
temperature and power-source files can force the slowest or fastest
step.

Usage:
  freqd [flags]

Signals:
  SIGUSR1   run at maximum speed until SIGHUP
  SIGUSR2   run at minimum speed until SIGHUP
  SIGHUP    resume dynamic scaling

Flags:
`)
	flagSet.PrintDefaults()
}
