// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/freqd/lib/clock"
	"github.com/bureau-foundation/freqd/lib/cpufreq"
	"github.com/bureau-foundation/freqd/lib/loadstat"
	"github.com/bureau-foundation/freqd/lib/policy"
	"github.com/bureau-foundation/freqd/lib/scheduler"
	"github.com/bureau-foundation/freqd/lib/sensor"
	"github.com/bureau-foundation/freqd/lib/speedtable"
	"github.com/bureau-foundation/freqd/lib/topology"
)

// mailboxSize bounds the control messages queued for a worker that is
// still setting up.
const mailboxSize = 8

// Config configures New.
type Config struct {
	Domains []topology.Domain
	Layout  cpufreq.Layout

	// StatPath is the per-core time accounting file.
	StatPath string

	Limits speedtable.Limits
	Policy policy.Options
	Load   loadstat.Options

	// ThermalFile and PowerFile are optional sensor paths.
	ThermalFile string
	PowerFile   string

	LoadInterval    time.Duration
	ThermalInterval time.Duration
	PowerInterval   time.Duration

	// SaveState captures each domain's frequency and governor before
	// takeover and restores them on terminate.
	SaveState bool

	// OnTerminate is called once, from the bridge, with the first
	// terminating signal. Optional.
	OnTerminate func(os.Signal)

	Clock  clock.Clock
	Logger *slog.Logger
}

// Supervisor owns the domain workers.
type Supervisor struct {
	config Config
	logger *slog.Logger
}

// New validates config and returns a Supervisor.
func New(config Config) (*Supervisor, error) {
	if len(config.Domains) == 0 {
		return nil, topology.ErrNoCores
	}
	if config.StatPath == "" {
		return nil, errors.New("supervisor: StatPath is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{config: config, logger: logger}, nil
}

// Run starts a worker per domain and forwards signals to them until a
// terminating signal has been handled by every worker, which Run then
// returns. Any worker error cancels the others and is returned with a
// nil signal.
func (s *Supervisor) Run(ctx context.Context, signals <-chan os.Signal) (os.Signal, error) {
	group, groupCtx := errgroup.WithContext(ctx)

	mailboxes := make([]chan scheduler.Message, len(s.config.Domains))
	for i, domain := range s.config.Domains {
		mailbox := make(chan scheduler.Message, mailboxSize)
		mailboxes[i] = mailbox
		group.Go(func() error {
			if err := s.runWorker(groupCtx, domain, mailbox); err != nil {
				return fmt.Errorf("domain %d: %w", domain.Master, err)
			}
			return nil
		})
	}

	bridgeCtx, stopBridge := context.WithCancel(groupCtx)
	terminated := make(chan os.Signal, 1)
	bridgeDone := make(chan struct{})
	go func() {
		defer close(bridgeDone)
		s.bridge(bridgeCtx, signals, mailboxes, terminated)
	}()

	err := group.Wait()
	stopBridge()
	<-bridgeDone
	if err != nil {
		return nil, err
	}

	select {
	case sig := <-terminated:
		return sig, nil
	default:
		// Workers only return nil after a terminate message.
		return nil, errors.New("all workers stopped without a terminating signal")
	}
}

// bridge fans signals out to every mailbox until the first terminating
// signal has been delivered or ctx is done.
func (s *Supervisor) bridge(ctx context.Context, signals <-chan os.Signal, mailboxes []chan scheduler.Message, terminated chan<- os.Signal) {
	for {
		var sig os.Signal
		select {
		case <-ctx.Done():
			return
		case received, ok := <-signals:
			if !ok {
				return
			}
			sig = received
		}

		message, ok := Translate(sig)
		if !ok {
			s.logger.Warn("ignoring unexpected signal", "signal", sig)
			continue
		}
		if message.Kind == scheduler.Terminate {
			terminated <- sig
			if s.config.OnTerminate != nil {
				s.config.OnTerminate(sig)
			}
			s.logger.Info("terminating", "signal", sig)
		}

		for _, mailbox := range mailboxes {
			select {
			case mailbox <- message:
			case <-ctx.Done():
				return
			}
		}
		if message.Kind == scheduler.Terminate {
			return
		}
	}
}

// runWorker takes over one domain and runs its control loop.
func (s *Supervisor) runWorker(ctx context.Context, domain topology.Domain, mailbox <-chan scheduler.Message) error {
	config := s.config
	logger := s.logger.With("domain", domain.Master)

	hardware := cpufreq.NewDomain(config.Layout, domain.Master, config.Clock)
	snapshot, err := hardware.TakeOver(config.SaveState)
	if err != nil {
		return err
	}
	if snapshot != nil {
		logger.Debug("saved hardware state", "khz", snapshot.KHz, "governor", snapshot.Governor)
	}

	table, err := speedtable.Discover(hardware, config.Limits, logger)
	if err != nil {
		return err
	}
	logger.Info("managing clock domain", "cores", domain.String(), "steps", table.Len())

	engine := policy.NewEngine(policy.EngineConfig{
		Table:   table,
		Stepper: hardware,
		Members: len(domain.Cores),
		Options: config.Policy,
		Logger:  logger,
	})

	schedulerConfig := scheduler.Config{
		Engine:     engine,
		Accountant: loadstat.NewAccountant(domain.Cores, config.Load),
		Stat: func() (loadstat.Stat, error) {
			return loadstat.ReadStat(config.StatPath)
		},
		LoadInterval:    config.LoadInterval,
		ThermalInterval: config.ThermalInterval,
		PowerInterval:   config.PowerInterval,
		Clock:           config.Clock,
		Logger:          logger,
	}
	if config.ThermalFile != "" {
		schedulerConfig.Thermal = sensor.NewThermal(config.ThermalFile)
	}
	if config.PowerFile != "" {
		schedulerConfig.Power = sensor.NewPower(config.PowerFile)
	}
	if snapshot != nil {
		schedulerConfig.Restore = func() error {
			logger.Info("restoring saved hardware state", "khz", snapshot.KHz, "governor", snapshot.Governor)
			return hardware.Restore(snapshot)
		}
	}

	loop, err := scheduler.New(schedulerConfig)
	if err != nil {
		return err
	}
	return loop.Run(ctx, mailbox)
}
