// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"k8s.io/utils/cpuset"

	"github.com/bureau-foundation/freqd/lib/cpufreq"
	"github.com/bureau-foundation/freqd/lib/ctlfile"
)

// MaxDomainCores bounds the size of one clock domain.
const MaxDomainCores = 64

// ErrNoCores means resolution found nothing to manage.
var ErrNoCores = errors.New("could not find any cpufreq controlled cores to manage")

// Domain is a set of cores locked to one frequency.
type Domain struct {
	// Master is the lowest core id; its cpufreq files drive the domain.
	Master int
	// Cores lists every member in ascending order, Master included.
	Cores []int
}

func (d Domain) String() string {
	return cpuset.New(d.Cores...).String()
}

func newDomain(cores cpuset.CPUSet) Domain {
	members := cores.List()
	return Domain{Master: members[0], Cores: members}
}

// FromList builds the single domain named by list. Both cpuset syntax
// ("0-3,6") and whitespace-separated ids ("0 1 2 3") are accepted.
func FromList(list string) ([]Domain, error) {
	normalized := strings.Join(strings.Fields(list), ",")
	cores, err := cpuset.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("parsing core list %q: %w", list, err)
	}
	if cores.IsEmpty() {
		return nil, ErrNoCores
	}
	if cores.Size() > MaxDomainCores {
		return nil, &ctlfile.RangeError{Path: "core list", Count: cores.Size(), Max: MaxDomainCores}
	}
	return []Domain{newDomain(cores)}, nil
}

// Resolve enumerates the cores under layout and groups them into clock
// domains. Cores without a cpufreq directory are skipped. A scalable
// core whose affected_cpus cannot be read is an error.
func Resolve(layout cpufreq.Layout, logger *slog.Logger) ([]Domain, error) {
	count, err := countCores(layout.CPURoot())
	if err != nil {
		return nil, err
	}

	var domains []Domain
	claimed := cpuset.New()
	for core := 0; core < count; core++ {
		if claimed.Contains(core) {
			continue
		}
		if _, err := os.Stat(layout.FreqDir(core)); err != nil {
			logger.Debug("skipping core without cpufreq", "core", core)
			continue
		}

		path := layout.Attr(core, cpufreq.AffectedCPUsFile)
		values, err := ctlfile.ReadIntList(path, MaxDomainCores)
		if err != nil {
			return nil, fmt.Errorf("core %d: %w", core, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("core %d: could not read affected cores from %s", core, path)
		}
		members := make([]int, 0, len(values))
		for _, value := range values {
			if value < 0 || value >= int64(count) {
				return nil, fmt.Errorf("core %d: affected core %d out of range in %s", core, value, path)
			}
			members = append(members, int(value))
		}

		domain := newDomain(cpuset.New(members...))
		if domain.Master != core {
			logger.Debug("core controlled by another core", "core", core, "master", domain.Master)
			continue
		}
		claimed = claimed.Union(cpuset.New(domain.Cores...))
		domains = append(domains, domain)
		logger.Debug("clock domain resolved", "master", domain.Master, "cores", domain.String())
	}

	if len(domains) == 0 {
		return nil, ErrNoCores
	}
	return domains, nil
}

// countCores returns one more than the highest cpuN directory under
// cpuRoot, so ids 0..count-1 cover every configured core.
func countCores(cpuRoot string) (int, error) {
	entries, err := os.ReadDir(cpuRoot)
	if err != nil {
		return 0, &ctlfile.IOError{Op: "read", Path: cpuRoot, Err: err}
	}
	count := 0
	for _, entry := range entries {
		suffix, found := strings.CutPrefix(entry.Name(), "cpu")
		if !found || suffix == "" {
			continue
		}
		id, err := strconv.Atoi(suffix)
		if err != nil || id < 0 {
			// cpufreq, cpuidle, and friends.
			continue
		}
		count = max(count, id+1)
	}
	return count, nil
}
