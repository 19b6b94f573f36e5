// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package topology works out which cores share a clock and therefore
// must be managed together.
//
// The kernel publishes, for every scalable core, the set of cores that
// change frequency with it (cpufreq/affected_cpus). The lowest id in
// that set is the domain's master; the daemon reads and writes only
// the master's cpufreq files. [Resolve] walks every core once and
// returns each domain exactly once, so each can be handed to exactly
// one owner.
//
// An explicit core list ([FromList]) skips resolution entirely and
// becomes the only domain.
package topology
