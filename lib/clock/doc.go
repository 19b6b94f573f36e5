// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the time source used by the frequency daemon.
//
// Two things in freqd depend on time: the settle delay after every
// frequency write, and the scheduler's wait between ticks. Both take a
// Clock so that tests can drive them without real sleeps.
//
// In production Real() forwards to the time package. In tests Fake()
// returns a clock that moves only when Advance is called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go loop.Run(ctx)
//	c.WaitForTimers(1)              // loop is parked on its tick wait
//	c.Advance(200 * time.Millisecond) // fire it
//
// Sleep on a FakeClock does not block and does not move time. It
// records the requested duration so tests can assert that settle delays
// were honored (see [FakeClock.Slept]).
package clock
