// SPDX-License-Identifier: GPL-3.0
package fqco

import (
	"math"
	"time"
)

// Clock is a monotonic nanosecond timestamp, backed by wall/monotonic
// time rather than a virtual simulation clock.
type Clock int64

// ClockInfinity represents "never" for minimum-tracking fields such as
// the throttle tree's next-delayed-flow cache.
const ClockInfinity = Clock(math.MaxInt64)

// Duration converts a Clock delta to a time.Duration.
func (c Clock) Duration() time.Duration { return time.Duration(c) }

// ClockOf converts a time.Duration to a Clock delta.
func ClockOf(d time.Duration) Clock { return Clock(d) }

// TimeSource provides a monotonic nanosecond clock, cached across a batch
// of operations so that a single Dequeue/Enqueue call observes one
// consistent "now" unless it explicitly asks for a refresh.
type TimeSource struct {
	now   Clock
	cache func() Clock
}

// NewTimeSource returns a TimeSource backed by time.Now(); tests can
// construct one directly with a fake cache func for determinism.
func NewTimeSource() *TimeSource {
	return &TimeSource{cache: monotonicNow}
}

func monotonicNow() Clock {
	return Clock(time.Now().UnixNano())
}

// Now returns the cached timestamp without refreshing it.
func (t *TimeSource) Now() Clock { return t.now }

// Refresh takes a fresh reading and caches it, returning the new value.
func (t *TimeSource) Refresh() Clock {
	t.now = t.cache()
	return t.now
}
