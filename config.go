// SPDX-License-Identifier: GPL-3.0
package fqco

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// MTU is used to scale the quantum defaults: 2xMTU / 10xMTU.
const MTU = 1500

// Config carries every externally observable knob, as a struct of
// runtime-adjustable fields rather than package-level constants, since
// change(config) is a runtime operation here.
type Config struct {
	Plimit            uint32
	FlowPlimit        uint32
	Quantum           uint32
	InitialQuantum    uint32
	FlowMaxRate       uint64
	LowRateThreshold  uint32
	BucketsLog        uint32
	FlowRefillDelay   time.Duration
	OrphanMask        uint32
	CeThreshold       time.Duration
	TimerSlack        time.Duration
	Horizon           time.Duration
	HorizonDrop       bool
	RateEnable        bool
	F1Source          uint16
	F2Source          uint16
	F1Dest            uint16
	F2Dest            uint16
	// CoBreachCount / CoReliefCount expose the co-flow flip-flop
	// thresholds as configuration rather than hard-coded constants
	// (DESIGN.md Open Question 2).
	CoBreachCount int
	CoReliefCount int
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Plimit:           10000,
		FlowPlimit:       100,
		Quantum:          2 * MTU,
		InitialQuantum:   10 * MTU,
		FlowMaxRate:      0, // 0 means unlimited (infinity)
		LowRateThreshold: 68750,
		BucketsLog:       10,
		FlowRefillDelay:  40 * time.Millisecond,
		OrphanMask:       1023,
		CeThreshold:      time.Duration(1<<63 - 1), // effectively infinite
		TimerSlack:       10 * time.Microsecond,
		Horizon:          10 * time.Second,
		HorizonDrop:      true,
		RateEnable:       true,
		CoBreachCount:    2,
		CoReliefCount:    0,
	}
}

// Validate checks every field against its documented range, aggregating
// every violation with go.uber.org/multierr rather than failing on the
// first.
func (c Config) Validate() error {
	var err error
	if c.Plimit == 0 {
		err = multierr.Append(err, fmt.Errorf("plimit must be > 0"))
	}
	if c.FlowPlimit == 0 {
		err = multierr.Append(err, fmt.Errorf("flow_plimit must be > 0"))
	}
	if c.Quantum == 0 {
		err = multierr.Append(err, fmt.Errorf("quantum must be > 0"))
	}
	if c.InitialQuantum == 0 {
		err = multierr.Append(err, fmt.Errorf("initial_quantum must be > 0"))
	}
	if c.BucketsLog < 1 || c.BucketsLog > 18 {
		err = multierr.Append(err, fmt.Errorf("buckets_log must be in [1,18], got %d", c.BucketsLog))
	}
	if c.CoBreachCount <= c.CoReliefCount {
		err = multierr.Append(err, fmt.Errorf(
			"co_breach_count (%d) must be > co_relief_count (%d)",
			c.CoBreachCount, c.CoReliefCount))
	}
	if err != nil {
		return &ConfigError{err: err}
	}
	return nil
}
