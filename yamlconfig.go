// SPDX-License-Identifier: GPL-3.0
package fqco

import (
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig mirrors Config with yaml tags and duration-friendly string
// fields, standing in for an external control-plane blob decoder. It
// exists only for the demo driver and test harness, never on the core's
// hot path.
type yamlConfig struct {
	Plimit           uint32 `yaml:"plimit"`
	FlowPlimit       uint32 `yaml:"flow_plimit"`
	Quantum          uint32 `yaml:"quantum"`
	InitialQuantum   uint32 `yaml:"initial_quantum"`
	FlowMaxRate      uint64 `yaml:"flow_max_rate"`
	LowRateThreshold uint32 `yaml:"low_rate_threshold"`
	BucketsLog       uint32 `yaml:"buckets_log"`
	FlowRefillDelay  string `yaml:"flow_refill_delay"`
	OrphanMask       uint32 `yaml:"orphan_mask"`
	CeThreshold      string `yaml:"ce_threshold"`
	TimerSlack       string `yaml:"timer_slack"`
	Horizon          string `yaml:"horizon"`
	HorizonDrop      bool   `yaml:"horizon_drop"`
	RateEnable       bool   `yaml:"rate_enable"`
	F1Source         uint16 `yaml:"f1_source"`
	F2Source         uint16 `yaml:"f2_source"`
	F1Dest           uint16 `yaml:"f1_dest"`
	F2Dest           uint16 `yaml:"f2_dest"`
	CoBreachCount    int    `yaml:"co_breach_count"`
	CoReliefCount    int    `yaml:"co_relief_count"`
}

func toYAMLConfig(c Config) yamlConfig {
	return yamlConfig{
		Plimit:           c.Plimit,
		FlowPlimit:       c.FlowPlimit,
		Quantum:          c.Quantum,
		InitialQuantum:   c.InitialQuantum,
		FlowMaxRate:      c.FlowMaxRate,
		LowRateThreshold: c.LowRateThreshold,
		BucketsLog:       c.BucketsLog,
		FlowRefillDelay:  c.FlowRefillDelay.String(),
		OrphanMask:       c.OrphanMask,
		CeThreshold:      c.CeThreshold.String(),
		TimerSlack:       c.TimerSlack.String(),
		Horizon:          c.Horizon.String(),
		HorizonDrop:      c.HorizonDrop,
		RateEnable:       c.RateEnable,
		F1Source:         c.F1Source,
		F2Source:         c.F2Source,
		F1Dest:           c.F1Dest,
		F2Dest:           c.F2Dest,
		CoBreachCount:    c.CoBreachCount,
		CoReliefCount:    c.CoReliefCount,
	}
}

func (y yamlConfig) toConfig() (Config, error) {
	refill, err := time.ParseDuration(y.FlowRefillDelay)
	if err != nil {
		return Config{}, err
	}
	ce, err := time.ParseDuration(y.CeThreshold)
	if err != nil {
		return Config{}, err
	}
	slack, err := time.ParseDuration(y.TimerSlack)
	if err != nil {
		return Config{}, err
	}
	horizon, err := time.ParseDuration(y.Horizon)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Plimit:           y.Plimit,
		FlowPlimit:       y.FlowPlimit,
		Quantum:          y.Quantum,
		InitialQuantum:   y.InitialQuantum,
		FlowMaxRate:      y.FlowMaxRate,
		LowRateThreshold: y.LowRateThreshold,
		BucketsLog:       y.BucketsLog,
		FlowRefillDelay:  refill,
		OrphanMask:       y.OrphanMask,
		CeThreshold:      ce,
		TimerSlack:       slack,
		Horizon:          horizon,
		HorizonDrop:      y.HorizonDrop,
		RateEnable:       y.RateEnable,
		F1Source:         y.F1Source,
		F2Source:         y.F2Source,
		F1Dest:           y.F1Dest,
		F2Dest:           y.F2Dest,
		CoBreachCount:    y.CoBreachCount,
		CoReliefCount:    y.CoReliefCount,
	}, nil
}

// MarshalConfigYAML renders cfg as YAML, for dump()-to-file tooling.
func MarshalConfigYAML(cfg Config) ([]byte, error) {
	return yaml.Marshal(toYAMLConfig(cfg))
}

// LoadConfigYAML parses a YAML document produced by MarshalConfigYAML (or
// hand-written in the same shape) into a Config.
func LoadConfigYAML(data []byte) (Config, error) {
	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Config{}, err
	}
	return y.toConfig()
}
