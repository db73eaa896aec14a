// SPDX-License-Identifier: GPL-3.0

// Package fqco implements a per-flow fair-queueing packet scheduler core
// with rate pacing and a bounded co-flow interleaving policy, modeled on
// the Linux kernel's net/sched/sch_fq.c and generalized into a
// host-agnostic library: the kernel attachment shim, control-plane blob
// parsing, and statistics wire format are all external to this package.
//
// A Scheduler is not safe for concurrent use; the host must serialize
// calls to Enqueue, Dequeue, Reset, Change and watchdog callbacks across
// a single instance, exactly as one qdisc's root lock would. Distinct
// Scheduler instances share no state and need no coordination.
package fqco

import "go.uber.org/zap"

// Scheduler is the scheduler core: FlowTable, RRLists, ThrottleTree,
// Watchdog and the co-flow flip-flop state, all scoped to this instance
// — no package-level mutable state.
type Scheduler struct {
	cfg Config
	clk *TimeSource
	log *zap.SugaredLogger

	table    *FlowTable
	rr       RRLists
	throttle ThrottleTree
	watchdog Watchdog
	internal *FlowEntry // control-plane bypass sentinel

	qlen int // global packet count across all flows

	// Co-flow flip-flop state, scoped per instance.
	pFlowID  [2]*uint32
	ucounter int
	flipflag bool

	stats Stats
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger attaches a zap logger for lifecycle events. Without this
// option, logs are discarded.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithTimeSource overrides the clock, primarily for deterministic tests.
func WithTimeSource(ts *TimeSource) Option {
	return func(s *Scheduler) { s.clk = ts }
}

// New initializes a Scheduler with cfg exactly as given; zero fields are
// not filled in from defaults, so callers typically start from
// DefaultConfig() and override the fields they care about before
// calling New.
func New(cfg Config, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		cfg:      cfg,
		clk:      NewTimeSource(),
		log:      newNopLogger(),
		table:    NewFlowTable(cfg.BucketsLog),
		internal: newFlowEntry(FlowKey{kind: flowKeyInternal}),
	}
	s.internal.isInternal = true
	for _, o := range opts {
		o(s)
	}
	s.logf("scheduler initialized", "buckets_log", cfg.BucketsLog, "plimit", cfg.Plimit)
	return s, nil
}

// Peek returns the packet the next Dequeue call would return, or nil.
// It is implemented as dequeue-then-requeue-to-front: the packet, its
// flow's credit, its flow's timeNextPacket, and the flow's list
// placement are all restored exactly, so a subsequent Dequeue observes
// the same packet and flow state as if Peek had not been called. Global
// counters that Dequeue updates along the way (e.g. ce_mark, throttled,
// unthrottle_latency_ns) are not rolled back, since dequeue's decision
// to move a flow for starvation prevention or to promote a co-flow is
// itself meaningful scheduler progress, not pure observation — Peek
// only undoes the one packet's removal and its own credit/pacing
// accounting. This matches how a host is expected to use Peek: query
// the next packet's size/flow without resending stats, as part of
// rearming the watchdog.
func (s *Scheduler) Peek() *Packet {
	p, f, priorCredit, priorTimeNextPacket := s.dequeueForPeek()
	if p == nil {
		return nil
	}
	if f == nil {
		// control-plane bypass packet: requeue onto the internal flow's
		// FIFO instead of a per-flow one. The internal flow never uses
		// credit or pacing, so the zero values doDequeue returned for
		// them are inert.
		f = s.internal
	}
	s.requeueFront(f, *p, priorCredit, priorTimeNextPacket)
	cp := *p
	return &cp
}

// Reset purges all flows and packets. All queued packets are considered
// released to the host's free path; this package holds no references
// to packet payloads beyond the Packet struct itself, so there is
// nothing further to release here.
func (s *Scheduler) Reset() {
	s.table.Reset()
	s.rr = RRLists{}
	s.throttle = ThrottleTree{}
	s.watchdog.Cancel()
	s.internal = newFlowEntry(FlowKey{kind: flowKeyInternal})
	s.internal.isInternal = true
	s.qlen = 0
	s.pFlowID = [2]*uint32{}
	s.ucounter = 0
	s.flipflag = false
	s.stats = Stats{}
	s.logf("scheduler reset")
}

// Change hot-updates parameters. A change to BucketsLog triggers an
// immediate FlowTable resize; other fields take effect on the next
// Enqueue/Dequeue.
func (s *Scheduler) Change(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.BucketsLog != s.cfg.BucketsLog {
		s.table.Resize(cfg.BucketsLog, s.clk.Refresh())
	}
	if cfg.F1Source != s.cfg.F1Source || cfg.F2Source != s.cfg.F2Source ||
		cfg.F1Dest != s.cfg.F1Dest || cfg.F2Dest != s.cfg.F2Dest {
		// new co-flow ports: forget ids learned from the old ones.
		s.pFlowID = [2]*uint32{}
	}
	s.cfg = cfg
	s.logf("scheduler configuration changed", "buckets_log", cfg.BucketsLog)
	return nil
}

// Destroy releases all resources held by the scheduler. For a pure-Go,
// GC-managed implementation this reduces to Reset plus cancelling the
// watchdog; it exists as a distinct operation so hosts have an explicit
// point to stop calling into this instance.
func (s *Scheduler) Destroy() {
	s.Reset()
	s.logf("scheduler destroyed")
}

// Dump returns the effective configuration.
func (s *Scheduler) Dump() Config { return s.cfg }

// DumpStats returns a snapshot of the current counters.
func (s *Scheduler) DumpStats() Stats {
	st := s.stats
	st.Flows = s.table.Count()
	st.InactiveFlows = s.table.Inactive()
	st.ThrottledFlows = s.throttle.len()
	st.TimeNextDelayedFlow = s.throttle.timeNextDelayedFlow()
	return st
}
