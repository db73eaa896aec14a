// SPDX-License-Identifier: GPL-3.0
package fqco

import "go.uber.org/zap"

// newNopLogger returns a logger that discards everything, used when a
// Scheduler is constructed without an explicit logger. A single logf
// indirection point backed by a structured sugared zap logger so a host
// process can attach its own core.
func newNopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// logf emits a scheduler-lifecycle message at Info level. Never called
// from Enqueue/Dequeue's hot path; those must never suspend or block.
func (s *Scheduler) logf(msg string, kv ...any) {
	s.log.Infow(msg, kv...)
}
