// SPDX-License-Identifier: GPL-3.0
package fqco

// classify maps p to the FlowEntry it should be enqueued into, handling
// the control-plane bypass, orphan/listener/closed-endpoint synthetic
// keys, and endpoint-reuse credit reset.
func (s *Scheduler) classify(p *Packet) (*FlowEntry, error) {
	if p.Prio == PriorityControl {
		return s.internal, nil
	}

	var key FlowKey
	owned := p.Endpoint != nil && p.Endpoint.State == EndpointActive
	if owned {
		key = endpointKey(p.Endpoint)
	} else {
		key = syntheticKey(p.HeaderHash, s.cfg.OrphanMask)
		p.Endpoint = nil // detach from any owner: orphan path keys by hash only
	}

	f, created, gcd := s.table.LookupOrInsert(key, s.clk.Now(), int64(s.cfg.InitialQuantum))
	s.stats.GCFlows += uint64(gcd)
	if f == nil {
		s.stats.AllocationErrors++
		return s.internal, ErrAlloc
	}

	if owned {
		if !created && f.socketHash != p.Endpoint.Hash {
			// Endpoint was reused for a new flow: reset its flow state.
			f.credit = int64(s.cfg.InitialQuantum)
			f.socketHash = p.Endpoint.Hash
			f.timeNextPacket = 0
			if f.state == flowThrottled {
				s.throttle.removeFlow(f)
				f.state = flowOnOld
				s.rr.Old.pushTail(f)
			}
		} else if created {
			f.socketHash = p.Endpoint.Hash
		}
	}

	s.learnCoFlowIDs(p, f)

	return f, nil
}

// learnCoFlowIDs records a co-flow identifier the first time a packet's
// source or destination port matches one of the configured co-flow
// ports (destination port is checked too, since f1_dest/f2_dest would
// otherwise go unused). coHash is refreshed from the packet's header
// hash on every enqueue, kept deliberately separate from socketHash
// (see DESIGN.md's flow.go entry: conflating the two collides
// destructively, so this implementation keeps them apart).
func (s *Scheduler) learnCoFlowIDs(p *Packet, f *FlowEntry) {
	f.coHash = p.HeaderHash & s.cfg.OrphanMask

	if s.cfg.F1Source != 0 && s.pFlowID[0] == nil && p.SourcePort == s.cfg.F1Source {
		h := f.coHash
		s.pFlowID[0] = &h
	}
	if s.cfg.F2Source != 0 && s.pFlowID[1] == nil && p.SourcePort == s.cfg.F2Source {
		h := f.coHash
		s.pFlowID[1] = &h
	}
	if s.cfg.F1Dest != 0 && s.pFlowID[0] == nil && p.DestPort == s.cfg.F1Dest {
		h := f.coHash
		s.pFlowID[0] = &h
	}
	if s.cfg.F2Dest != 0 && s.pFlowID[1] == nil && p.DestPort == s.cfg.F2Dest {
		h := f.coHash
		s.pFlowID[1] = &h
	}
}

// isCoFlow reports whether f's learned co-hash matches either
// configured co-flow identifier.
func (s *Scheduler) isCoFlow(f *FlowEntry) bool {
	for _, id := range s.pFlowID {
		if id != nil && *id == f.coHash {
			return true
		}
	}
	return false
}
