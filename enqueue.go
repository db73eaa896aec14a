// SPDX-License-Identifier: GPL-3.0
package fqco

// Enqueue admits p into the scheduler, classifying it into a flow and
// applying the global/per-flow limits and horizon policing.
func (s *Scheduler) Enqueue(p *Packet) (Outcome, error) {
	now := s.clk.Refresh()

	if s.qlen >= int(s.cfg.Plimit) {
		s.stats.TailDrops++
		return Outcome{Dropped: true, Reason: DropTailLimit}, nil
	}

	if p.Tstamp == 0 {
		p.TimeToSend = now
	} else {
		p.TimeToSend = p.Tstamp
		horizon := Clock(s.cfg.Horizon)
		if p.Tstamp > now+horizon {
			now = s.clk.Refresh()
			if p.Tstamp > now+horizon {
				if s.cfg.HorizonDrop {
					s.stats.HorizonDrops++
					return Outcome{Dropped: true, Reason: DropHorizon}, nil
				}
				p.TimeToSend = now + horizon
				s.stats.HorizonCaps++
			}
		}
	}

	flow, err := s.classify(p)
	if err != nil {
		// AllocError: fall back to the internal flow, best effort; the
		// packet is still queued, not dropped.
		flow = s.internal
	}

	if !flow.isInternal && flow.qlen >= int(s.cfg.FlowPlimit) {
		s.stats.FlowsPlimitDrops++
		return Outcome{Dropped: true, Reason: DropFlowLimit}, nil
	}

	wasDetached := flow.state == flowDetached
	if wasDetached && !flow.isInternal {
		s.table.MarkActive()
		if now-flow.detachedAt >= Clock(s.cfg.FlowRefillDelay) {
			if flow.credit < int64(s.cfg.Quantum) {
				flow.credit = int64(s.cfg.Quantum)
			}
		}
		if s.isCoFlow(flow) {
			flow.state = flowOnCo
			s.rr.Co.pushTail(flow)
		} else {
			flow.state = flowOnNew
			s.rr.New.pushTail(flow)
		}
	}

	flow.pushBack(*p)
	s.qlen++
	if p.Prio == PriorityControl {
		s.stats.HighPrioPackets++
	}

	return Success, nil
}
