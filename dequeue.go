// SPDX-License-Identifier: GPL-3.0
package fqco

// Dequeue returns the next packet to transmit, or nil if nothing is
// currently eligible. When it returns nil, the watchdog has been
// (re)armed for the earliest throttled flow's eligible time, if any
// flow is throttled.
func (s *Scheduler) Dequeue() *Packet {
	p, _, _, _ := s.doDequeue()
	return p
}

// dequeueForPeek runs the same algorithm as Dequeue but also returns the
// owning flow and its pre-deduction credit and pre-pacing
// timeNextPacket, so Peek can restore the packet and that state
// (scheduler.go's documented Peek semantics).
func (s *Scheduler) dequeueForPeek() (*Packet, *FlowEntry, int64, Clock) {
	return s.doDequeue()
}

// requeueFront undoes the removal of p from f: the packet is prepended
// to f's FIFO head (so it is again the next packet peek()/popFront()
// return — correct because p was the minimum of head/edt at the moment
// it was removed and nothing else was inserted since), f's qlen and the
// global qlen are restored, and f's credit/timeNextPacket are rolled
// back to their values immediately before this dequeue touched them.
// See scheduler.go's Peek doc comment for what is and is not rolled
// back.
func (s *Scheduler) requeueFront(f *FlowEntry, p Packet, priorCredit int64, priorTimeNextPacket Clock) {
	f.head = &packetNode{pkt: p, next: f.head}
	if f.tail == nil {
		f.tail = f.head
	}
	f.qlen++
	s.qlen++
	f.credit = priorCredit
	f.timeNextPacket = priorTimeNextPacket
}

// doDequeue runs the full dequeue algorithm: control-plane bypass,
// throttle-tree drain, round-robin list selection with co-flow
// promotion and flip-flop breach/relief bookkeeping, credit gate,
// pacing-horizon gate, congestion marking, and rate pacing. It returns
// the packet (or nil), the flow it came from (nil for the internal
// bypass case or when nothing was returned), that flow's credit value
// immediately before the rate-accounting deduction, and its
// timeNextPacket immediately before any pacing update (all three
// trailing values exist for Peek's bookkeeping; unused by plain
// Dequeue).
func (s *Scheduler) doDequeue() (*Packet, *FlowEntry, int64, Clock) {
	// control-plane bypass.
	if ip, ok := s.internal.popFront(); ok {
		s.qlen--
		return &ip, nil, 0, 0
	}

	now := s.clk.Refresh()
	s.throttle.removeDue(now, func(f *FlowEntry) {
		s.stats.updateUnthrottleLatency(float64(now - f.timeNextPacket))
		f.state = flowOnOld
		s.rr.Old.pushTail(f)
	})

	for {
		head, list := s.selectList()
		if head == nil {
			at := s.throttle.timeNextDelayedFlow()
			if at != ClockInfinity {
				s.watchdog.Schedule(at + Clock(s.cfg.TimerSlack))
			}
			return nil, nil, 0, 0
		}

		f := head.first

		// co-flow promotion: a flow whose learned co-hash matches moves
		// onto the co list and counts against the breach threshold.
		if s.isCoFlow(f) && list != coList {
			s.removeFromList(list, f)
			f.state = flowOnCo
			s.rr.Co.pushTail(f)
			s.ucounter++
			continue
		}

		// breach and relief: once enough co-flow promotions have been
		// counted, flip to serving co_flows preferentially; relief
		// clears the flip once co_flows service has counted ucounter
		// back down to the relief count.
		if s.ucounter == s.cfg.CoBreachCount && list != coList {
			s.flipflag = true
			continue
		}
		if s.ucounter == s.cfg.CoReliefCount && list == coList {
			s.flipflag = false
			continue
		}

		if s.flipflag && list == coList {
			s.ucounter--
		}

		// credit gate: out of credit, refill by one quantum and demote
		// to old_flows for its next turn.
		if f.credit <= 0 {
			f.credit += int64(s.cfg.Quantum)
			head.popHead()
			f.state = flowOnOld
			s.rr.Old.pushTail(f)
			continue
		}

		p, ok := f.peek()
		if !ok {
			// flow drained: move to old_flows once more if it still has
			// a chance there, else detach it.
			head.popHead()
			if (list == newList || list == coList) && !s.rr.Old.empty() {
				f.state = flowOnOld
				s.rr.Old.pushTail(f)
			} else {
				f.state = flowDetached
				f.detachedAt = now
				s.table.MarkInactive()
			}
			continue
		}

		// pacing horizon: the packet isn't eligible to leave yet, park
		// the flow in the throttle tree until it is.
		sendAt := p.TimeToSend
		if f.timeNextPacket > sendAt {
			sendAt = f.timeNextPacket
		}
		if now < sendAt {
			head.popHead()
			f.timeNextPacket = sendAt
			s.throttle.insert(f)
			s.stats.Throttled++
			continue
		}

		// congestion exceedance marking.
		if now-sendAt > Clock(s.cfg.CeThreshold) {
			p.CE = true
			s.stats.CEMark++
		}

		out, _ := f.popFront()
		out.CE = p.CE
		s.qlen--

		priorCredit := f.credit
		priorTimeNextPacket := f.timeNextPacket

		// deduct credit by the packet's real length; the quantum floor
		// below applies only to the rate computation, not here, since
		// credit and pacing delay are accounted separately.
		f.credit -= int64(out.Len)

		if s.cfg.RateEnable {
			s.applyPacing(f, &out, now)
		}

		return &out, f, priorCredit, priorTimeNextPacket
	}
}

// applyPacing computes the next eligible send time for f after out has
// been sent. The endpoint-pacing-rate min, the low_rate_threshold
// zero-credit rule, and the quantum-floored length/credit-skip only
// apply when the packet carried no wall-clock tstamp; a packet with an
// explicit earliest-departure-time has its delay computed from
// flow_max_rate and its real length only.
func (s *Scheduler) applyPacing(f *FlowEntry, p *Packet, now Clock) {
	rate := s.cfg.FlowMaxRate
	length := uint64(p.Len)

	if p.Tstamp == 0 {
		if p.Endpoint != nil && p.Endpoint.PacingRate > 0 && (rate == 0 || p.Endpoint.PacingRate < rate) {
			rate = p.Endpoint.PacingRate
		}
		if rate != 0 && rate <= uint64(s.cfg.LowRateThreshold) {
			f.credit = 0
		} else {
			if length < uint64(s.cfg.Quantum) {
				length = uint64(s.cfg.Quantum)
			}
			if f.credit > 0 {
				return
			}
		}
	}

	if rate == 0 {
		return // unlimited: no pacing delay
	}

	const nanosPerSec = 1e9
	delay := Clock(length * nanosPerSec / rate)
	if delay > Clock(oneSecond) {
		delay = Clock(oneSecond)
		s.stats.PktsTooLong++
	}

	if f.timeNextPacket > 0 {
		drift := now - f.timeNextPacket
		half := delay / 2
		if drift < half {
			if drift > 0 {
				delay -= drift
			}
		} else {
			delay -= half
		}
	}
	f.timeNextPacket = now + delay
}

const oneSecond = 1000000000 // ns

type listID uint8

const (
	newList listID = iota
	oldList
	coList
)

// selectList applies the flip-flop policy: start at co_flows if
// flipflag is set, else new_flows; fall through to new_flows then
// old_flows if the chosen list is empty.
func (s *Scheduler) selectList() (*rrList, listID) {
	if s.flipflag && !s.rr.Co.empty() {
		return &s.rr.Co, coList
	}
	if !s.rr.New.empty() {
		return &s.rr.New, newList
	}
	if !s.rr.Old.empty() {
		return &s.rr.Old, oldList
	}
	return nil, newList
}

// removeFromList detaches f from whichever of the three lists list
// identifies. Used only for the co-flow promotion path, where f is
// always the current list's head.
func (s *Scheduler) removeFromList(list listID, f *FlowEntry) {
	switch list {
	case newList:
		s.rr.New.popHead()
	case oldList:
		s.rr.Old.popHead()
	case coList:
		s.rr.Co.popHead()
	}
	_ = f
}
