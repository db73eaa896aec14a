// SPDX-License-Identifier: GPL-3.0
package fqco

// rrList is a singly-linked FIFO of flows with O(1) push-tail/pop-head,
// the same shape a kernel qdisc's fq_flow_head lists use.
type rrList struct {
	first, last *FlowEntry
}

func (l *rrList) empty() bool { return l.first == nil }

// pushTail appends f. The caller must ensure f is not already linked
// into any list.
func (l *rrList) pushTail(f *FlowEntry) {
	f.rrNext = nil
	if l.last == nil {
		l.first = f
	} else {
		l.last.rrNext = f
	}
	l.last = f
}

// popHead removes and returns the first flow, or nil if empty.
func (l *rrList) popHead() *FlowEntry {
	f := l.first
	if f == nil {
		return nil
	}
	l.first = f.rrNext
	if l.first == nil {
		l.last = nil
	}
	f.rrNext = nil
	return f
}

// RRLists holds the three round-robin queues used by Dequeue: new
// flows, old flows and co-flows.
type RRLists struct {
	New, Old, Co rrList
}
