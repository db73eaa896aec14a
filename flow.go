// SPDX-License-Identifier: GPL-3.0
package fqco

// flowState is an explicit state tag, used instead of the low-bit-tagged
// age/tail aliasing and THROTTLED sentinel pointer a kernel qdisc would
// use (DESIGN.md Open Question 3).
type flowState uint8

const (
	flowDetached flowState = iota
	flowOnNew
	flowOnOld
	flowOnCo
	flowThrottled
)

// packetNode is one link in a FlowEntry's FIFO chain.
type packetNode struct {
	pkt  Packet
	next *packetNode
}

// FlowEntry represents one scheduling flow: either an endpoint's packets
// or an orphan/header-hash bucket of packets.
type FlowEntry struct {
	key        FlowKey
	socketHash uint32
	// coHash is the header-hash-derived identifier tested against the
	// scheduler's learned co-flow ids; see classifier.go.
	coHash uint32

	head, tail *packetNode // FIFO, non-decreasing TimeToSend (fast path)
	edt        edtHeap     // out-of-order packets

	qlen int

	credit         int64
	timeNextPacket Clock

	state      flowState
	detachedAt Clock

	// rrNext links this flow into whichever RRLists queue currently
	// holds it; nil when not on a list.
	rrNext *FlowEntry

	// throttleIdx is this flow's index in the ThrottleTree heap, or -1
	// when not throttled. Needed for heap.Fix/heap.Remove.
	throttleIdx int

	// bucket tree linkage (flowtree.go).
	treeLeft, treeRight *FlowEntry

	// isInternal marks the scheduler-wide control-plane bypass flow; it
	// is never admitted to any RR list, never garbage collected, and
	// bypasses flow_plimit.
	isInternal bool
}

func newFlowEntry(key FlowKey) *FlowEntry {
	return &FlowEntry{
		key:         key,
		state:       flowDetached,
		throttleIdx: -1,
	}
}

// peek returns the earlier of the FIFO head and the EDT heap's minimum,
// without removing it.
func (f *FlowEntry) peek() (Packet, bool) {
	var headPkt, edtPkt Packet
	haveHead := f.head != nil
	if haveHead {
		headPkt = f.head.pkt
	}
	edtPkt, haveEDT := f.edt.peekMin()
	switch {
	case haveHead && haveEDT:
		if edtPkt.TimeToSend < headPkt.TimeToSend {
			return edtPkt, true
		}
		return headPkt, true
	case haveHead:
		return headPkt, true
	case haveEDT:
		return edtPkt, true
	default:
		return Packet{}, false
	}
}

// pushBack inserts a packet into the flow in TimeToSend order: appended
// to the FIFO tail on the fast path, or into the EDT heap when it
// arrived out of order relative to the tail.
func (f *FlowEntry) pushBack(p Packet) {
	if f.tail == nil || p.TimeToSend >= f.tail.pkt.TimeToSend {
		n := &packetNode{pkt: p}
		if f.tail == nil {
			f.head = n
		} else {
			f.tail.next = n
		}
		f.tail = n
	} else {
		f.edt.insert(p)
	}
	f.qlen++
}

// popFront removes and returns the earlier of the FIFO head and the EDT
// minimum.
func (f *FlowEntry) popFront() (Packet, bool) {
	var haveHead, haveEDT bool
	var headPkt, edtPkt Packet
	if f.head != nil {
		headPkt = f.head.pkt
		haveHead = true
	}
	edtPkt, haveEDT = f.edt.peekMin()

	switch {
	case !haveHead && !haveEDT:
		return Packet{}, false
	case haveHead && (!haveEDT || headPkt.TimeToSend <= edtPkt.TimeToSend):
		f.head = f.head.next
		if f.head == nil {
			f.tail = nil
		}
		f.qlen--
		assertf(f.qlen >= 0, "flow %v qlen went negative after FIFO pop", f.key)
		return headPkt, true
	default:
		p := f.edt.popMin()
		f.qlen--
		assertf(f.qlen >= 0, "flow %v qlen went negative after EDT pop", f.key)
		return p, true
	}
}

// isEmpty reports whether the flow has no queued packets.
func (f *FlowEntry) isEmpty() bool { return f.qlen == 0 }
