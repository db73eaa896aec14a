// SPDX-License-Identifier: GPL-3.0
package fqco

import "container/heap"

// edtHeap holds packets whose TimeToSend arrived out of order relative
// to the flow's FIFO tail. It implements container/heap.Interface
// ordered by TimeToSend.
type edtHeap []Packet

func (h edtHeap) Len() int            { return len(h) }
func (h edtHeap) Less(i, j int) bool  { return h[i].TimeToSend < h[j].TimeToSend }
func (h edtHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *edtHeap) Push(x any)         { *h = append(*h, x.(Packet)) }
func (h *edtHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// peekMin returns the earliest packet without removing it.
func (h edtHeap) peekMin() (Packet, bool) {
	if len(h) == 0 {
		return Packet{}, false
	}
	return h[0], true
}

// insert adds a packet in heap order.
func (h *edtHeap) insert(p Packet) { heap.Push(h, p) }

// popMin removes and returns the earliest packet.
func (h *edtHeap) popMin() Packet { return heap.Pop(h).(Packet) }
