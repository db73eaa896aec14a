// SPDX-License-Identifier: GPL-3.0
package fqco

import "testing"

func TestRRListFIFO(t *testing.T) {
	var l rrList
	if !l.empty() {
		t.Fatalf("new list should be empty")
	}
	a, b, c := newFlowEntry(key(1)), newFlowEntry(key(2)), newFlowEntry(key(3))
	l.pushTail(a)
	l.pushTail(b)
	l.pushTail(c)

	for _, want := range []*FlowEntry{a, b, c} {
		got := l.popHead()
		if got != want {
			t.Errorf("popHead() = %v, want %v", got.key, want.key)
		}
	}
	if !l.empty() {
		t.Errorf("list should be empty after draining")
	}
	if l.popHead() != nil {
		t.Errorf("popHead() on empty list should return nil")
	}
}
