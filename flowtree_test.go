// SPDX-License-Identifier: GPL-3.0
package fqco

import "testing"

func key(id uint64) FlowKey { return FlowKey{kind: flowKeyEndpoint, id: id} }

func TestFlowTreeInsertFindRemove(t *testing.T) {
	var tr flowTree
	ids := []uint64{5, 3, 8, 1, 4, 7, 9}
	for _, id := range ids {
		tr.insert(newFlowEntry(key(id)))
	}
	if tr.n != len(ids) {
		t.Fatalf("n = %d, want %d", tr.n, len(ids))
	}
	for _, id := range ids {
		if tr.find(key(id)) == nil {
			t.Errorf("find(%d) = nil, want a node", id)
		}
	}
	if tr.find(key(99)) != nil {
		t.Errorf("find(99) should be nil")
	}

	tr.remove(key(3))
	if tr.n != len(ids)-1 {
		t.Fatalf("n after remove = %d, want %d", tr.n, len(ids)-1)
	}
	if tr.find(key(3)) != nil {
		t.Errorf("find(3) after remove should be nil")
	}
	// removing a non-member key must not decrement n again.
	tr.remove(key(3))
	if tr.n != len(ids)-1 {
		t.Errorf("n after redundant remove = %d, want %d", tr.n, len(ids)-1)
	}
}

func TestFlowTreeWalkAscending(t *testing.T) {
	var tr flowTree
	for _, id := range []uint64{5, 3, 8, 1, 4, 7, 9} {
		tr.insert(newFlowEntry(key(id)))
	}
	var got []uint64
	tr.walk(func(f *FlowEntry) bool {
		got = append(got, f.key.id)
		return true
	})
	want := []uint64{1, 3, 4, 5, 7, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("walk produced %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("walk[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFlowTreeWalkEarlyStop(t *testing.T) {
	var tr flowTree
	for _, id := range []uint64{1, 2, 3, 4, 5} {
		tr.insert(newFlowEntry(key(id)))
	}
	n := 0
	tr.walk(func(f *FlowEntry) bool {
		n++
		return f.key.id != 3
	})
	if n != 3 {
		t.Errorf("walk visited %d entries before stopping, want 3", n)
	}
}

func TestFlowTreeRemoveTwoChildNode(t *testing.T) {
	var tr flowTree
	for _, id := range []uint64{4, 2, 6, 1, 3, 5, 7} {
		tr.insert(newFlowEntry(key(id)))
	}
	tr.remove(key(4)) // root, has two children
	var got []uint64
	tr.walk(func(f *FlowEntry) bool {
		got = append(got, f.key.id)
		return true
	})
	want := []uint64{1, 2, 3, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("walk after removing root = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("walk[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
