// SPDX-License-Identifier: GPL-3.0
package fqco

import "testing"

func TestFlowTableLookupOrInsertCreatesOnce(t *testing.T) {
	tb := NewFlowTable(4)
	k := key(42)

	f1, created1, _ := tb.LookupOrInsert(k, 0, 100)
	if !created1 {
		t.Fatalf("first lookup should create the flow")
	}
	f2, created2, _ := tb.LookupOrInsert(k, 0, 100)
	if created2 {
		t.Errorf("second lookup should find the existing flow")
	}
	if f1 != f2 {
		t.Errorf("lookups for the same key should return the same *FlowEntry")
	}
	if tb.Count() != 1 {
		t.Errorf("Count() = %d, want 1", tb.Count())
	}
}

func TestFlowTableMarkActiveInactive(t *testing.T) {
	tb := NewFlowTable(4)
	tb.LookupOrInsert(key(1), 0, 100)
	if tb.Inactive() != 1 {
		t.Fatalf("new detached flow should count as inactive")
	}
	tb.MarkActive()
	if tb.Inactive() != 0 {
		t.Errorf("Inactive() after MarkActive = %d, want 0", tb.Inactive())
	}
	tb.MarkInactive()
	if tb.Inactive() != 1 {
		t.Errorf("Inactive() after MarkInactive = %d, want 1", tb.Inactive())
	}
}

func TestFlowTableGCCollectsAgedDetachedFlows(t *testing.T) {
	tb := NewFlowTable(1) // 2 buckets, so GC triggers at a small count
	const n = 8
	for i := uint64(0); i < n; i++ {
		tb.LookupOrInsert(key(i), 0, 100)
		// all flows are created detached and remain inactive.
	}
	if tb.Count() != n || tb.Inactive() != n {
		t.Fatalf("count=%d inactive=%d, want %d/%d", tb.Count(), tb.Inactive(), n, n)
	}

	// age every flow past GCAge, then run maybeGC directly against each
	// bucket (rather than relying on a probe key happening to hash into
	// the bucket that holds aged entries) to deterministically exercise
	// reclamation.
	future := Clock(GCAge) + 1
	noMatch := FlowKey{kind: flowKeyInternal, id: ^uint64(0)}
	totalGC := 0
	for i := range tb.buckets {
		totalGC += tb.maybeGC(&tb.buckets[i], noMatch, future)
	}
	if totalGC == 0 {
		t.Errorf("expected maybeGC to reclaim at least one aged, detached flow")
	}
	if tb.Count() != n-totalGC {
		t.Errorf("Count() = %d, want %d after reclaiming %d flows", tb.Count(), n-totalGC, totalGC)
	}
}

func TestFlowTableResizeRehashesLiveFlows(t *testing.T) {
	tb := NewFlowTable(2)
	for i := uint64(0); i < 6; i++ {
		f, _, _ := tb.LookupOrInsert(key(i), 0, 100)
		f.state = flowOnNew // active, not GC-eligible
	}
	tb.Resize(4, 0)
	if tb.Count() != 6 {
		t.Fatalf("Count() after resize = %d, want 6", tb.Count())
	}
	for i := uint64(0); i < 6; i++ {
		if tb.bucketFor(key(i)).find(key(i)) == nil {
			t.Errorf("flow %d missing after resize", i)
		}
	}
}

func TestFlowTableReset(t *testing.T) {
	tb := NewFlowTable(2)
	tb.LookupOrInsert(key(1), 0, 100)
	tb.Reset()
	if tb.Count() != 0 || tb.Inactive() != 0 {
		t.Errorf("Reset() left count=%d inactive=%d, want 0/0", tb.Count(), tb.Inactive())
	}
}
