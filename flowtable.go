// SPDX-License-Identifier: GPL-3.0
package fqco

import "time"

// GCMax is the maximum number of detached, aged-out flows collected in a
// single opportunistic GC pass.
const GCMax = 8

// GCAge is the minimum detached duration before a flow becomes a GC
// candidate.
const GCAge = 3 * time.Second

// FlowTable is a hash-bucketed array of ordered trees keyed by flow
// identity, the same shape as a kernel qdisc's per-bucket array.
type FlowTable struct {
	buckets    []flowTree
	logBuckets uint32
	count      int // total live flows across all buckets
	inactive   int // subset of count that are detached
}

// NewFlowTable allocates 2^logBuckets empty buckets.
func NewFlowTable(logBuckets uint32) *FlowTable {
	return &FlowTable{
		buckets:    make([]flowTree, 1<<logBuckets),
		logBuckets: logBuckets,
	}
}

// hashPtr is a multiplicative hash truncated to logBuckets bits. It
// mixes both the key kind and id so endpoint and synthetic keys
// spread independently across buckets.
func hashPtr(key FlowKey, logBuckets uint32) uint32 {
	const multiplier = 2654435761 // Knuth's multiplicative hash constant
	v := key.id*0x9E3779B97F4A7C15 + uint64(key.kind)
	h := uint32(v>>32) ^ uint32(v)
	h *= multiplier
	shift := 32 - logBuckets
	return h >> shift
}

func (t *FlowTable) bucketFor(key FlowKey) *flowTree {
	return &t.buckets[hashPtr(key, t.logBuckets)]
}

// Count returns the total number of live (non-collected) flows.
func (t *FlowTable) Count() int { return t.count }

// Inactive returns the number of detached flows currently tracked.
func (t *FlowTable) Inactive() int { return t.inactive }

// MarkActive records that a previously-detached flow became active
// again.
func (t *FlowTable) MarkActive() {
	if t.inactive > 0 {
		t.inactive--
	}
}

// MarkInactive records that a flow just became detached.
func (t *FlowTable) MarkInactive() {
	t.inactive++
}

// LookupOrInsert returns the existing FlowEntry for key, or creates and
// inserts a new detached one. now is used both to seed a new entry's
// detachedAt and to drive opportunistic GC. gcFlows counts
// any entries collected during the lookup's bucket walk.
func (t *FlowTable) LookupOrInsert(key FlowKey, now Clock, initialQuantum int64) (f *FlowEntry, created bool, gcFlows int) {
	bucket := t.bucketFor(key)

	gcFlows = t.maybeGC(bucket, key, now)

	if existing := bucket.find(key); existing != nil {
		return existing, false, gcFlows
	}

	f = newFlowEntry(key)
	f.state = flowDetached
	f.detachedAt = now
	f.credit = initialQuantum
	bucket.insert(f)
	t.count++
	t.inactive++
	assertf(bucket.find(key) == f, "flow %v not found in its own bucket immediately after insert", key)
	return f, true, gcFlows
}

// maybeGC opportunistically collects up to GCMax detached, aged-out
// entries from bucket, stopping early if it encounters probeKey. It
// only runs at all when total flows >= 2x buckets and more than half of
// them are inactive, and it never walks more than the one bucket
// already being traversed for the lookup.
func (t *FlowTable) maybeGC(bucket *flowTree, probeKey FlowKey, now Clock) int {
	nBuckets := len(t.buckets)
	if t.count < 2*nBuckets || t.inactive*2 <= t.count {
		return 0
	}

	var candidates []FlowKey
	bucket.walk(func(f *FlowEntry) bool {
		if len(candidates) >= GCMax {
			return false
		}
		if f.key.Equal(probeKey) {
			return false // stop at the probe key: it's not a GC candidate
		}
		if f.state == flowDetached && now-f.detachedAt >= Clock(GCAge) {
			candidates = append(candidates, f.key)
		}
		return true
	})

	for _, k := range candidates {
		bucket.remove(k)
		t.count--
		t.inactive--
	}
	return len(candidates)
}

// Resize reallocates the bucket array at a new size and rehashes every
// live entry into it. GC candidates (detached, aged past GCAge)
// encountered during the rehash are dropped rather than carried over.
func (t *FlowTable) Resize(newLog uint32, now Clock) {
	next := make([]flowTree, 1<<newLog)
	var entries []*FlowEntry
	for i := range t.buckets {
		t.buckets[i].walk(func(f *FlowEntry) bool {
			entries = append(entries, f)
			return true
		})
	}

	t.buckets = next
	t.logBuckets = newLog
	t.count, t.inactive = 0, 0

	for _, f := range entries {
		if f.state == flowDetached && now-f.detachedAt >= Clock(GCAge) {
			continue // dropped as a GC candidate during resize
		}
		t.buckets[hashPtr(f.key, newLog)].insert(f)
		t.count++
		if f.state == flowDetached {
			t.inactive++
		}
	}
}

// Reset empties the table entirely.
func (t *FlowTable) Reset() {
	for i := range t.buckets {
		t.buckets[i] = flowTree{}
	}
	t.count, t.inactive = 0, 0
}
