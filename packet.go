// SPDX-License-Identifier: GPL-3.0
package fqco

// Priority is the packet priority class. PriorityControl is the
// control-plane bypass class handled by the internal sentinel flow.
type Priority uint8

const (
	PriorityNormal  Priority = 0
	PriorityControl Priority = 7
)

// EndpointState describes the owning socket's lifecycle state, as far as
// the scheduler cares: listener and closed endpoints are treated as
// orphans, same as a packet with no endpoint at all.
type EndpointState uint8

const (
	EndpointActive EndpointState = iota
	EndpointListener
	EndpointClosed
)

// Endpoint is the host-owned socket identity a Packet may carry. The core
// never dereferences fields beyond these; everything else (the real
// socket, its buffers) lives in the host.
type Endpoint struct {
	// ID uniquely identifies this endpoint instance. Real endpoint
	// pointers have their low bit clear, and callers pass even IDs by the
	// same convention; endpointKey uses the ID unchanged.
	ID uint64
	// Hash is the endpoint's pacing/identity hash snapshot
	// (sk_hash in sch_fq.c); used to detect endpoint reuse.
	Hash uint32
	// PacingRate is the endpoint-suggested pacing rate in bytes/sec, or 0
	// if the endpoint does not request one.
	PacingRate uint64
	State      EndpointState
}

// Packet is the opaque payload the core schedules. Beyond the fields
// below it carries no meaning to the scheduler; delivery of the payload
// itself and drop/free notification are host concerns.
type Packet struct {
	// Len is the on-wire length in bytes, used for credit accounting and
	// pacing delay computation.
	Len uint32
	// Tstamp is the wall-clock earliest-send time requested by the
	// sender, or zero meaning "as soon as possible".
	Tstamp Clock
	// Prio is the packet's priority class.
	Prio Priority
	// Endpoint is the owning socket, or nil for orphaned/unowned packets.
	Endpoint *Endpoint
	// HeaderHash is a hash of the packet's header 4-tuple, used as the
	// fallback flow key when Endpoint is nil.
	HeaderHash uint32
	// SourcePort and DestPort are used only to learn co-flow identifiers;
	// the core does not otherwise interpret transport headers.
	SourcePort uint16
	DestPort   uint16

	// TimeToSend is the scheduler-owned annotation set during Enqueue.
	// Do not set this directly; it is computed by Scheduler.Enqueue from
	// Tstamp and the admission horizon policy.
	TimeToSend Clock
	// CE is set by Dequeue when the packet's departure was delayed
	// beyond the configured congestion-marking threshold.
	CE bool
}

// flowKeyKind distinguishes an endpoint-owned key from a synthetic
// header-hash key, an explicit tagged value in place of the low-bit
// pointer tagging a kernel implementation would use.
type flowKeyKind uint8

const (
	flowKeyEndpoint flowKeyKind = iota
	flowKeySynthetic
	flowKeyInternal
)

// FlowKey identifies a FlowEntry. Endpoint-owned flows carry the
// endpoint's ID; orphaned/unowned packets carry a synthetic key derived
// from the header hash.
type FlowKey struct {
	kind flowKeyKind
	id   uint64
}

// Less orders keys for the per-bucket tree, comparing as an unsigned
// integer.
func (k FlowKey) Less(o FlowKey) bool {
	if k.kind != o.kind {
		return k.kind < o.kind
	}
	return k.id < o.id
}

// Equal reports whether two keys identify the same flow.
func (k FlowKey) Equal(o FlowKey) bool {
	return k.kind == o.kind && k.id == o.id
}

func endpointKey(e *Endpoint) FlowKey {
	return FlowKey{kind: flowKeyEndpoint, id: e.ID}
}

// syntheticKey builds the orphan key from a masked header hash. The low
// bit of the integer key is forced to 1, preserving the `(hash << 1) | 1`
// derivation a pointer-tagging implementation would need for
// disambiguation, even though this implementation tags keys explicitly
// rather than aliasing pointers.
func syntheticKey(hash, orphanMask uint32) FlowKey {
	masked := hash & orphanMask
	return FlowKey{kind: flowKeySynthetic, id: (uint64(masked) << 1) | 1}
}
