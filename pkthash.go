// SPDX-License-Identifier: GPL-3.0
package fqco

import "hash/fnv"

// HashFourTuple computes the FNV-1a hash of an IPv4/TCP-style 4-tuple,
// for use as Packet.HeaderHash on the orphan/unowned path. The core
// itself never parses wire bytes; this helper exists so callers that do
// have raw headers (cmd/fqcosim, tests) can derive a real hash
// distribution instead of hand-picking integers.
func HashFourTuple(srcIP, dstIP [4]byte, srcPort, dstPort uint16, proto uint8) uint32 {
	h := fnv.New32a()
	h.Write(srcIP[:])
	h.Write(dstIP[:])
	var ports [4]byte
	ports[0] = byte(srcPort >> 8)
	ports[1] = byte(srcPort)
	ports[2] = byte(dstPort >> 8)
	ports[3] = byte(dstPort)
	h.Write(ports[:])
	h.Write([]byte{proto})
	return h.Sum32()
}
