// SPDX-License-Identifier: GPL-3.0
package fqco

import "testing"

func TestHashFourTupleDeterministic(t *testing.T) {
	a := [4]byte{10, 0, 0, 1}
	b := [4]byte{10, 0, 0, 2}
	h1 := HashFourTuple(a, b, 1234, 443, 6)
	h2 := HashFourTuple(a, b, 1234, 443, 6)
	if h1 != h2 {
		t.Errorf("HashFourTuple should be deterministic for the same inputs, got %d != %d", h1, h2)
	}
}

func TestHashFourTupleDistinguishesTuples(t *testing.T) {
	a := [4]byte{10, 0, 0, 1}
	b := [4]byte{10, 0, 0, 2}
	h1 := HashFourTuple(a, b, 1234, 443, 6)
	h2 := HashFourTuple(a, b, 5678, 443, 6)
	if h1 == h2 {
		t.Errorf("different source ports should (almost always) hash differently")
	}
}
