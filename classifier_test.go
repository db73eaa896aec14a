// SPDX-License-Identifier: GPL-3.0
package fqco

import "testing"

func newTestSchedulerRaw(t *testing.T, cfg Config) *Scheduler {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestClassifyControlBypass(t *testing.T) {
	s := newTestSchedulerRaw(t, DefaultConfig())
	f, err := s.classify(&Packet{Prio: PriorityControl})
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if f != s.internal {
		t.Errorf("control-priority packets should classify to the internal flow")
	}
}

func TestClassifyOrphanUsesSyntheticKey(t *testing.T) {
	s := newTestSchedulerRaw(t, DefaultConfig())
	f1, err := s.classify(&Packet{HeaderHash: 777})
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	f2, _ := s.classify(&Packet{HeaderHash: 777})
	if f1 != f2 {
		t.Errorf("two orphan packets with the same header hash should land on the same flow")
	}
}

func TestClassifyListenerAndClosedAreOrphaned(t *testing.T) {
	s := newTestSchedulerRaw(t, DefaultConfig())
	e := &Endpoint{ID: 1 << 1, State: EndpointListener}
	f, err := s.classify(&Packet{Endpoint: e, HeaderHash: 55})
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if f.key.kind != flowKeySynthetic {
		t.Errorf("a listener endpoint's packet should classify to a synthetic key, got kind=%v", f.key.kind)
	}

	c := &Endpoint{ID: 2 << 1, State: EndpointClosed}
	fc, err := s.classify(&Packet{Endpoint: c, HeaderHash: 66})
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if fc.key.kind != flowKeySynthetic {
		t.Errorf("a closed endpoint's packet should classify to a synthetic key, got kind=%v", fc.key.kind)
	}
}

func TestClassifyEndpointReuseResetsCreditAndTiming(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSchedulerRaw(t, cfg)
	e := &Endpoint{ID: 1 << 1, State: EndpointActive, Hash: 0x1111}

	f, err := s.classify(&Packet{Endpoint: e})
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	f.credit = 1
	f.timeNextPacket = 999

	e.Hash = 0x2222
	f2, err := s.classify(&Packet{Endpoint: e})
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if f2 != f {
		t.Fatalf("reused endpoint should map to the same FlowEntry")
	}
	if f.credit != int64(cfg.InitialQuantum) {
		t.Errorf("credit after reuse = %d, want %d", f.credit, cfg.InitialQuantum)
	}
	if f.timeNextPacket != 0 {
		t.Errorf("timeNextPacket after reuse = %d, want 0", f.timeNextPacket)
	}
}

func TestLearnCoFlowIDsFromSourceAndDestPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.F1Source = 100
	cfg.F2Dest = 200
	s := newTestSchedulerRaw(t, cfg)

	fa, _ := s.classify(&Packet{Endpoint: &Endpoint{ID: 2, State: EndpointActive}, SourcePort: 100, HeaderHash: 11})
	fb, _ := s.classify(&Packet{Endpoint: &Endpoint{ID: 4, State: EndpointActive}, DestPort: 200, HeaderHash: 22})

	if !s.isCoFlow(fa) {
		t.Errorf("flow matching f1_source should be recognized as a co-flow")
	}
	if !s.isCoFlow(fb) {
		t.Errorf("flow matching f2_dest should be recognized as a co-flow")
	}

	fc, _ := s.classify(&Packet{Endpoint: &Endpoint{ID: 6, State: EndpointActive}, HeaderHash: 33})
	if s.isCoFlow(fc) {
		t.Errorf("an unrelated flow should not be recognized as a co-flow")
	}
}
