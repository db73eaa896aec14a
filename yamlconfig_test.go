// SPDX-License-Identifier: GPL-3.0
package fqco

import "testing"

func TestConfigYAMLRoundTrip(t *testing.T) {
	want := DefaultConfig()
	want.FlowMaxRate = 123456
	want.F1Source = 80

	data, err := MarshalConfigYAML(want)
	if err != nil {
		t.Fatalf("MarshalConfigYAML() error: %v", err)
	}
	got, err := LoadConfigYAML(data)
	if err != nil {
		t.Fatalf("LoadConfigYAML() error: %v", err)
	}
	if got != want {
		t.Errorf("round-tripped config = %+v, want %+v", got, want)
	}
}
