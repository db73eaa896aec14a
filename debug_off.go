// SPDX-License-Identifier: GPL-3.0

//go:build !fqco_debug

package fqco

// assertf is a no-op in production builds; the compiler inlines this away
// entirely, so the fqco_debug invariant checks cost nothing by default
// (DESIGN.md Open Question 4).
func assertf(cond bool, format string, args ...any) {}
