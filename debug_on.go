// SPDX-License-Identifier: GPL-3.0

//go:build fqco_debug

package fqco

import "fmt"

// assertf panics with a formatted message when cond is false. Builds
// tagged fqco_debug only; see debug_off.go for the production no-op
// (DESIGN.md Open Question 4).
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("fqco: assertion failed: " + fmt.Sprintf(format, args...))
	}
}
