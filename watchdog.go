// SPDX-License-Identifier: GPL-3.0
package fqco

// Watchdog schedules a single rearm-able wakeup for the host to call
// Dequeue again once the earliest throttled flow becomes eligible. It
// owns no goroutine or timer itself — the host is expected to drive an
// actual timer/timerfd/hrtimer from what Armed reports, since Dequeue
// itself must never block or suspend. A scheduled wakeup stays armed,
// even after its time has passed, until Schedule replaces it or Cancel
// clears it.
type Watchdog struct {
	armed bool
	at    Clock
}

// Schedule requests a wakeup at "at", replacing any prior pending
// wakeup.
func (w *Watchdog) Schedule(at Clock) {
	w.armed = true
	w.at = at
}

// Cancel clears any pending wakeup, e.g. on Destroy.
func (w *Watchdog) Cancel() {
	w.armed = false
}

// Armed reports whether a wakeup is currently pending, and when.
func (w *Watchdog) Armed() (at Clock, armed bool) {
	return w.at, w.armed
}
