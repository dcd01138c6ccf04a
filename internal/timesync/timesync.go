// Package timesync reports whether the wall clock can be trusted for
// timestamping readings.
package timesync

import "time"

// Epoch is the earliest wall-clock time accepted as plausible. Boards
// without an RTC boot at 1970 until NTP steps the clock.
var Epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Plausible reports whether now is after Epoch.
func Plausible(now time.Time) bool {
	return now.After(Epoch)
}

// Checker probes clock validity. Synced defaults to the kernel's NTP
// state where available.
type Checker struct {
	Now    func() time.Time
	Synced func() (bool, error)
}

// NewChecker returns a Checker backed by the system clock.
func NewChecker() *Checker {
	return &Checker{Now: time.Now, Synced: KernelSynced}
}

// Valid reports whether the clock is plausible and, when the kernel can
// tell us, synchronised. A failed sync probe falls back to plausibility.
func (c *Checker) Valid() bool {
	if !Plausible(c.Now()) {
		return false
	}
	if c.Synced == nil {
		return true
	}
	ok, err := c.Synced()
	if err != nil {
		return true
	}
	return ok
}
