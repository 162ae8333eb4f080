package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps rows as they leave the pipeline (processed_at, loaded_at).
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time of the package clock in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}
