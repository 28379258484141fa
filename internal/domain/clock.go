package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source. Production uses the real clock; tests
// freeze it with SetClock for deterministic IDs and timestamps.
var clock = clockwork.NewRealClock()

// SetClock swaps the package time source. Pass nil to restore real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the active time source, for collaborators (store IDs,
// scheduler ticks) that must stay in step with domain timestamps.
func Clock() clockwork.Clock {
	return clock
}
