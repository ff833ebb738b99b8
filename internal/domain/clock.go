package domain

import "github.com/jonboulle/clockwork"

// clock supplies the ingest time for messages whose transport did not stamp one.
var clock = clockwork.NewRealClock()

// SetClock replaces the fallback ingest clock. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
