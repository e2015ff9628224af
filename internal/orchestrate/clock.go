package orchestrate

import "time"

// Clock abstracts the timed suspension between provisioning and relay
// start so tests can elapse it instantly and a later version can make it
// cancellable.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// NewRealClock returns a Clock backed by the wall clock.
func NewRealClock() Clock {
	return realClock{}
}
