// Package clock provides the time source shared by reconcilers and sweeps,
// so tests can drive subscription windows deterministically.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
