package kpi

import "time"

// Clock supplies "now" for the trailing-window KPI. The window boundary
// moves with wall time, so production uses SystemClock and tests inject a
// fixed clock to keep results reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
