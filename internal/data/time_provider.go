package data

import "time"

// TimeProvider abstracts time for testing purposes.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using the system clock.
type RealTimeProvider struct{}

// Now returns the current time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider always returns the same instant.
type FixedTimeProvider struct {
	At time.Time
}

// Now returns At.
func (p FixedTimeProvider) Now() time.Time {
	return p.At
}
