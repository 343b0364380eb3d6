package shared

import "time"

// Clocker provides the current time. Services take one so tests can pin "now".
type Clocker interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// Timestamp is the creation/update time written by the stores. It is
// truncated to microseconds so every backend round-trips it unchanged.
func Timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
