package signature

import "time"

// Clock returns the current time.
type Clock func() time.Time

// SystemClock reads the process wall clock.
func SystemClock() time.Time { return time.Now() }

// Timestamp returns the whole seconds since the Unix epoch.
func (c Clock) Timestamp() int64 {
	return c().UTC().Unix()
}
