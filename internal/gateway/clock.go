package gateway

import "time"

// Resolution is the precision kept by every backend (postgres stores microseconds).
const Resolution = time.Microsecond

// Now is the wall clock in UTC at storage resolution.
func Now() time.Time {
	return time.Now().UTC().Truncate(Resolution)
}

// NextTimestamp returns now, or last+Resolution when the clock has not moved past last.
func NextTimestamp(now, last time.Time) time.Time {
	now = now.UTC().Truncate(Resolution)
	if last.IsZero() || now.After(last) {
		return now
	}
	return last.UTC().Add(Resolution)
}
