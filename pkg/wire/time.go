package wire

import "time"

// NanosecondsSinceUnixEpoch is an absolute wall-clock instant
type NanosecondsSinceUnixEpoch uint64

// Now returns the current wall-clock instant
func Now() NanosecondsSinceUnixEpoch {
	return FromTime(time.Now())
}

// FromTime converts t, clamping instants before the epoch to zero
func FromTime(t time.Time) NanosecondsSinceUnixEpoch {
	n := t.UnixNano()
	if n < 0 {
		return 0
	}
	return NanosecondsSinceUnixEpoch(n)
}

// Add returns the instant ttl seconds after n
func (n NanosecondsSinceUnixEpoch) Add(ttl TimeToLiveInSeconds) NanosecondsSinceUnixEpoch {
	return n + NanosecondsSinceUnixEpoch(ttl)*NanosecondsSinceUnixEpoch(time.Second)
}

// Before reports whether n is strictly earlier than other
func (n NanosecondsSinceUnixEpoch) Before(other NanosecondsSinceUnixEpoch) bool {
	return n < other
}

// Time converts n back to a time.Time in UTC
func (n NanosecondsSinceUnixEpoch) Time() time.Time {
	return time.Unix(0, int64(n)).UTC()
}
