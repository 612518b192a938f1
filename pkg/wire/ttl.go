package wire

import "time"

// TimeToLiveInSeconds is a 31-bit record lifetime
type TimeToLiveInSeconds uint32

// MaximumTimeToLive is the largest representable lifetime, 2^31 - 1
const MaximumTimeToLive TimeToLiveInSeconds = 1<<31 - 1

// NewTimeToLive interprets a raw 32-bit TTL field. A value with the top bit
// set is treated as zero.
func NewTimeToLive(raw uint32) TimeToLiveInSeconds {
	if raw&0x8000_0000 != 0 {
		return 0
	}
	return TimeToLiveInSeconds(raw)
}

// ReadTimeToLive reads a TTL field at offset
func ReadTimeToLive(data []byte, offset int) (TimeToLiveInSeconds, int, error) {
	raw, next, err := ReadUint32(data, offset)
	if err != nil {
		return 0, offset, err
	}
	return NewTimeToLive(raw), next, nil
}

// IsZero reports whether the record must not be cached
func (t TimeToLiveInSeconds) IsZero() bool {
	return t == 0
}

// Duration converts the TTL to a time.Duration
func (t TimeToLiveInSeconds) Duration() time.Duration {
	return time.Duration(t) * time.Second
}

// Min returns the smaller of two TTLs
func (t TimeToLiveInSeconds) Min(other TimeToLiveInSeconds) TimeToLiveInSeconds {
	if other < t {
		return other
	}
	return t
}
