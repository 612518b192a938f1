package cache

import (
	"errors"
	"fmt"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/wire"
)

// ErrCacheUntilInvariant is returned when two expiry markers for the same
// record set cannot both be true
var ErrCacheUntilInvariant = errors.New("inconsistent cache expiry merge")

// CacheUntil is either UseOnce (the records answer the current transaction
// only) or Cached until an absolute instant. The zero value is UseOnce at
// the epoch, which is never valid.
type CacheUntil struct {
	cached bool
	at     wire.NanosecondsSinceUnixEpoch
}

// UseOnce marks records that must not be cached, such as a zero TTL
// (RFC 2181 section 8)
func UseOnce(asOfNow wire.NanosecondsSinceUnixEpoch) CacheUntil {
	return CacheUntil{at: asOfNow}
}

// Cached marks records valid until the given instant
func Cached(until wire.NanosecondsSinceUnixEpoch) CacheUntil {
	return CacheUntil{cached: true, at: until}
}

// FromTimeToLive converts a wire TTL received at now
func FromTimeToLive(now wire.NanosecondsSinceUnixEpoch, ttl wire.TimeToLiveInSeconds) CacheUntil {
	if ttl.IsZero() {
		return UseOnce(now)
	}
	return Cached(now.Add(ttl))
}

// IsUseOnce reports whether the records must not be cached
func (c CacheUntil) IsUseOnce() bool {
	return !c.cached
}

// Instant is the use-once transaction time or the expiry
func (c CacheUntil) Instant() wire.NanosecondsSinceUnixEpoch {
	return c.at
}

// IsValidAt reports whether cached records may still be served at now
func (c CacheUntil) IsValidAt(now wire.NanosecondsSinceUnixEpoch) bool {
	return c.cached && now.Before(c.at)
}

// TimeToLive is the whole seconds left at now, zero once expired
func (c CacheUntil) TimeToLive(now wire.NanosecondsSinceUnixEpoch) wire.TimeToLiveInSeconds {
	if !c.IsValidAt(now) {
		return 0
	}
	return wire.TimeToLiveInSeconds(uint64(c.at-now) / 1e9)
}

func (c CacheUntil) String() string {
	if c.cached {
		return fmt.Sprintf("cached until %s", c.at.Time().UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	return fmt.Sprintf("use once as of %s", c.at.Time().UTC().Format("2006-01-02T15:04:05.000Z"))
}

// Update merges another observation of the same record set:
//   - UseOnce and UseOnce must share the transaction instant.
//   - UseOnce and Cached require the UseOnce instant to precede the expiry,
//     and the result is the Cached value.
//   - Cached and Cached keep the earlier expiry.
//
// A violation leaves c UseOnce at the earliest instant involved, so the
// records are never cached, and returns ErrCacheUntilInvariant.
func (c *CacheUntil) Update(right CacheUntil) error {
	left := *c
	switch {
	case !left.cached && !right.cached:
		if left.at != right.at {
			return c.violate(left, right)
		}
	case !left.cached:
		if !left.at.Before(right.at) {
			return c.violate(left, right)
		}
		*c = right
	case !right.cached:
		if !right.at.Before(left.at) {
			return c.violate(left, right)
		}
	default:
		if right.at.Before(left.at) {
			*c = right
		}
	}
	return nil
}

func (c *CacheUntil) violate(left, right CacheUntil) error {
	*c = UseOnce(min(left.at, right.at))
	metrics.CacheInvariantViolations.Inc()
	logger := log.WithComponent("cache")
	logger.Warn().
		Str("left", left.String()).
		Str("right", right.String()).
		Msg("inconsistent cache expiry merge, records will not be cached")
	return fmt.Errorf("%s and %s: %w", left, right, ErrCacheUntilInvariant)
}

// NegativeCacheUntil scopes a NXDOMAIN or NODATA result to the zone whose
// SOA proved it
type NegativeCacheUntil struct {
	Until CacheUntil
	// Zone is the SOA owner; the root when the response carried no SOA
	Zone name.CaseFoldedName
}
