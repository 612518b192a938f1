package cache

import (
	"context"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/rdata"
	"golang.org/x/sync/singleflight"
)

// Coalescer lets at most one fetch per (name, type) run at a time. Callers
// arriving while a fetch is in flight wait for it and then read the cache
// it filled.
type Coalescer struct {
	group singleflight.Group
}

func coalesceKey(owner name.CaseFoldedName, t rdata.DataType) string {
	return string(owner.Wire()) + "/" + t.String()
}

// Do runs fetch unless one for the same key is already running. shared
// reports whether the result came from another caller's fetch. A cancelled
// ctx stops the wait but not the fetch.
func (c *Coalescer) Do(ctx context.Context, owner name.CaseFoldedName, t rdata.DataType, fetch func() error) (shared bool, err error) {
	ch := c.group.DoChan(coalesceKey(owner, t), func() (interface{}, error) {
		return nil, fetch()
	})
	select {
	case result := <-ch:
		if result.Shared {
			metrics.CoalescedFetches.Inc()
		}
		return result.Shared, result.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
