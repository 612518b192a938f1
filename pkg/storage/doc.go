/*
Package storage provides BoltDB-backed snapshots of the cache for warm start.

A snapshot holds the address sets, CNAME aliases and NXDOMAIN markers that
were valid when it was taken, each with its absolute expiry. Restoring a
snapshot later skips whatever has expired since, so a stale snapshot can
only under-fill the cache, never serve an expired record.

# Architecture

	┌──────────────── <dataDir>/burrow.db ────────────────┐
	│                                                      │
	│  snapshots   uuid → JSON Snapshot                    │
	│  meta        "latest" → uuid of the last save        │
	│                                                      │
	└──────────────────────────────────────────────────────┘

All values are JSON. Reads use db.View and may run concurrently; saves and
deletes use db.Update and are serialized by bbolt.

# Usage

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshot := storage.NewSnapshot(c.Export(wire.Now()), time.Now())
	if err := store.SaveSnapshot(snapshot); err != nil {
		return err
	}

	latest, err := store.LatestSnapshot()
	if err == nil {
		restored := c.Restore(latest.Entries, wire.Now())
	}
*/
package storage
