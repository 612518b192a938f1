package storage

import (
	"errors"
	"time"

	"github.com/cuemby/burrow/pkg/cache"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a snapshot does not exist
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a saved copy of the cache's address, alias and NXDOMAIN
// entries
type Snapshot struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Entries   cache.Snapshot `json:"entries"`
}

// NewSnapshot wraps entries with a fresh ID
func NewSnapshot(entries cache.Snapshot, createdAt time.Time) *Snapshot {
	return &Snapshot{
		ID:        uuid.New().String(),
		CreatedAt: createdAt.UTC(),
		Entries:   entries,
	}
}

// Store defines the interface for snapshot storage
type Store interface {
	SaveSnapshot(snapshot *Snapshot) error
	GetSnapshot(id string) (*Snapshot, error)
	// LatestSnapshot returns the most recently saved snapshot
	LatestSnapshot() (*Snapshot, error)
	// ListSnapshots returns every snapshot, oldest first
	ListSnapshots() ([]*Snapshot, error)
	DeleteSnapshot(id string) error
	// Prune keeps the newest keep snapshots and reports how many it removed
	Prune(keep int) (int, error)

	Close() error
}
