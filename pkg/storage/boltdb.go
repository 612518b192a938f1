package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketSnapshots = []byte("snapshots")
	bucketMeta      = []byte("meta")

	keyLatest = []byte("latest")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "burrow.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSnapshots, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Snapshot operations
func (s *BoltStore) SaveSnapshot(snapshot *Snapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketSnapshots).Put([]byte(snapshot.ID), data); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyLatest, []byte(snapshot.ID))
	})
}

func (s *BoltStore) GetSnapshot(id string) (*Snapshot, error) {
	var snapshot Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, id, &snapshot)
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *BoltStore) LatestSnapshot() (*Snapshot, error) {
	var snapshot Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketMeta).Get(keyLatest)
		if id == nil {
			return ErrNotFound
		}
		return get(tx, string(id), &snapshot)
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *BoltStore) ListSnapshots() ([]*Snapshot, error) {
	var snapshots []*Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		return b.ForEach(func(k, v []byte) error {
			var snapshot Snapshot
			if err := json.Unmarshal(v, &snapshot); err != nil {
				return err
			}
			snapshots = append(snapshots, &snapshot)
			return nil
		})
	})
	slices.SortStableFunc(snapshots, func(a, b *Snapshot) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return snapshots, err
}

func (s *BoltStore) DeleteSnapshot(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return remove(tx, id)
	})
}

func (s *BoltStore) Prune(keep int) (int, error) {
	snapshots, err := s.ListSnapshots()
	if err != nil {
		return 0, err
	}
	if len(snapshots) <= keep {
		return 0, nil
	}
	stale := snapshots[:len(snapshots)-max(keep, 0)]
	err = s.db.Update(func(tx *bolt.Tx) error {
		for _, snapshot := range stale {
			if err := remove(tx, snapshot.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

func get(tx *bolt.Tx, id string, snapshot *Snapshot) error {
	data := tx.Bucket(bucketSnapshots).Get([]byte(id))
	if data == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return json.Unmarshal(data, snapshot)
}

// remove deletes a snapshot and clears the latest marker if it pointed at it
func remove(tx *bolt.Tx, id string) error {
	if err := tx.Bucket(bucketSnapshots).Delete([]byte(id)); err != nil {
		return err
	}
	meta := tx.Bucket(bucketMeta)
	if string(meta.Get(keyLatest)) == id {
		return meta.Delete(keyLatest)
	}
	return nil
}
