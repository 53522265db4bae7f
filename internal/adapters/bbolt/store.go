// Package bbolt implements the ports.SnapshotStore interface using bbolt
// (embedded B+ tree). Compiled sets live in the "snapshots" bucket as binary
// blobs keyed by set name; the "meta" bucket holds a small JSON summary per
// set so listing never decodes node data. Writes are transactional: a crash
// mid-write cannot corrupt previously committed data.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/corey/acmatch/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketSnapshots = []byte("snapshots")
	bucketMeta      = []byte("meta")
)

// Store implements ports.SnapshotStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.SnapshotStore = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// metaJSON is the summary stored alongside each snapshot blob.
type metaJSON struct {
	Source     string    `json:"source,omitempty"`
	Patterns   int       `json:"patterns"`
	Nodes      int       `json:"nodes"`
	CompiledAt time.Time `json:"compiled_at"`
}

// Save persists a compiled set under name.
func (s *Store) Save(name string, rec *ports.SnapshotRecord) error {
	if name == "" {
		return fmt.Errorf("empty set name")
	}
	if rec == nil || rec.Snapshot == nil {
		return fmt.Errorf("nil snapshot")
	}

	blob, err := encodeSnapshot(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	meta, err := json.Marshal(metaJSON{
		Source:     rec.Source,
		Patterns:   rec.Snapshot.Size,
		Nodes:      len(rec.Snapshot.Nodes),
		CompiledAt: rec.CompiledAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		sb, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		if err != nil {
			return err
		}
		mb, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := sb.Put([]byte(name), blob); err != nil {
			return err
		}
		return mb.Put([]byte(name), meta)
	})
}

// Load retrieves the set stored under name.
// Returns nil, nil if no such set exists.
func (s *Store) Load(name string) (*ports.SnapshotRecord, error) {
	var blob, meta []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		sb := tx.Bucket(bucketSnapshots)
		if sb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := sb.Get([]byte(name)); v != nil {
			blob = make([]byte, len(v))
			copy(blob, v)
		}
		if mb := tx.Bucket(bucketMeta); mb != nil {
			if v := mb.Get([]byte(name)); v != nil {
				meta = make([]byte, len(v))
				copy(meta, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if blob == nil {
		return nil, nil
	}

	snap, err := decodeSnapshot(blob)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	rec := &ports.SnapshotRecord{Snapshot: snap}
	if meta != nil {
		var m metaJSON
		if err := json.Unmarshal(meta, &m); err != nil {
			return nil, fmt.Errorf("unmarshal meta %q: %w", name, err)
		}
		rec.Source = m.Source
		rec.CompiledAt = m.CompiledAt
	}
	return rec, nil
}

// Delete removes a set. Idempotent: deleting a nonexistent set is not an error.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSnapshots, bucketMeta} {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			if err := b.Delete([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

// List describes every stored set in key (name) order.
func (s *Store) List() ([]ports.SnapshotInfo, error) {
	var infos []ports.SnapshotInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return nil
		}
		return mb.ForEach(func(k, v []byte) error {
			var m metaJSON
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("unmarshal meta %q: %w", k, err)
			}
			infos = append(infos, ports.SnapshotInfo{
				Name:       string(k),
				Source:     m.Source,
				Patterns:   m.Patterns,
				Nodes:      m.Nodes,
				CompiledAt: m.CompiledAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}
