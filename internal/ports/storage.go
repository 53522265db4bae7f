// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"time"

	"github.com/corey/acmatch/internal/domain/automaton"
)

// SnapshotStore persists compiled pattern sets to durable storage.
// Each set is stored under its name. Concurrent reads are safe; writes are
// serialized by the adapter.
//
// Crash safety: Save must be transactional. A crash mid-write must not
// corrupt previously committed data.
type SnapshotStore interface {
	// Save persists the record under name, overwriting any prior set.
	Save(name string, rec *SnapshotRecord) error

	// Load retrieves the set stored under name.
	// Returns nil, nil if no such set exists.
	Load(name string) (*SnapshotRecord, error)

	// Delete removes the set. Deleting a nonexistent set is not an error.
	Delete(name string) error

	// List describes every stored set, sorted by name.
	List() ([]SnapshotInfo, error)
}

// SnapshotRecord is a compiled set plus the metadata stored alongside it.
type SnapshotRecord struct {
	Snapshot   *automaton.Snapshot[string]
	Source     string    // pattern file the set was compiled from, if any
	CompiledAt time.Time // UTC
}

// SnapshotInfo summarizes a stored set without decoding its nodes.
type SnapshotInfo struct {
	Name       string    `json:"name"`
	Source     string    `json:"source,omitempty"`
	Patterns   int       `json:"patterns"`
	Nodes      int       `json:"nodes"`
	CompiledAt time.Time `json:"compiled_at"`
}
