// Package registry holds the run-scoped mapping from legacy identifiers to
// target-assigned identifiers, and the duplicate-key conflict resolution
// that feeds it.
package registry

import (
	"github.com/kwatalab/bsm/internal/types"
)

// Registry maps (entity kind, legacy id) to the id assigned by the target
// store. Entries are first-wins and never overwritten; a legacy id with no
// entry never migrated, and everything depending on it is skipped.
//
// The run is single-threaded, so no locking.
type Registry struct {
	entries map[types.Kind]map[string]string
	adopted map[types.Kind]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[types.Kind]map[string]string),
		adopted: make(map[types.Kind]int),
	}
}

// Register records a mapping. Idempotent: if an entry already exists for
// (kind, legacyID) the call is a no-op and returns false.
func (r *Registry) Register(kind types.Kind, legacyID, targetID string) bool {
	if legacyID == "" || targetID == "" {
		return false
	}
	m, ok := r.entries[kind]
	if !ok {
		m = make(map[string]string)
		r.entries[kind] = m
	}
	if _, exists := m[legacyID]; exists {
		return false
	}
	m[legacyID] = targetID
	return true
}

// Resolve returns the target id mapped to a legacy id.
func (r *Registry) Resolve(kind types.Kind, legacyID string) (string, bool) {
	id, ok := r.entries[kind][legacyID]
	return id, ok
}

// Count returns how many legacy ids of a kind have mappings.
func (r *Registry) Count(kind types.Kind) int {
	return len(r.entries[kind])
}

// Adopted returns how many mappings of a kind were resolved onto
// pre-existing target records rather than fresh inserts.
func (r *Registry) Adopted(kind types.Kind) int {
	return r.adopted[kind]
}

// Counts returns per-kind mapping totals for the run summary.
func (r *Registry) Counts() map[types.Kind]int {
	out := make(map[types.Kind]int, len(r.entries))
	for kind, m := range r.entries {
		out[kind] = len(m)
	}
	return out
}
