// Package storage holds the node's local key/value data: every resource it
// is primary or replica for (spec C2, C8).
package storage

import (
	"sort"
	"sync"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// entry pairs a stored resource with the role under which this node holds
// it, so the replication maintainer can tell primaries from replicas
// without a second index.
type entry struct {
	resource domain.Resource
	role     domain.Role
}

// Storage is a concurrency-safe in-memory key/value store keyed by the
// resource's hex-encoded ring ID.
type Storage struct {
	lgr logger.Logger
	mu  sync.RWMutex
	data map[string]entry
}

// New creates an empty store.
func New(lgr logger.Logger) *Storage {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &Storage{lgr: lgr, data: make(map[string]entry)}
}

// Put inserts or overwrites a resource under the given role.
func (s *Storage) Put(res domain.Resource, role domain.Role) {
	key := res.Key.String()
	s.mu.Lock()
	_, existed := s.data[key]
	s.data[key] = entry{resource: res, role: role}
	s.mu.Unlock()
	if existed {
		s.lgr.Debug("Put: resource updated", logger.FResource("resource", res), logger.F("role", role.String()))
	} else {
		s.lgr.Debug("Put: resource inserted", logger.FResource("resource", res), logger.F("role", role.String()))
	}
}

// Get retrieves a resource by ID, returning domain.ErrNotFound if absent.
func (s *Storage) Get(id domain.ID) (domain.Resource, error) {
	key := id.String()
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return domain.Resource{}, domain.ErrNotFound
	}
	return e.resource, nil
}

// Role reports the role under which id is currently held, if any.
func (s *Storage) Role(id domain.ID) (domain.Role, bool) {
	s.mu.RLock()
	e, ok := s.data[id.String()]
	s.mu.RUnlock()
	return e.role, ok
}

// Delete removes a resource, returning domain.ErrNotFound if it wasn't
// present.
func (s *Storage) Delete(id domain.ID) error {
	key := id.String()
	s.mu.Lock()
	_, ok := s.data[key]
	if ok {
		delete(s.data, key)
	}
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// Between returns every stored resource whose key lies in (from, to] on the
// ring, used when transferring ownership during join/leave (spec C6).
func (s *Storage) Between(from, to domain.ID) []domain.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Resource
	for _, e := range s.data {
		if e.resource.Key.BetweenRightClosed(from, to) {
			out = append(out, e.resource)
		}
	}
	return out
}

// Primaries returns every resource this node is Primary for.
func (s *Storage) Primaries() []domain.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Resource
	for _, e := range s.data {
		if e.role == domain.RolePrimary {
			out = append(out, e.resource)
		}
	}
	return out
}

// SetRole updates the role of an already-stored resource, used when a
// primary discovers it has become a replica (or vice versa) after a
// stabilization round.
func (s *Storage) SetRole(id domain.ID, role domain.Role) {
	key := id.String()
	s.mu.Lock()
	if e, ok := s.data[key]; ok {
		e.role = role
		s.data[key] = e
	}
	s.mu.Unlock()
}

// All returns a snapshot of every resource currently stored, regardless of
// role.
func (s *Storage) All() []domain.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Resource, 0, len(s.data))
	for _, e := range s.data {
		out = append(out, e.resource)
	}
	return out
}

// Len returns the number of stored resources.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// DebugLog emits a single structured DEBUG log with a sorted snapshot of
// the store's contents (key and role only, never the value).
func (s *Storage) DebugLog() {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		e := s.data[k]
		entries = append(entries, map[string]any{"key": k, "role": e.role.String(), "size": len(e.resource.Value)})
	}
	s.mu.RUnlock()
	s.lgr.Debug("storage snapshot", logger.F("count", len(entries)), logger.F("entries", entries))
}
