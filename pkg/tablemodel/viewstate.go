package tablemodel

import (
	"fmt"
	"sync"
)

// ExpansionKey identifies a cell by row and column index
type ExpansionKey struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (k ExpansionKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.Row, k.Col)
}

// Expansion reports whether a cell is expanded
type Expansion interface {
	IsExpanded(row, col int) bool
}

// Store tracks which cells are expanded. Keys are created lazily on the
// first toggle. The zero value is ready to use; a Store is not safe for
// concurrent use, see Registry.
type Store struct {
	expanded map[ExpansionKey]struct{}
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{expanded: make(map[ExpansionKey]struct{})}
}

// Toggle flips the expansion of a cell and returns the new state
func (s *Store) Toggle(row, col int) bool {
	if s.expanded == nil {
		s.expanded = make(map[ExpansionKey]struct{})
	}
	key := ExpansionKey{Row: row, Col: col}
	if _, ok := s.expanded[key]; ok {
		delete(s.expanded, key)
		return false
	}
	s.expanded[key] = struct{}{}
	return true
}

// IsExpanded reports whether a cell is expanded
func (s *Store) IsExpanded(row, col int) bool {
	if s == nil {
		return false
	}
	_, ok := s.expanded[ExpansionKey{Row: row, Col: col}]
	return ok
}

// Reset collapses every cell; call it when new input replaces the table
func (s *Store) Reset() {
	s.expanded = make(map[ExpansionKey]struct{})
}

// Len returns the number of expanded cells
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.expanded)
}

// Keys returns the expanded keys
func (s *Store) Keys() []ExpansionKey {
	if s == nil {
		return nil
	}
	keys := make([]ExpansionKey, 0, len(s.expanded))
	for k := range s.expanded {
		keys = append(keys, k)
	}
	return keys
}

// StoreFromKeys creates a store with the given cells expanded
func StoreFromKeys(keys []ExpansionKey) *Store {
	s := NewStore()
	for _, k := range keys {
		s.expanded[k] = struct{}{}
	}
	return s
}

// collapsed is the expansion used when the caller passes none
type collapsed struct{}

func (collapsed) IsExpanded(int, int) bool { return false }

// ============================================================================
// Registry
// ============================================================================

// Registry holds one Store per table instance so concurrent tables never
// share keys. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Toggle flips a cell of the given table and returns the new state
func (r *Registry) Toggle(table string, row, col int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storeLocked(table).Toggle(row, col)
}

// IsExpanded reports whether a cell of the given table is expanded
func (r *Registry) IsExpanded(table string, row, col int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[table]; ok {
		return s.IsExpanded(row, col)
	}
	return false
}

// Reset clears the expansion state of one table
func (r *Registry) Reset(table string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, table)
}

// Snapshot returns a copy of a table's state that is safe to read without locking
func (r *Registry) Snapshot(table string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[table]; ok {
		return StoreFromKeys(s.Keys())
	}
	return NewStore()
}

func (r *Registry) storeLocked(table string) *Store {
	s, ok := r.stores[table]
	if !ok {
		s = NewStore()
		r.stores[table] = s
	}
	return s
}
