package tablemodel

import (
	"fmt"
	"sync"
	"testing"
)

func TestStore_ToggleRoundTrip(t *testing.T) {
	store := NewStore()

	for _, key := range []ExpansionKey{{0, 0}, {3, 7}, {12, 3}} {
		before := store.IsExpanded(key.Row, key.Col)
		store.Toggle(key.Row, key.Col)
		if store.IsExpanded(key.Row, key.Col) == before {
			t.Errorf("%v: expected toggle to flip state", key)
		}
		store.Toggle(key.Row, key.Col)
		if store.IsExpanded(key.Row, key.Col) != before {
			t.Errorf("%v: expected second toggle to restore state", key)
		}
	}
}

func TestStore_KeysDoNotCollide(t *testing.T) {
	store := NewStore()
	store.Toggle(1, 23)

	if store.IsExpanded(12, 3) {
		t.Error("Expected (12,3) to stay collapsed after toggling (1,23)")
	}
	if !store.IsExpanded(1, 23) {
		t.Error("Expected (1,23) to be expanded")
	}
}

func TestStore_ResetAndZeroValue(t *testing.T) {
	var store Store
	if store.IsExpanded(0, 0) {
		t.Error("Expected zero store to be collapsed")
	}
	if !store.Toggle(0, 0) {
		t.Error("Expected toggle on zero store to expand")
	}
	store.Toggle(4, 2)
	if store.Len() != 2 {
		t.Errorf("Expected 2 expanded cells, got %d", store.Len())
	}

	store.Reset()
	if store.Len() != 0 || store.IsExpanded(0, 0) {
		t.Error("Expected reset to collapse every cell")
	}

	var nilStore *Store
	if nilStore.IsExpanded(1, 1) || nilStore.Len() != 0 {
		t.Error("Expected nil store to report collapsed")
	}
}

func TestRegistry_ShardsByTable(t *testing.T) {
	registry := NewRegistry()
	registry.Toggle("a", 1, 1)

	if registry.IsExpanded("b", 1, 1) {
		t.Error("Expected tables not to share expansion state")
	}
	if !registry.IsExpanded("a", 1, 1) {
		t.Error("Expected table a to be expanded")
	}

	snapshot := registry.Snapshot("a")
	registry.Reset("a")
	if registry.IsExpanded("a", 1, 1) {
		t.Error("Expected reset table to be collapsed")
	}
	if !snapshot.IsExpanded(1, 1) {
		t.Error("Expected snapshot to be independent of reset")
	}
}

func TestRegistry_ConcurrentToggles(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(table string) {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				registry.Toggle(table, r, 0)
				_ = registry.IsExpanded(table, r, 0)
			}
		}(fmt.Sprintf("table-%d", i))
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		if got := registry.Snapshot(fmt.Sprintf("table-%d", i)).Len(); got != 100 {
			t.Errorf("table-%d: expected 100 expanded cells, got %d", i, got)
		}
	}
}
