package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/prodgraph/pkg/rates"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0, 0)

	s, err := store.Create(ctx, "de")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" {
		t.Fatal("session ID should be set")
	}
	if got := s.Settings.Language(); got != "de" {
		t.Errorf("Language() = %q, want de", got)
	}

	if err := s.Settings.SetTier("iron-ore", rates.MinerMk3); err != nil {
		t.Fatalf("SetTier: %v", err)
	}
	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Settings.Get("iron-ore").Tier != rates.MinerMk3 {
		t.Error("settings should be shared through the store")
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, s.ID); err != nil {
		t.Errorf("Delete of unknown session should succeed, got %v", err)
	}
}

func TestMemoryStoreUnsupportedLanguage(t *testing.T) {
	s, err := NewMemoryStore(0, 0).Create(context.Background(), "fr")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := s.Settings.Language(); got != "en" {
		t.Errorf("Language() = %q, want fallback en", got)
	}
}

func TestMemoryStoreEviction(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2, 0)

	first, _ := store.Create(ctx, "en")
	store.Create(ctx, "en")
	store.Create(ctx, "en")

	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
	if _, err := store.Get(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Error("oldest session should be evicted")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, 20*time.Millisecond)

	s, _ := store.Create(ctx, "en")
	time.Sleep(60 * time.Millisecond)

	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session error = %v, want ErrNotFound", err)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := GenerateID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
