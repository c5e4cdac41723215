package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

func mustSeededStore(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewSeededStore()
	if err != nil {
		t.Fatalf("failed to load seed catalog: %v", err)
	}
	return store
}

func TestSeed(t *testing.T) {
	hymns, err := Seed()
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	t.Run("contains twenty hymns with unique ids", func(t *testing.T) {
		if len(hymns) != 20 {
			t.Fatalf("expected 20 hymns, got %d", len(hymns))
		}
		seen := map[int]bool{}
		for _, h := range hymns {
			if seen[h.ID] {
				t.Errorf("duplicate id %d", h.ID)
			}
			seen[h.ID] = true
			if h.Title.English() == "" || h.Lyrics.English() == "" {
				t.Errorf("hymn %d is missing English text", h.ID)
			}
			if h.CreatedAt.IsZero() {
				t.Errorf("hymn %d is missing createdAt", h.ID)
			}
		}
	})

	t.Run("curated translations are present", func(t *testing.T) {
		for _, h := range hymns {
			if h.ID == 15 {
				if h.Title[models.Afrikaans] != "Genade Onbeskryflik Groot" {
					t.Errorf("unexpected af title %q", h.Title[models.Afrikaans])
				}
				if h.Title[models.Zulu] != "Umusa Omangalisayo" {
					t.Errorf("unexpected zu title %q", h.Title[models.Zulu])
				}
				return
			}
		}
		t.Error("hymn 15 not found")
	})

	t.Run("categories are part of the closed set", func(t *testing.T) {
		for _, h := range hymns {
			if _, err := models.ParseCategory(string(h.Category)); err != nil {
				t.Errorf("hymn %d has unknown category %q", h.ID, h.Category)
			}
		}
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("GetAll orders by number", func(t *testing.T) {
		store := mustSeededStore(t)
		hymns, err := store.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll failed: %v", err)
		}
		for i := 1; i < len(hymns); i++ {
			if hymns[i].Number < hymns[i-1].Number {
				t.Errorf("hymn #%d comes after #%d", hymns[i].Number, hymns[i-1].Number)
			}
		}
		if hymns[0].Number != 22 || hymns[len(hymns)-1].Number != 275 {
			t.Errorf("unexpected bounds: first #%d, last #%d", hymns[0].Number, hymns[len(hymns)-1].Number)
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		store := mustSeededStore(t)
		hymn, err := store.GetByID(ctx, 10)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if hymn.Title.English() != "Joy to the World" {
			t.Errorf("expected Joy to the World, got %s", hymn.Title.English())
		}
	})

	t.Run("GetByID not found", func(t *testing.T) {
		store := mustSeededStore(t)
		if _, err := store.GetByID(ctx, 999); !errors.Is(err, shared.ErrHymnNotFound) {
			t.Errorf("expected ErrHymnNotFound, got %v", err)
		}
	})

	t.Run("GetRecent returns the four newest", func(t *testing.T) {
		store := mustSeededStore(t)
		recent, err := store.GetRecent(ctx, 4)
		if err != nil {
			t.Fatalf("GetRecent failed: %v", err)
		}
		want := []int{20, 19, 18, 17}
		if len(recent) != len(want) {
			t.Fatalf("expected %d hymns, got %d", len(want), len(recent))
		}
		for i, id := range want {
			if recent[i].ID != id {
				t.Errorf("position %d: expected id %d, got %d", i, id, recent[i].ID)
			}
		}
	})

	t.Run("GetRecent breaks ties by input order", func(t *testing.T) {
		same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		store := NewMemoryStore([]models.Hymn{
			{ID: 1, CreatedAt: same},
			{ID: 2, CreatedAt: same.Add(time.Hour)},
			{ID: 3, CreatedAt: same},
			{ID: 4, CreatedAt: same},
		})
		recent, _ := store.GetRecent(ctx, 3)
		got := []int{recent[0].ID, recent[1].ID, recent[2].ID}
		want := []int{2, 1, 3}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("GetRecent bounds", func(t *testing.T) {
		store := mustSeededStore(t)
		if recent, _ := store.GetRecent(ctx, 0); len(recent) != 0 {
			t.Errorf("expected no hymns for n=0, got %d", len(recent))
		}
		if recent, _ := store.GetRecent(ctx, 100); len(recent) != 20 {
			t.Errorf("expected all 20 hymns, got %d", len(recent))
		}
	})

	t.Run("store is isolated from the caller's slice", func(t *testing.T) {
		hymns := []models.Hymn{{ID: 1, Number: 1}}
		store := NewMemoryStore(hymns)
		hymns[0].ID = 99
		if _, err := store.GetByID(ctx, 1); err != nil {
			t.Errorf("mutating the input should not affect the store: %v", err)
		}
	})
}
