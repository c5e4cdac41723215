// package catalog provides read access to the hymn catalog and the category/search filter over it.
package catalog

import (
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

//go:embed seed.json
var seedData []byte

// Store is a read-only hymn catalog.
type Store interface {
	// GetAll returns every hymn ordered by ascending number.
	GetAll(ctx context.Context) ([]models.Hymn, error)

	// GetByID returns the hymn with the given id, or an error wrapping [shared.ErrHymnNotFound].
	GetByID(ctx context.Context, id int) (*models.Hymn, error)

	// GetRecent returns at most n hymns ordered by descending creation time.
	// Hymns created at the same instant keep their catalog insertion order.
	GetRecent(ctx context.Context, n int) ([]models.Hymn, error)
}

// Seed returns a fresh copy of the built-in catalog in insertion order.
func Seed() ([]models.Hymn, error) {
	var hymns []models.Hymn
	if err := json.Unmarshal(seedData, &hymns); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	return hymns, nil
}

// MemoryStore is a [Store] over an in-memory slice of hymns.
type MemoryStore struct {
	hymns []models.Hymn
}

// NewMemoryStore creates a [MemoryStore] over hymns, kept in the given insertion order.
func NewMemoryStore(hymns []models.Hymn) *MemoryStore {
	return &MemoryStore{hymns: slices.Clone(hymns)}
}

// NewSeededStore creates a [MemoryStore] over the built-in catalog.
func NewSeededStore() (*MemoryStore, error) {
	hymns, err := Seed()
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(hymns), nil
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]models.Hymn, error) {
	return SortByNumber(s.hymns), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int) (*models.Hymn, error) {
	for _, h := range s.hymns {
		if h.ID == id {
			hymn := h
			return &hymn, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", shared.ErrHymnNotFound, id)
}

func (s *MemoryStore) GetRecent(ctx context.Context, n int) ([]models.Hymn, error) {
	return MostRecent(s.hymns, n), nil
}

// SortByNumber returns a copy of hymns ordered by ascending number. Equal numbers keep input order.
func SortByNumber(hymns []models.Hymn) []models.Hymn {
	sorted := slices.Clone(hymns)
	slices.SortStableFunc(sorted, func(a, b models.Hymn) int { return cmp.Compare(a.Number, b.Number) })
	return sorted
}

// MostRecent returns up to n hymns ordered by descending creation time, ties broken by input order.
func MostRecent(hymns []models.Hymn, n int) []models.Hymn {
	if n <= 0 {
		return []models.Hymn{}
	}

	sorted := slices.Clone(hymns)
	slices.SortStableFunc(sorted, func(a, b models.Hymn) int { return b.CreatedAt.Compare(a.CreatedAt) })

	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
