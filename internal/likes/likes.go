// package likes keeps the per-user set of liked catalog and generated hymns
package likes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/hymnal/internal/models"
)

const (
	keyPrefix = "likedHymns-"
	// GuestKey holds the liked set when nobody is signed in.
	GuestKey = keyPrefix + "guest"
)

// Store is the durable key/value store holding serialized liked sets.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}

// Identity reports the signed-in user, if any.
type Identity interface {
	CurrentUserID() (string, bool)
}

// Guest is an [Identity] that is never signed in.
type Guest struct{}

func (Guest) CurrentUserID() (string, bool) { return "", false }

// StorageKey returns the liked-set key for the identity's current user.
func StorageKey(id Identity) string {
	if id == nil {
		return GuestKey
	}
	if userID, ok := id.CurrentUserID(); ok && userID != "" {
		return keyPrefix + userID
	}
	return GuestKey
}

// Service is the liked set of the current identity.
//
// The set is read from the store when first used and again whenever the identity's storage key
// changes. Every toggle is written back before it returns. Safe for concurrent use.
type Service struct {
	store    Store
	identity Identity
	logger   *log.Logger
	now      func() time.Time

	mu     sync.Mutex
	key    string
	items  []models.LikedItem
	loaded bool
}

// New creates a Service over store for identity. A nil identity means guest.
func New(store Store, identity Identity, logger *log.Logger) *Service {
	if identity == nil {
		identity = Guest{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{store: store, identity: identity, logger: logger, now: time.Now}
}

// Load (re)reads the set for the current identity.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, StorageKey(s.identity))
}

// Key returns the storage key of the loaded set.
func (s *Service) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// IsLiked reports whether an entry with item's identity is in the set.
func (s *Service) IsLiked(item models.Likeable) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	return s.indexOf(models.IdentityOf(item)) >= 0
}

// Toggle removes item from the set if present, otherwise adds it liked now.
// The updated set is persisted before returning; on a write failure the set is left unchanged.
// It reports whether item is liked afterwards.
func (s *Service) Toggle(ctx context.Context, item models.Likeable) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key := StorageKey(s.identity); !s.loaded || key != s.key {
		if err := s.load(ctx, key); err != nil {
			return false, err
		}
	}

	previous := s.items
	next := slices.Clone(s.items)

	liked := false
	if i := s.indexOf(models.IdentityOf(item)); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		entry, err := models.NewLikedItem(item, s.now())
		if err != nil {
			return false, err
		}
		next = append(next, entry)
		liked = true
	}

	s.items = next
	if err := s.persist(ctx); err != nil {
		s.items = previous
		return !liked, err
	}
	return liked, nil
}

// Items returns a copy of the set in insertion order.
func (s *Service) Items() []models.LikedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	return slices.Clone(s.items)
}

// LikedCatalogItems returns the liked hymns of catalog in catalog order.
func (s *Service) LikedCatalogItems(catalog []models.Hymn) []models.Hymn {
	s.mu.Lock()
	s.refresh()
	ids := make(map[string]bool, len(s.items))
	for _, item := range s.items {
		if item.IsCatalog() {
			ids[item.Identity()] = true
		}
	}
	s.mu.Unlock()

	out := []models.Hymn{}
	for _, h := range catalog {
		if ids[h.Identity()] {
			out = append(out, h)
		}
	}
	return out
}

// LikedGenerated returns liked generated hymns, most recently liked first.
func (s *Service) LikedGenerated() []models.LikedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()

	out := []models.LikedItem{}
	for _, item := range s.items {
		if !item.IsCatalog() {
			out = append(out, item)
		}
	}
	slices.SortStableFunc(out, func(a, b models.LikedItem) int {
		switch {
		case a.LikedAt > b.LikedAt:
			return -1
		case a.LikedAt < b.LikedAt:
			return 1
		default:
			return 0
		}
	})
	return out
}

// refresh reloads the set when the identity's storage key no longer matches the loaded one.
// A failed read leaves the set empty under the new key so another user's likes are never shown.
func (s *Service) refresh() {
	key := StorageKey(s.identity)
	if s.loaded && key == s.key {
		return
	}
	if err := s.load(context.Background(), key); err != nil {
		s.logger.Warn("failed to reload liked set", "key", key, "error", err)
		s.key = key
		s.items = []models.LikedItem{}
		s.loaded = false
	}
}

func (s *Service) indexOf(identity string) int {
	return slices.IndexFunc(s.items, func(item models.LikedItem) bool {
		return item.Identity() == identity
	})
}

// load replaces the in-memory set with the stored set under key. Malformed data reads as empty.
func (s *Service) load(ctx context.Context, key string) error {
	raw, ok, err := s.store.Read(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read liked set: %w", err)
	}

	items := []models.LikedItem{}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			s.logger.Warn("ignoring malformed liked set", "key", key, "error", err)
			items = []models.LikedItem{}
		}
	}

	s.key = key
	s.items = items
	s.loaded = true
	return nil
}

func (s *Service) persist(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode liked set: %w", err)
	}
	if err := s.store.Write(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to write liked set: %w", err)
	}
	return nil
}
