// Package favorite owns the device's set of favorite perfume ids.
package favorite

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/internal/storage"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

// Change describes one completed toggle.
type Change struct {
	ID       string
	Favorite bool
	// IDs is the sorted snapshot after the toggle.
	IDs []string
}

// Listener observes toggles. Listeners run while the store is locked for
// writing: they may read the store but must not toggle or subscribe.
type Listener func(ctx context.Context, c Change)

type subscription struct {
	id int
	fn Listener
}

// Store is the favorite set. The current set is an immutable map swapped on
// every toggle, so reads never wait for a write or for storage.
type Store struct {
	kv     storage.Store
	logger *slog.Logger

	set atomic.Pointer[map[string]struct{}]

	mu     sync.Mutex
	subs   []subscription
	nextID int
}

// New creates an empty store persisting to kv. Call Hydrate to load the
// saved set.
func New(kv storage.Store, logger *slog.Logger) *Store {
	s := &Store{kv: kv, logger: logger}
	empty := map[string]struct{}{}
	s.set.Store(&empty)
	return s
}

// Hydrate replaces the in-memory set with the persisted one. A missing key
// leaves the set empty; unreadable or corrupt payloads are logged and also
// leave it empty.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := map[string]struct{}{}
	defer func() { s.set.Store(&loaded) }()

	raw, err := s.kv.Get(ctx, domain.FavoriteStorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to read favorite set",
				slog.String("error", err.Error()),
			)
		}
		return
	}

	ids, err := domain.DecodeIdentifierSet([]byte(raw))
	if err != nil {
		s.logger.WarnContext(ctx, "discarding corrupt favorite set",
			slog.String("error", err.Error()),
		)
		return
	}
	loaded = ids

	s.logger.InfoContext(ctx, "favorite set hydrated",
		slog.Int("count", len(ids)),
	)
}

// Toggle removes id from the set if present and adds it otherwise. The new
// set is installed, listeners are notified, and the set is then persisted.
// It reports whether id is a favorite afterwards.
func (s *Store) Toggle(ctx context.Context, id string) (bool, []string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil, apperrors.InvalidInput("perfume id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := *s.set.Load()
	next := make(map[string]struct{}, len(current)+1)
	for k := range current {
		next[k] = struct{}{}
	}
	_, wasFavorite := next[id]
	if wasFavorite {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	s.set.Store(&next)

	change := Change{ID: id, Favorite: !wasFavorite, IDs: sortedKeys(next)}
	for _, sub := range s.subs {
		sub.fn(ctx, change)
	}

	s.persist(ctx, next)
	return change.Favorite, change.IDs, nil
}

func (s *Store) persist(ctx context.Context, ids map[string]struct{}) {
	data, err := domain.EncodeIdentifierSet(ids)
	if err == nil {
		err = s.kv.Set(ctx, domain.FavoriteStorageKey, string(data))
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist favorite set",
			slog.Int("count", len(ids)),
			slog.String("error", err.Error()),
		)
	}
}

// IDs returns the current members in sorted order.
func (s *Store) IDs() []string {
	return sortedKeys(*s.set.Load())
}

// Contains reports whether id is a favorite.
func (s *Store) Contains(id string) bool {
	_, ok := (*s.set.Load())[id]
	return ok
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	return len(*s.set.Load())
}

// Subscribe registers fn for every later toggle and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func sortedKeys(m map[string]struct{}) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
