// Package session holds the per-session mutable state around the
// immutable snapshot: bookmarked article ids and the alert working set.
package session

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/storage"
)

// Bookmarks is the session's set of bookmarked article ids.
// A nil store keeps the set in memory only; store failures degrade to
// in-memory behavior and are logged, never surfaced.
type Bookmarks struct {
	mu     sync.Mutex
	ids    map[string]struct{}
	store  storage.SessionStore
	logger *zap.Logger
}

// NewBookmarks creates the bookmark set, seeding it from the store when
// one is configured.
func NewBookmarks(ctx context.Context, store storage.SessionStore, logger *zap.Logger) *Bookmarks {
	b := &Bookmarks{
		ids:    make(map[string]struct{}),
		store:  store,
		logger: logger,
	}
	if store != nil {
		persisted, err := store.Bookmarks(ctx)
		if err != nil {
			logger.Warn("failed to load persisted bookmarks", zap.Error(err))
			return b
		}
		for _, id := range persisted {
			b.ids[id] = struct{}{}
		}
	}
	return b
}

// Toggle adds the id if absent and removes it if present, returning
// whether the article is bookmarked afterwards.
func (b *Bookmarks) Toggle(ctx context.Context, articleID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.ids[articleID]; ok {
		delete(b.ids, articleID)
		if b.store != nil {
			if err := b.store.RemoveBookmark(ctx, articleID); err != nil {
				b.logger.Warn("failed to persist bookmark removal", zap.String("article_id", articleID), zap.Error(err))
			}
		}
		return false
	}

	b.ids[articleID] = struct{}{}
	if b.store != nil {
		if err := b.store.AddBookmark(ctx, articleID); err != nil {
			b.logger.Warn("failed to persist bookmark", zap.String("article_id", articleID), zap.Error(err))
		}
	}
	return true
}

// Has reports whether the article is bookmarked.
func (b *Bookmarks) Has(articleID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ids[articleID]
	return ok
}

// List returns the bookmarked ids sorted ascending.
func (b *Bookmarks) List() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.ids))
	for id := range b.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
