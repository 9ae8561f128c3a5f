package worksheets

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/JaimeStill/worksheet-lab/pkg/cache"
)

// CachedStore serves Find from a cache and invalidates entries on edit and delete.
// Cache failures are logged and fall through to the underlying store.
type CachedStore struct {
	Store
	cache  cache.System
	logger *slog.Logger
}

// NewCachedStore wraps store with a read-through cache.
func NewCachedStore(store Store, c cache.System, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		Store:  store,
		cache:  c,
		logger: logger.With("store", "cache"),
	}
}

func cacheKey(id string) string {
	return "worksheet:" + id
}

func (s *CachedStore) Find(ctx context.Context, id string) (*Worksheet, error) {
	key := cacheKey(id)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var w Worksheet
		if err := json.Unmarshal(data, &w); err == nil {
			return &w, nil
		}
		s.logger.Warn("cache entry corrupt", "key", key)
	}

	w, err := s.Store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(w); err == nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return w, nil
}

func (s *CachedStore) Update(ctx context.Context, id string, cmd EditCommand) (*Worksheet, error) {
	w, err := s.Store.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return w, nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("cache invalidation failed", "id", id, "error", err)
	}
}
