package cache

import (
	"context"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
)

type Manager[T any] struct {
	cache *cache.Cache[T]
}

func NewManager[T any](defaultExpiration, cleanupInterval time.Duration) *Manager[T] {
	client := gocache.New(defaultExpiration, cleanupInterval)
	return &Manager[T]{
		cache: cache.New[T](go_cache.NewGoCache(client)),
	}
}

func (m *Manager[T]) SetWithExpiration(key string, value T, expir time.Duration) error {
	timeout, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	return m.cache.Set(timeout, key, value, store.WithExpiration(expir))
}

// Get reports a miss (expired or never stored) as found=false, not an error.
func (m *Manager[T]) Get(key string) (value T, found bool, err error) {
	timeout, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	const errorMessage = "value not found"
	value, err = m.cache.Get(timeout, key)
	if err != nil {
		if strings.Contains(err.Error(), errorMessage) {
			return value, false, nil
		}
		return value, false, err
	}
	return value, true, nil
}
