package repofakes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

var _ repository.SessionCache = (*FakeSessionCache)(nil)

type cacheItem struct {
	entry     domain.SessionEntry
	expiresAt time.Time
}

// ErrCacheDown is returned by FakeSessionCache writes while Down is set.
var ErrCacheDown = errors.New("session cache unavailable")

// FakeSessionCache is an in-memory TTL map. Setting Down simulates an
// unreachable backend: writes fail and reads miss.
type FakeSessionCache struct {
	items map[string]cacheItem
	lock  sync.RWMutex
	Down  bool
}

func NewFakeSessionCache() *FakeSessionCache {
	return &FakeSessionCache{items: make(map[string]cacheItem)}
}

func (c *FakeSessionCache) Set(_ context.Context, token string, entry domain.SessionEntry, ttl time.Duration) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Down {
		return ErrCacheDown
	}
	c.items[repository.SessionKey(token)] = cacheItem{entry: entry, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *FakeSessionCache) Get(_ context.Context, token string) (*domain.SessionEntry, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.Down {
		return nil, false
	}
	item, ok := c.items[repository.SessionKey(token)]
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	entry := item.entry
	return &entry, true
}

func (c *FakeSessionCache) Delete(_ context.Context, token string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Down {
		return
	}
	delete(c.items, repository.SessionKey(token))
}

// TTL returns the remaining lifetime of token's entry.
func (c *FakeSessionCache) TTL(token string) (time.Duration, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	item, ok := c.items[repository.SessionKey(token)]
	if !ok {
		return 0, false
	}
	return time.Until(item.expiresAt), true
}
