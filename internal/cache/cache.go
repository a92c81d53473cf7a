package cache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Store is the caching surface the handlers use. Values round-trip through
// JSON so the in-memory and Redis implementations are interchangeable.
type Store interface {
	Marshal(key string, value interface{}, ttl ...time.Duration) error
	Unmarshal(key string, target interface{}) (bool, error)
	Delete(key string)
	DeleteByPrefix(prefix string)
}

type item struct {
	data       []byte
	expiration int64
}

// Memory is a TTL cache held in process memory.
type Memory struct {
	items map[string]item
	mu    sync.RWMutex
	ttl   time.Duration
}

func NewMemory(defaultTTL time.Duration) *Memory {
	c := &Memory{
		items: make(map[string]item),
		ttl:   defaultTTL,
	}
	go c.cleanupExpired()
	return c
}

func (c *Memory) set(key string, data []byte, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.ttl
	if len(ttl) > 0 {
		duration = ttl[0]
	}

	c.items[key] = item{
		data:       data,
		expiration: time.Now().Add(duration).UnixNano(),
	}
}

func (c *Memory) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found {
		return nil, false
	}
	if time.Now().UnixNano() > it.expiration {
		return nil, false
	}
	return it.data, true
}

func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Memory) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}

func (c *Memory) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Memory) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now().UnixNano()
		for key, it := range c.items {
			if now > it.expiration {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

// Marshal serializes and stores a value.
func (c *Memory) Marshal(key string, value interface{}, ttl ...time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.set(key, data, ttl...)
	return nil
}

// Unmarshal fetches and deserializes a value. The boolean reports a hit.
func (c *Memory) Unmarshal(key string, target interface{}) (bool, error) {
	data, found := c.get(key)
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return true, nil
}
