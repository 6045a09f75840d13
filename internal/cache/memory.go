package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memory is a process-wide Cache. A ttl <= 0 disables caching.
type Memory struct {
	ttl     time.Duration
	entries *ttlcache.Cache[string, []byte]
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl: ttl,
		entries: ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](ttl),
			// Age counts from the fetch, not from the last read.
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

func (m *Memory) Load(_ context.Context, key string, dest any) (bool, error) {
	item := m.entries.Get(key)
	if item == nil {
		return false, nil
	}
	if err := json.Unmarshal(item.Value(), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Store(_ context.Context, key string, value any) error {
	if m.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries.Set(key, data, ttlcache.DefaultTTL)
	return nil
}

func (m *Memory) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.entries.Delete(k)
	}
	return nil
}
