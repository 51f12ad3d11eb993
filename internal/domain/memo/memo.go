// Package memo provides the content-addressed classification cache.
package memo

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/okian/pbpwpa/internal/domain/classify"
	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/pkg/metrics"
)

const defaultSizeHint = 4096

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries int64
	Hits    int64
	Misses  int64
	Shared  int64
}

// Cache memoizes parsed payloads by normalized description. Entries are
// never evicted; a Cache lives for one batch run. At most one parse is in
// flight per key; concurrent callers for the same key share its result.
//
// Only the text-dependent payload is cached. Team attribution is applied
// per row by classify.Resolve, so one entry serves every game.
type Cache struct {
	parser classify.Parser

	mu      sync.RWMutex
	entries map[string]model.Payload
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	shared atomic.Int64
	size   atomic.Int64

	sizeHint       int
	metricsEnabled bool
}

// New wraps parser with a cache. A nil parser means the default rule cascade.
func New(parser classify.Parser, opts ...Option) *Cache {
	if parser == nil {
		parser = classify.ParserFunc(classify.Parse)
	}
	c := &Cache{
		parser:         parser,
		sizeHint:       defaultSizeHint,
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[string]model.Payload, c.sizeHint)
	return c
}

// Parse returns the cached payload for description, parsing it on first use.
func (c *Cache) Parse(description string) model.Payload {
	key := classify.Normalize(description)
	if p, ok := c.lookup(key); ok {
		c.hits.Add(1)
		if c.metricsEnabled {
			metrics.RecordClassifyCacheHit()
		}
		return p
	}

	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		// A caller that finished between our lookup and Do already stored it.
		if p, ok := c.lookup(key); ok {
			c.hits.Add(1)
			return p, nil
		}
		p := c.parser.Parse(key)
		c.mu.Lock()
		c.entries[key] = p
		c.mu.Unlock()
		c.size.Add(1)
		c.misses.Add(1)
		if c.metricsEnabled {
			metrics.RecordClassifyCacheMiss()
			metrics.UpdateClassifyCacheEntries(int(c.size.Load()))
		}
		return p, nil
	})
	if shared {
		c.shared.Add(1)
		if c.metricsEnabled {
			metrics.RecordClassifyCacheShared()
		}
	}
	return v.(model.Payload)
}

func (c *Cache) lookup(key string) (model.Payload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[key]
	return p, ok
}

// Size returns the number of distinct descriptions cached.
func (c *Cache) Size() int64 {
	return c.size.Load()
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.size.Load(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Shared:  c.shared.Load(),
	}
}
