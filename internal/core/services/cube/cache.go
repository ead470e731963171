package cube

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	domain "cubeengine/internal/core/domain/cube"
)

const (
	defaultCacheMax   = 200
	defaultCacheTTLMs = 30_000
)

// cachedEntry is the value stored per key: the finalized result payload plus
// the time it was set, used to compute remaining TTL on a hit.
type cachedEntry struct {
	result domain.Result
	setAt  time.Time
}

// Cache is the bounded LRU + per-entry TTL result cache. Keys are always
// prefixed "<cube>|" so InvalidateCube can evict by prefix; it wraps an
// expirable.LRU and guards the hit/miss/eviction counters under its own
// mutex. Nothing in here touches external I/O.
type Cache struct {
	mu           sync.Mutex
	lru          *expirable.LRU[string, cachedEntry]
	ttl          time.Duration
	stats        domain.CacheStats
	invalidating bool
}

// NewCache constructs a Cache with the given capacity and TTL; zero values
// fall back to the documented defaults (max 200, ttlMs 30000).
func NewCache(max int, ttlMs int64) *Cache {
	if max <= 0 {
		max = defaultCacheMax
	}
	if ttlMs <= 0 {
		ttlMs = defaultCacheTTLMs
	}
	c := &Cache{ttl: time.Duration(ttlMs) * time.Millisecond}
	c.lru = expirable.NewLRU[string, cachedEntry](max, c.onEvict, c.ttl)
	return c
}

// onEvict fires for capacity and TTL removals as well as explicit Remove
// calls; the invalidating flag keeps InvalidateCube from inflating the
// eviction counter.
func (c *Cache) onEvict(key string, value cachedEntry) {
	if c.invalidating {
		return
	}
	c.stats.Evictions++
}

// Get returns the cached result and whether the entry was a hit.
func (c *Cache) Get(key string) (domain.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		return domain.Result{}, false
	}
	c.stats.Hits++
	return entry.result, true
}

// Set stores a result under key, overwriting any existing entry.
func (c *Cache) Set(key string, result domain.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, cachedEntry{result: result, setAt: time.Now()})
}

// GetRemainingTTL returns the milliseconds left before key expires, or nil
// if the key is absent.
func (c *Cache) GetRemainingTTL(key string) *int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Peek(key)
	if !ok {
		return nil
	}
	remaining := c.ttl - time.Since(entry.setAt)
	if remaining < 0 {
		remaining = 0
	}
	ms := remaining.Milliseconds()
	return &ms
}

// InvalidateCube evicts every entry whose key is prefixed with "<name>|" and
// reports how many entries were removed.
func (c *Cache) InvalidateCube(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := name + "|"
	removed := 0
	c.invalidating = true
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			if c.lru.Remove(key) {
				removed++
			}
		}
	}
	c.invalidating = false
	return removed
}

// Stats returns a snapshot of the cache's counters plus current size.
func (c *Cache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.stats
	stats.Size = c.lru.Len()
	return stats
}

// BuildKey builds the canonical cache key for a normalized query plus its
// chosen plan strategy: the cube name prefix followed by a fingerprint whose
// fields appear in one fixed order, with list-valued fields kept in caller
// order. Because the fields come from the normalized struct, not the raw
// payload, permuting keys in the incoming JSON cannot change the result.
func BuildKey(q domain.NormalizedQuery, strategy string) string {
	var b strings.Builder
	b.WriteString(q.Cube)
	b.WriteByte('|')

	b.WriteString("m=")
	b.WriteString(strings.Join(q.Measures, ","))

	b.WriteString(";rows=")
	writeAxes(&b, q.RowAxes)
	b.WriteString(";cols=")
	writeAxes(&b, q.ColumnAxes)

	b.WriteString(";filters=")
	writeFilters(&b, q.Filters)

	if q.Drill != nil {
		fmt.Fprintf(&b, ";drill=%s:%s->%s:%s", q.Drill.Dimension, q.Drill.FromLevel, q.Drill.ToLevel, joinScalars(q.Drill.Path))
	}
	if q.Rollup != nil {
		fmt.Fprintf(&b, ";rollup=%s:%s", q.Rollup.Dimension, q.Rollup.Level)
	}
	fmt.Fprintf(&b, ";flat=%v;plan=%s", q.IncludeFlattened, strategy)
	return b.String()
}

func writeAxes(b *strings.Builder, axes []domain.ResolvedAxis) {
	parts := make([]string, 0, len(axes))
	for _, a := range axes {
		parts = append(parts, a.Dimension+"."+a.Level)
	}
	b.WriteString(strings.Join(parts, ","))
}

func writeFilters(b *strings.Builder, filters []domain.FilterSpec) {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		switch f.Operator {
		case domain.OpIn, domain.OpNin:
			parts = append(parts, fmt.Sprintf("%s.%s:%s:%s", f.Dimension, f.Level, f.Operator, joinScalars(f.Values)))
		case domain.OpBetween:
			parts = append(parts, fmt.Sprintf("%s.%s:%s:%s-%s", f.Dimension, f.Level, f.Operator, f.Low.String(), f.High.String()))
		default:
			parts = append(parts, fmt.Sprintf("%s.%s:%s:%s", f.Dimension, f.Level, f.Operator, f.Value.String()))
		}
	}
	b.WriteString(strings.Join(parts, ","))
}

func joinScalars(values []domain.Scalar) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ",")
}
