// Package cache provides the AppStream cache shared by all package backends.
package cache

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/quantmind-br/appcenter/internal/appstream"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries bounds the cache when no size is configured
const DefaultMaxEntries = 256

// Key identifies one cached collection
type Key string

// KeyFor builds the cache key of a package: the backend name, the package id
// and every extra attribute in key order. Each part is query-escaped so a
// value containing a separator cannot alias another package.
func KeyFor(backend string, pkg core.Package) Key {
	var b strings.Builder
	b.WriteString(url.QueryEscape(backend))
	b.WriteByte(':')
	b.WriteString(url.QueryEscape(pkg.ID))
	for _, k := range pkg.ExtraKeys() {
		b.WriteByte(';')
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pkg.Extra[k]))
	}
	return Key(b.String())
}

// Loader produces the collection for a key on a cache miss. The context is
// detached from the cancellation of the caller that started the load.
type Loader func(ctx context.Context) (*appstream.Collection, error)

// Options configures an AppstreamCache
type Options struct {
	// MaxEntries caps the number of cached collections; <= 0 selects DefaultMaxEntries
	MaxEntries int
	// TTL expires entries after the given duration; 0 keeps them until evicted
	TTL     time.Duration
	Metrics *metrics.CacheMetrics
	Log     *zerolog.Logger
}

// Stats is a snapshot of the cache counters
type Stats struct {
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Loads      uint64 `json:"loads"`
	LoadErrors uint64 `json:"load_errors"`
	Evictions  uint64 `json:"evictions"`
	Entries    int    `json:"entries"`
}

// AppstreamCache maps package identities to parsed AppStream collections.
// It is safe for concurrent use and meant to be shared by pointer between
// backends. Concurrent misses on the same key run the loader once.
type AppstreamCache struct {
	lru     *expirable.LRU[Key, *appstream.Collection]
	group   singleflight.Group
	metrics *metrics.CacheMetrics
	log     *zerolog.Logger

	hits       atomic.Uint64
	misses     atomic.Uint64
	loads      atomic.Uint64
	loadErrors atomic.Uint64
	evictions  atomic.Uint64
}

// New creates an empty cache
func New(opts Options) *AppstreamCache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCacheMetrics(nil)
	}
	if opts.Log == nil {
		nop := zerolog.Nop()
		opts.Log = &nop
	}

	c := &AppstreamCache{
		metrics: opts.Metrics,
		log:     opts.Log,
	}
	// The callback runs under the LRU lock and must not call back into it.
	c.lru = expirable.NewLRU[Key, *appstream.Collection](opts.MaxEntries, func(_ Key, _ *appstream.Collection) {
		c.evictions.Add(1)
		c.metrics.Evictions.Inc()
	}, opts.TTL)

	return c
}

// Get returns the cached collection for key
func (c *AppstreamCache) Get(key Key) (*appstream.Collection, bool) {
	coll, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
		c.metrics.Hits.Inc()
	} else {
		c.misses.Add(1)
		c.metrics.Misses.Inc()
	}
	return coll, ok
}

// Add stores coll under key, replacing any previous entry
func (c *AppstreamCache) Add(key Key, coll *appstream.Collection) {
	c.lru.Add(key, coll)
	c.updateEntries()
}

// GetOrLoad returns the cached collection for key, calling load on a miss.
// Callers missing on the same key at the same time share a single load.
// A caller whose ctx ends stops waiting and gets ctx.Err(); the shared load
// keeps running for the others. Failed loads are not cached.
func (c *AppstreamCache) GetOrLoad(ctx context.Context, key Key, load Loader) (*appstream.Collection, error) {
	if coll, ok := c.Get(key); ok {
		return coll, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(key), func() (interface{}, error) {
		if coll, ok := c.lru.Peek(key); ok {
			return coll, nil
		}

		start := time.Now()
		coll, err := load(loadCtx)
		if err != nil {
			c.loadErrors.Add(1)
			c.metrics.LoadErrors.WithLabelValues(errorKind(err)).Inc()
			return nil, err
		}

		c.loads.Add(1)
		c.metrics.Loads.Inc()
		c.Add(key, coll)

		c.log.Debug().
			Str("key", string(key)).
			Int("components", coll.Len()).
			Dur("took", time.Since(start)).
			Msg("appstream collection cached")

		return coll, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.log.Debug().Str("key", string(key)).Msg("stopped waiting for appstream load")
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	if res.Shared {
		c.log.Trace().Str("key", string(key)).Msg("shared in-flight appstream load")
	}

	coll, _ := res.Val.(*appstream.Collection)
	return coll, nil
}

// Remove drops the entry for key
func (c *AppstreamCache) Remove(key Key) bool {
	removed := c.lru.Remove(key)
	c.updateEntries()
	return removed
}

// Purge empties the cache
func (c *AppstreamCache) Purge() {
	c.lru.Purge()
	c.updateEntries()
}

// Len returns the number of cached entries
func (c *AppstreamCache) Len() int {
	return c.lru.Len()
}

// Keys returns the cached keys from oldest to newest
func (c *AppstreamCache) Keys() []Key {
	return c.lru.Keys()
}

// SortedKeys returns the cached keys in lexical order
func (c *AppstreamCache) SortedKeys() []Key {
	keys := c.lru.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Stats returns a snapshot of the cache counters
func (c *AppstreamCache) Stats() Stats {
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Loads:      c.loads.Load(),
		LoadErrors: c.loadErrors.Load(),
		Evictions:  c.evictions.Load(),
		Entries:    c.lru.Len(),
	}
}

func (c *AppstreamCache) updateEntries() {
	c.metrics.Entries.Set(float64(c.lru.Len()))
}

func errorKind(err error) string {
	if kind := core.KindOf(err); kind != nil {
		return kind.Error()
	}
	return "other"
}
