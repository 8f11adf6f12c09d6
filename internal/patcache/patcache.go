// Package patcache memoizes parse results so that a pattern seen many times
// (a manifest, a REPL session, a long-running service) is parsed once.
//
// Failures are cached along with trees. Returned trees are shared between
// callers and must not be modified.
package patcache

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"rxparse/internal/syntax"
)

// ParseFunc produces the value stored for a key. It must be deterministic.
type ParseFunc func(pattern string, opts syntax.Options) (*syntax.Node, error)

func defaultParse(pattern string, opts syntax.Options) (*syntax.Node, error) {
	return opts.Parse(pattern)
}

type Config struct {
	MaxEntries int64
	Logger     *zap.Logger
	Parse      ParseFunc // defaults to syntax.Options.Parse
}

type entry struct {
	node *syntax.Node
	err  error
}

// Cache is safe for concurrent use. Options.Properties is not part of the
// key; use one Cache per resolver.
type Cache struct {
	store  *ristretto.Cache[string, *entry]
	flight singleflight.Group
	parse  ParseFunc
	log    *zap.Logger
	parses atomic.Int64
}

func New(cfg Config) (*Cache, error) {
	if cfg.MaxEntries <= 0 {
		return nil, errors.Errorf("patcache: max entries must be positive, got %d", cfg.MaxEntries)
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, *entry]{
		// ten counters per entry, as the ristretto docs recommend. Every entry
		// is stored with cost 1, so MaxCost counts entries.
		NumCounters:        cfg.MaxEntries * 10,
		MaxCost:            cfg.MaxEntries,
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "patcache: creating store")
	}
	c := &Cache{store: store, parse: cfg.Parse, log: cfg.Logger}
	if c.parse == nil {
		c.parse = defaultParse
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// Key identifies a parse result: the pattern plus every option that can
// change it.
func Key(pattern string, opts syntax.Options) string {
	limit := opts.NestLimit
	if limit <= 0 {
		limit = syntax.DefaultNestLimit
	}
	return fmt.Sprintf("%s\x00%d\x00%t\x00%s", opts.Flags, limit, opts.DisallowEmpty, pattern)
}

// Parse returns the cached result for pattern, parsing it on a miss.
// Concurrent misses on the same key share one parse.
func (c *Cache) Parse(pattern string, opts syntax.Options) (*syntax.Node, error) {
	key := Key(pattern, opts)
	if e, ok := c.store.Get(key); ok {
		c.log.Debug("pattern cache hit", zap.String("pattern", pattern))
		return e.node, e.err
	}
	v, _, shared := c.flight.Do(key, func() (interface{}, error) {
		if e, ok := c.store.Get(key); ok {
			return e, nil
		}
		c.parses.Add(1)
		node, err := c.parse(pattern, opts)
		e := &entry{node: node, err: err}
		c.store.Set(key, e, 1)
		c.store.Wait()
		return e, nil
	})
	e := v.(*entry)
	c.log.Debug("pattern cache miss",
		zap.String("pattern", pattern),
		zap.Bool("shared", shared),
		zap.Bool("valid", e.err == nil))
	return e.node, e.err
}

type Stats struct {
	Hits   uint64
	Misses uint64
	Parses int64 // calls into the parse function
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.store.Metrics.Hits(),
		Misses: c.store.Metrics.Misses(),
		Parses: c.parses.Load(),
	}
}

func (c *Cache) Close() { c.store.Close() }
