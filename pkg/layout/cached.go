package layout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/dag"
	"github.com/matzehuels/flowchart/pkg/observability"
)

// Cached memoises another Layouter by topology.
// Cache failures are logged and fall through to the inner layouter.
type Cached struct {
	Inner  Layouter
	Cache  cache.Cache
	TTL    time.Duration
	Logger *log.Logger
}

// NewCached wraps inner with c. A nil logger uses log.Default().
func NewCached(inner Layouter, c cache.Cache, ttl time.Duration, logger *log.Logger) *Cached {
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{Inner: inner, Cache: c, TTL: ttl, Logger: logger}
}

// Name returns the inner layouter's name.
func (c *Cached) Name() string { return c.Inner.Name() }

// Layout returns the cached positions for g's topology or computes and
// stores them. Failed layouts are not cached.
func (c *Cached) Layout(ctx context.Context, g *dag.DAG) (map[string]Position, error) {
	name := c.Inner.Name()
	key := cache.LayoutKey(name, g.NodeIDs(), pairs(g))
	hooks := observability.Cache()

	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("layout cache read failed", "engine", name, "err", err)
	}
	if hit {
		var pos map[string]Position
		if err := json.Unmarshal(data, &pos); err == nil {
			hooks.OnCacheHit(ctx, name)
			c.Logger.Debug("layout cache hit", "engine", name, "nodes", g.NodeCount())
			return pos, nil
		}
		c.Logger.Warn("layout cache entry unreadable", "engine", name)
	}
	hooks.OnCacheMiss(ctx, name)

	pos, err := c.Inner.Layout(ctx, g)
	if err != nil {
		return pos, err
	}

	if data, err := json.Marshal(pos); err == nil {
		if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
			c.Logger.Warn("layout cache write failed", "engine", name, "err", err)
		} else {
			hooks.OnCacheSet(ctx, name, len(data))
		}
	}
	return pos, nil
}

var _ Layouter = (*Cached)(nil)
