package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/covercluster/pkg/cache"
	"github.com/matzehuels/covercluster/pkg/cluster"
	"github.com/matzehuels/covercluster/pkg/observability"
)

// layoutRecord is the cached form of a computed layout.
type layoutRecord struct {
	Placements []cluster.Placement  `json:"placements"`
	Tighten    cluster.TightenStats `json:"tighten"`
}

// itemKey identifies one item for the layout cache key.
type itemKey struct {
	ID   string `json:"id"`
	Size int    `json:"size"`
}

// ItemsHash hashes the ordered (id, size) list that fully determines a
// layout.
func ItemsHash(items []cluster.Item) string {
	keys := make([]itemKey, len(items))
	for i, it := range cluster.Order(items) {
		keys[i] = itemKey{ID: it.ID, Size: it.Size}
	}
	return cache.HashJSON(keys)
}

// LayoutHash hashes the placements of l.
func LayoutHash(l *cluster.Layout) string {
	return cache.HashJSON(l.Placements())
}

// GenerateLayout places and tightens items.
func GenerateLayout(items []cluster.Item, passes int) (*cluster.Layout, cluster.TightenStats) {
	return cluster.Build(items, passes)
}

// GenerateLayoutWithCacheInfo computes the layout of the resolved items,
// reusing a cached one when the same items were laid out before. The
// boolean reports a cache hit.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, items []cluster.Item, opts Options) (*cluster.Layout, cluster.TightenStats, bool) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(items))
	start := time.Now()

	key := r.Keyer.LayoutKey(ItemsHash(items), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if l, st, ok := r.cachedLayout(ctx, key, items); ok {
			hooks.OnLayoutComplete(ctx, st.Passes, st.Moves, time.Since(start), nil)
			return l, st, true
		}
	}

	l, st := GenerateLayout(items, opts.passes())
	hooks.OnLayoutComplete(ctx, st.Passes, st.Moves, time.Since(start), nil)

	if data, err := json.Marshal(layoutRecord{Placements: l.Placements(), Tighten: st}); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeLayout, len(data))
		}
	}
	return l, st, false
}

func (r *Runner) cachedLayout(ctx context.Context, key string, items []cluster.Item) (*cluster.Layout, cluster.TightenStats, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeLayout)
		return nil, cluster.TightenStats{}, false
	}

	var rec layoutRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeLayout)
		return nil, cluster.TightenStats{}, false
	}
	ordered := cluster.Order(items)
	l, err := cluster.Restore(ordered, rec.Placements)
	if err != nil {
		// Stale or foreign entry; recompute.
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeLayout)
		return nil, cluster.TightenStats{}, false
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyTypeLayout)
	return l, rec.Tighten, true
}
