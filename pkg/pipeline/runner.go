package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/covercluster/pkg/cache"
	"github.com/matzehuels/covercluster/pkg/cluster"
	"github.com/matzehuels/covercluster/pkg/covers"
	errs "github.com/matzehuels/covercluster/pkg/errors"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete index → resolve → layout → render pipeline.
//
// When no cover resolves, Execute returns a NO_IMAGES error together with a
// Result that carries the index and the exclusions, so callers can report
// them.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	result := &Result{}

	// Stage 1: Index
	indexStart := time.Now()
	idx, weights, err := LoadIndex(ctx, opts)
	result.Index = idx
	if err != nil {
		return nil, err
	}
	result.Stats.IndexTime = time.Since(indexStart)
	result.Stats.Entries = len(weights)

	logger.Info("loaded index",
		"section", opts.Section,
		"entries", len(weights),
		"duration", result.Stats.IndexTime)

	// Stage 2: Resolve
	resolveStart := time.Now()
	res := opts.Resolver
	if res == nil {
		res = covers.NewDir(opts.CoversDir)
	}
	sized := cluster.Sized(weights, cluster.SizeRange{Min: opts.MinSize, Max: opts.MaxSize})
	items, excluded, err := ResolveItems(ctx, res, sized, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("resolve covers: %w", err)
	}
	result.Items = items
	result.Excluded = excluded
	result.Stats.Resolved = len(items)
	result.Stats.ResolveTime = time.Since(resolveStart)

	for _, ex := range excluded {
		logger.Warn("excluding entry", "id", ex.ID, "reason", ex.Reason)
	}
	if len(items) == 0 {
		return result, errs.New(errs.ErrCodeNoImages,
			"no covers could be loaded (%d entries excluded)", len(excluded))
	}

	logger.Info("resolved covers",
		"resolved", len(items),
		"excluded", len(excluded),
		"duration", result.Stats.ResolveTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	layout, st, layoutHit := r.GenerateLayoutWithCacheInfo(ctx, items, opts)
	result.Layout = layout
	result.LayoutHash = LayoutHash(layout)
	result.Tighten = st
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"placed", layout.Len(),
		"passes", st.Passes,
		"moves", st.Moves,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	result.Composition = cluster.Compose(layout)
	artifact, format, renderHit, err := r.RenderWithCacheInfo(ctx, result.Composition, result.LayoutHash, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = artifact
	result.Format = format
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered cluster",
		"width", result.Composition.Width,
		"height", result.Composition.Height,
		"format", format,
		"bytes", len(artifact),
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
