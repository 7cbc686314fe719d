package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/covercluster/pkg/cache"
	"github.com/matzehuels/covercluster/pkg/cluster"
	"github.com/matzehuels/covercluster/pkg/observability"
	"github.com/matzehuels/covercluster/pkg/render"
)

// RenderFromComposition paints comp and encodes it in the configured
// format.
func RenderFromComposition(comp cluster.Composition, opts Options) ([]byte, render.Format, error) {
	f, err := render.ParseFormat(opts.Format)
	if err != nil {
		return nil, "", err
	}
	bg, err := render.ParseColor(opts.Background)
	if err != nil {
		return nil, "", err
	}

	img := render.Paint(comp, render.Options{Background: bg})
	var buf bytes.Buffer
	if err := render.Encode(&buf, img, f); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), f, nil
}

// RenderWithCacheInfo renders the composition of a layout, reusing a cached
// artifact when the layout, render options and cover files are unchanged.
// The boolean reports a cache hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, comp cluster.Composition, layoutHash string, res Resolver, opts Options) ([]byte, render.Format, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()

	fingerprints := make([]string, len(comp.Tiles))
	for i, t := range comp.Tiles {
		fingerprints[i] = res.Fingerprint(t.ID)
	}
	key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(fingerprints))
	f, _ := render.ParseFormat(opts.Format)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypeArtifact)
			hooks.OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), nil)
			return data, f, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeArtifact)
	}

	data, f, err := RenderFromComposition(comp, opts)
	hooks.OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, cache.KeyTypeArtifact, len(data))
	}
	return data, f, false, nil
}
