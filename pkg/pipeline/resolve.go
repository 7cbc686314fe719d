package pipeline

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/covercluster/pkg/cluster"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/observability"
)

// ResolveItems decodes the cover of every item with at most workers
// resolutions in flight. It returns the resolved items and the exclusions,
// both in input order. Resolution failures are not errors; only a
// cancelled context is.
func ResolveItems(ctx context.Context, res Resolver, items []cluster.Item, workers int) ([]cluster.Item, []Exclusion, error) {
	start := time.Now()
	failures := make([]error, len(items))
	out := make([]cluster.Item, len(items))
	copy(out, items)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range out {
		g.Go(func() error {
			img, err := res.Resolve(gctx, out[i].ID, out[i].Size)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				return nil
			}
			out[i].Image = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	resolved := make([]cluster.Item, 0, len(out))
	var excluded []Exclusion
	for i, it := range out {
		if failures[i] != nil {
			excluded = append(excluded, Exclusion{
				ID:     it.ID,
				Reason: reason(failures[i]),
				Code:   errs.GetCode(failures[i]),
			})
			continue
		}
		resolved = append(resolved, it)
	}

	observability.Pipeline().OnResolveComplete(ctx, len(resolved), len(excluded), time.Since(start))
	return resolved, excluded, nil
}

// reason formats a resolution failure without its error code prefix.
func reason(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return errs.UserMessage(err)
}
