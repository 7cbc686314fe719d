package pipeline

import (
	"context"

	"github.com/matzehuels/covercluster/pkg/cluster"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/index"
	"github.com/matzehuels/covercluster/pkg/observability"
)

// LoadIndex returns the index named by opts and the weights of the
// selected section. A preloaded opts.Index is used as is; otherwise
// opts.IndexFile is read and decoded.
//
// A missing index file is returned as a FILE_NOT_FOUND error. An index
// whose section has no entries is an INVALID_INPUT error.
func LoadIndex(ctx context.Context, opts Options) (index.Index, []cluster.Weight, error) {
	var idx index.Index
	if opts.Index != nil {
		idx = *opts.Index
		observability.Pipeline().OnIndexLoaded(ctx, "inline", len(idx.Albums)+len(idx.Artists), 0, nil)
	} else {
		var err error
		idx, err = index.ParseFile(ctx, opts.IndexFile, opts.Encodings)
		if err != nil {
			return idx, nil, err
		}
	}

	section, err := index.ParseSection(opts.Section)
	if err != nil {
		return idx, nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "section")
	}
	weights := idx.Weights(section)
	if len(weights) == 0 {
		return idx, nil, errs.New(errs.ErrCodeInvalidInput, "index has no %s", section)
	}
	return idx, weights, nil
}
