// Package pkg provides the core libraries for covercluster.
//
// # Overview
//
// Covercluster turns a listening index (songs per album) into one image in
// which every album cover is scaled by its song count and packed edge to
// edge around the most-played album. The pkg directory is organized into
// four areas:
//
//  1. Domain logic: [cluster] packs sized items, [index] reads the index,
//     [covers] loads cover art, [render] paints and encodes the canvas
//  2. Orchestration: [pipeline] runs index → resolve → layout → render
//  3. Infrastructure: [cache], [store], [session], [config], [httputil],
//     [observability]
//  4. Outer surfaces: [api] serves builds over HTTP, [crawl] and
//     [integrations] fetch playlists and covers from a music catalog
//
// # Architecture
//
// The typical data flow:
//
//	Playlists (catalog API)
//	         ↓
//	    [crawl] package (count songs, download covers)
//	         ↓
//	index.txt + covers/
//	         ↓
//	    [pipeline] package
//	         ├─ [index]   weights of the selected section
//	         ├─ [covers]  resize each cover, exclude unreadable ones
//	         ├─ [cluster] place, tighten, compose
//	         └─ [render]  paint and encode PNG or JPEG
//	         ↓
//	cluster.png (CLI) or a stored build (API)
//
// # Quick Start
//
// Pack items without any I/O:
//
//	items := cluster.Sized([]cluster.Weight{
//	    {ID: "Abbey Road", Weight: 12},
//	    {ID: "Revolver", Weight: 3},
//	}, cluster.DefaultSizeRange())
//	for i := range items {
//	    items[i].Image = covers[items[i].ID] // items without an image are skipped
//	}
//	layout, stats := cluster.Build(items, cluster.DefaultTightenPasses)
//	comp := cluster.Compose(layout)
//
// Run the full pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    IndexFile: "index.txt",
//	    CoversDir: "covers",
//	})
//	os.WriteFile("cluster.png", res.Artifact, 0o644)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/cluster/...            # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [cluster]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/cluster
// [index]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/index
// [covers]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/covers
// [render]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/store
// [session]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/config
// [httputil]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/observability
// [api]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/api
// [crawl]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/crawl
// [integrations]: https://pkg.go.dev/github.com/matzehuels/covercluster/pkg/integrations
package pkg
