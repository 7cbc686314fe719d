// Package pipeline provides the cluster build pipeline for covercluster.
//
// This package implements the complete index → resolve → layout → render
// pipeline used by both the CLI and the API server. By centralizing this
// logic, both entry points apply the same defaults, caching and error
// reporting.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Index: read the song index and pick the weighted section
//  2. Resolve: size every entry and decode its cover concurrently
//  3. Layout: place and tighten the covers (cached)
//  4. Render: compose, paint and encode the cluster image (cached)
//
// Entries whose cover is missing or cannot be decoded are logged at warn
// level and excluded. If no cover resolves, the build fails with a
// NO_IMAGES error and the exclusions are still reported in the [Result].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    IndexFile: "index.txt",
//	    CoversDir: "covers",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("cluster.png", result.Artifact, 0o644)
package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/covercluster/pkg/cache"
	"github.com/matzehuels/covercluster/pkg/cluster"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/index"
	"github.com/matzehuels/covercluster/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultIndexFile is the index read when none is given.
	DefaultIndexFile = "index.txt"

	// DefaultCoversDir is the cover directory used when none is given.
	DefaultCoversDir = "covers"

	// DefaultWorkers bounds concurrent cover decoding.
	DefaultWorkers = 8

	// DefaultSection is the index section that weights the cluster.
	DefaultSection = string(index.SectionAlbums)

	// DefaultFormat is the output image format.
	DefaultFormat = string(render.PNG)

	// MaxCoverSize bounds the edge of a single cover in pixels. Every cover
	// is decoded and resized in memory at this size.
	MaxCoverSize = 4096

	// MaxTightenPasses bounds the tightener pass limit.
	MaxTightenPasses = 10000
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Resolver turns an entry name into a decoded, resized cover.
// [covers.Dir] is the standard implementation.
//
// [covers.Dir]: github.com/matzehuels/covercluster/pkg/covers.Dir
type Resolver interface {
	// Resolve returns the cover for name resized to size×size.
	Resolve(ctx context.Context, name string, size int) (image.Image, error)

	// Fingerprint identifies the current cover file for name, or returns ""
	// when there is none.
	Fingerprint(name string) string
}

// Options contains all configuration for a cluster build.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Index options. Index takes precedence over IndexFile.
	IndexFile string       `json:"-"`
	Index     *index.Index `json:"-"`
	Section   string       `json:"section,omitempty"`
	Encodings []string     `json:"encodings,omitempty"`

	// Resolve options. Resolver takes precedence over CoversDir.
	CoversDir string   `json:"-"`
	Resolver  Resolver `json:"-"`
	MinSize   int      `json:"min_size,omitempty"`
	MaxSize   int      `json:"max_size,omitempty"`
	Workers   int      `json:"-"`

	// Layout options
	TightenPasses int  `json:"tighten_passes,omitempty"`
	SkipTighten   bool `json:"skip_tighten,omitempty"`

	// Render options
	Background string `json:"background,omitempty"`
	Format     string `json:"format,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// SetDefaults fills every unset field with its default.
func (o *Options) SetDefaults() {
	if o.IndexFile == "" && o.Index == nil {
		o.IndexFile = DefaultIndexFile
	}
	if o.Section == "" {
		o.Section = DefaultSection
	}
	if len(o.Encodings) == 0 {
		o.Encodings = index.DefaultEncodings
	}
	if o.CoversDir == "" {
		o.CoversDir = DefaultCoversDir
	}
	if o.MinSize == 0 {
		o.MinSize = cluster.DefaultMinSize
	}
	if o.MaxSize == 0 {
		o.MaxSize = cluster.DefaultMaxSize
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.TightenPasses == 0 {
		o.TightenPasses = cluster.DefaultTightenPasses
	}
	if o.Background == "" {
		o.Background = render.DefaultBackground
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Call it after [Options.SetDefaults].
func (o *Options) Validate() error {
	if o.MinSize <= 0 || o.MaxSize <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "sizes must be positive (min %d, max %d)", o.MinSize, o.MaxSize)
	}
	if o.MinSize > o.MaxSize {
		return errs.New(errs.ErrCodeInvalidInput, "min size %d exceeds max size %d", o.MinSize, o.MaxSize)
	}
	if o.MaxSize > MaxCoverSize {
		return errs.New(errs.ErrCodeInvalidInput, "max size %d exceeds the limit of %d", o.MaxSize, MaxCoverSize)
	}
	if o.TightenPasses < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "tighten passes must not be negative, got %d", o.TightenPasses)
	}
	if o.TightenPasses > MaxTightenPasses {
		return errs.New(errs.ErrCodeInvalidInput, "tighten passes %d exceed the limit of %d", o.TightenPasses, MaxTightenPasses)
	}
	if _, err := index.ParseSection(o.Section); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "section")
	}
	if _, err := render.ParseFormat(o.Format); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "format")
	}
	if _, err := render.ParseColor(o.Background); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "background")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates the result.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// passes returns the tighten pass limit, honoring SkipTighten.
func (o *Options) passes() int {
	if o.SkipTighten {
		return 0
	}
	return o.TightenPasses
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{TightenPasses: o.passes()}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(fingerprints []string) cache.ArtifactKeyOpts {
	bg := o.Background
	if c, err := render.ParseColor(bg); err == nil {
		bg = render.Hex(c)
	}
	f, _ := render.ParseFormat(o.Format)
	return cache.ArtifactKeyOpts{
		Format:       string(f),
		Background:   bg,
		Fingerprints: fingerprints,
	}
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Exclusion records an index entry that could not be placed.
type Exclusion struct {
	ID     string    `json:"id" bson:"id"`
	Reason string    `json:"reason" bson:"reason"`
	Code   errs.Code `json:"code,omitempty" bson:"code,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Index is the parsed song index.
	Index index.Index

	// Items are the resolved entries in index order, each with its cover.
	Items []cluster.Item

	// Excluded lists the entries whose cover could not be resolved, in
	// index order.
	Excluded []Exclusion

	// Layout holds the final (tightened) positions.
	Layout *cluster.Layout

	// LayoutHash is the content hash of the layout placements.
	LayoutHash string

	// Composition is the layout translated onto the canvas.
	Composition cluster.Composition

	// Artifact is the encoded image in Format.
	Artifact []byte
	Format   render.Format

	// Tighten describes the compaction pass. It is zero when the layout
	// came from the cache and the cached entry predates it.
	Tighten cluster.TightenStats

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entries     int
	Resolved    int
	IndexTime   time.Duration
	ResolveTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether the artifact came from cache
}

// Summary is the short report printed after a build.
type Summary struct {
	Albums   int `json:"albums"`
	Width    int `json:"width"`
	Height   int `json:"height"`
	Excluded int `json:"excluded"`
}

// Summary reports the album count and canvas size.
func (r *Result) Summary() Summary {
	return Summary{
		Albums:   len(r.Composition.Tiles),
		Width:    r.Composition.Width,
		Height:   r.Composition.Height,
		Excluded: len(r.Excluded),
	}
}

// String formats the summary for terminal output.
func (s Summary) String() string {
	return fmt.Sprintf("%d albums, %dx%d", s.Albums, s.Width, s.Height)
}
