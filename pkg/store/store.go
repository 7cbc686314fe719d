// Package store persists cluster builds made through the API server.
//
// A [Build] records the summary, placements and encoded image of one
// pipeline run. Two backends implement [Store]: [FileStore] keeps builds in
// a local directory and [MongoStore] keeps them in a MongoDB collection so
// several server instances can share them.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/covercluster/pkg/cluster"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/pipeline"
)

// DefaultListLimit bounds [Store.List] when no limit is given.
const DefaultListLimit = 50

// Build is a stored cluster build.
type Build struct {
	ID         string               `json:"id" bson:"_id"`
	CreatedAt  time.Time            `json:"created_at" bson:"created_at"`
	Albums     int                  `json:"albums" bson:"albums"`
	Width      int                  `json:"width" bson:"width"`
	Height     int                  `json:"height" bson:"height"`
	Format     string               `json:"format" bson:"format"`
	LayoutHash string               `json:"layout_hash" bson:"layout_hash"`
	Excluded   []pipeline.Exclusion `json:"excluded,omitempty" bson:"excluded,omitempty"`
	Placements []cluster.Placement  `json:"placements" bson:"placements"`

	// Artifact is the encoded image. It is omitted from JSON responses and
	// from List results.
	Artifact []byte `json:"-" bson:"artifact,omitempty"`
}

// Store persists builds.
type Store interface {
	// Save stores b. The ID must be set.
	Save(ctx context.Context, b *Build) error

	// Get returns the build with the given id, including its artifact.
	// A missing build is a BUILD_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Build, error)

	// List returns up to limit builds, newest first, without artifacts.
	List(ctx context.Context, limit int) ([]Build, error)

	// Close releases backend resources.
	Close() error
}

// NewID returns a new random build id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the form produced by [NewID].
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// NewBuild creates a build record from a successful pipeline result.
func NewBuild(res *pipeline.Result) *Build {
	return &Build{
		ID:         NewID(),
		CreatedAt:  time.Now().UTC(),
		Albums:     len(res.Composition.Tiles),
		Width:      res.Composition.Width,
		Height:     res.Composition.Height,
		Format:     string(res.Format),
		LayoutHash: res.LayoutHash,
		Excluded:   res.Excluded,
		Placements: placements(res.Composition),
		Artifact:   res.Artifact,
	}
}

// placements returns the canvas positions of the composition tiles.
func placements(c cluster.Composition) []cluster.Placement {
	out := make([]cluster.Placement, len(c.Tiles))
	for i, t := range c.Tiles {
		out[i] = cluster.Placement{ID: t.ID, X: t.X, Y: t.Y, Size: t.Size}
	}
	return out
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeBuildNotFound, "build %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
