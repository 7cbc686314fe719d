package store

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/matzehuels/covercluster/pkg/cluster"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/pipeline"
)

func testBuild(created time.Time) *Build {
	return &Build{
		ID:         NewID(),
		CreatedAt:  created,
		Albums:     2,
		Width:      461,
		Height:     300,
		Format:     "png",
		Excluded:   []pipeline.Exclusion{{ID: "B", Reason: "cover not found", Code: errs.ErrCodeCoverNotFound}},
		Placements: []cluster.Placement{{ID: "A", X: 161, Y: 0, Size: 300}, {ID: "C", X: 0, Y: 122, Size: 161}},
		Artifact:   []byte("png-bytes"),
	}
}

// testStore runs the behavior every Store must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	older, newer := testBuild(base), testBuild(base.Add(time.Hour))
	for _, b := range []*Build{older, newer} {
		if err := s.Save(ctx, b); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	got, err := s.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Width != 461 || len(got.Placements) != 2 || len(got.Excluded) != 1 {
		t.Errorf("Get() = %+v", got)
	}
	if !bytes.Equal(got.Artifact, []byte("png-bytes")) {
		t.Errorf("artifact = %q", got.Artifact)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, base)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("List() order wrong: %v", list)
	}
	for _, b := range list {
		if b.Artifact != nil {
			t.Error("List() should omit artifacts")
		}
	}

	if list, _ := s.List(ctx, 1); len(list) != 1 {
		t.Errorf("List(1) returned %d builds", len(list))
	}

	if _, err := s.Get(ctx, NewID()); !errs.Is(err, errs.ErrCodeBuildNotFound) {
		t.Errorf("Get(unknown) error = %v, want BUILD_NOT_FOUND", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreRejectsInvalidIDs(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	b := testBuild(time.Now())
	b.ID = "../escape"
	if err := s.Save(ctx, b); err == nil {
		t.Error("Save() should reject a non-uuid id")
	}
	if _, err := s.Get(ctx, "../escape"); !errs.Is(err, errs.ErrCodeBuildNotFound) {
		t.Errorf("Get() error = %v, want BUILD_NOT_FOUND", err)
	}
}

func TestValidID(t *testing.T) {
	if !ValidID(NewID()) {
		t.Error("NewID() is not valid")
	}
	for _, id := range []string{"", "abc", "../x", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}"} {
		if ValidID(id) {
			t.Errorf("ValidID(%q) = true", id)
		}
	}
}

func TestNewBuild(t *testing.T) {
	res := &pipeline.Result{
		Composition: cluster.Composition{
			Width:  461,
			Height: 300,
			Tiles:  []cluster.Tile{{ID: "A", X: 161, Y: 0, Size: 300}},
		},
		Format:     "png",
		LayoutHash: "abc",
		Artifact:   []byte("img"),
	}
	b := NewBuild(res)
	if !ValidID(b.ID) || b.Albums != 1 || b.Width != 461 || b.Format != "png" {
		t.Errorf("NewBuild() = %+v", b)
	}
	if b.Placements[0] != (cluster.Placement{ID: "A", X: 161, Y: 0, Size: 300}) {
		t.Errorf("placement = %+v", b.Placements[0])
	}
}
