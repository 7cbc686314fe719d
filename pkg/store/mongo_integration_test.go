//go:build integration

package store

import (
	"context"
	"os"
	"testing"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("COVERCLUSTER_MONGO_URI")
	if uri == "" {
		t.Skip("COVERCLUSTER_MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "covercluster_test_" + NewID()[:8]})
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer func() {
		_ = s.coll.Database().Drop(ctx)
		s.Close()
	}()

	testStore(t, s)
}
