package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// countingHooks counts layout events.
type countingHooks struct {
	NoopPipelineHooks
	layouts atomic.Int32
}

func (h *countingHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error) {
	h.layouts.Add(1)
}

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestSetHooks(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	p := &countingHooks{}
	c := &testCacheHooks{}
	h := &testHTTPHooks{}
	SetPipelineHooks(p)
	SetCacheHooks(c)
	SetHTTPHooks(h)

	if Pipeline() != p || Cache() != c || HTTP() != h {
		t.Fatal("registered hooks not returned")
	}

	Pipeline().OnLayoutComplete(context.Background(), 3, 7, time.Millisecond, nil)
	if got := p.layouts.Load(); got != 1 {
		t.Errorf("layout events = %d, want 1", got)
	}

	t.Run("nil is ignored", func(t *testing.T) {
		SetPipelineHooks(nil)
		SetCacheHooks(nil)
		SetHTTPHooks(nil)
		if Pipeline() != p || Cache() != c || HTTP() != h {
			t.Error("nil replaced registered hooks")
		}
	})

	t.Run("setting one keeps the others", func(t *testing.T) {
		SetCacheHooks(NoopCacheHooks{})
		if Pipeline() != p || HTTP() != h {
			t.Error("SetCacheHooks changed other categories")
		}
	})
}

func TestConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	p := &countingHooks{}
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				SetPipelineHooks(p)
				SetHTTPHooks(NoopHTTPHooks{})
			}
			Pipeline().OnLayoutStart(context.Background(), i)
			Cache().OnCacheHit(context.Background(), "layout")
		}()
	}
	wg.Wait()
	if Pipeline() != p {
		t.Error("pipeline hooks lost under concurrent updates")
	}
}

func TestLogHooks(t *testing.T) {
	t.Cleanup(Reset)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	InstallLogHooks(logger)

	ctx := context.Background()
	Pipeline().OnIndexLoaded(ctx, "index.txt", 42, time.Millisecond, nil)
	Pipeline().OnResolveComplete(ctx, 40, 2, time.Second)
	Pipeline().OnLayoutComplete(ctx, 3, 12, time.Second, nil)
	Pipeline().OnRenderComplete(ctx, "png", 1<<20, time.Second, nil)
	Cache().OnCacheMiss(ctx, "layout")
	HTTP().OnResponse(ctx, "GET", "api.spotify.com", "/v1/albums/x", 200, time.Second)
	HTTP().OnError(ctx, "GET", "api.spotify.com", "/v1/albums/x", errors.New("connection reset"))

	out := buf.String()
	for _, want := range []string{
		"index loaded", "entries=42",
		"covers resolved", "excluded=2",
		"layout done", "moves=12",
		"render done", "bytes=1048576",
		"cache miss", "type=layout",
		"http response", "status=200",
		"http error", "connection reset",
		"hooks",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnCacheHit(context.Background(), "artifact")
	if buf.Len() != 0 {
		t.Errorf("debug event logged at info level: %q", buf.String())
	}
}
