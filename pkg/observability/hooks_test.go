package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	b := NoopBatchHooks{}
	b.OnCorpusStart(ctx, "data/zlib", 12)
	b.OnCorpusComplete(ctx, "data/zlib", 66, time.Second, nil)
	b.OnManifestSkipped(ctx, "data/zlib/bad.yaml", errors.New("missing compiler"))
	b.OnFactsDerived(ctx, "zlib-v1", 40, time.Millisecond, nil)
	b.OnPairCompared(ctx, "a-b", time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "facts")
	c.OnCacheMiss(ctx, "facts")
	c.OnCacheSet(ctx, "facts", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Batch().(NoopBatchHooks); !ok {
		t.Error("Batch() should return NoopBatchHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customBatch := &testBatchHooks{}
	SetBatchHooks(customBatch)
	if Batch() != customBatch {
		t.Error("SetBatchHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Batch().(NoopBatchHooks); !ok {
		t.Error("Reset() should restore NoopBatchHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testBatchHooks{}
	SetBatchHooks(custom)
	SetBatchHooks(nil)

	if Batch() != custom {
		t.Error("SetBatchHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

	h.OnCorpusStart(ctx, "data/zlib", 3)
	h.OnPairCompared(ctx, "a-b", time.Millisecond)
	h.OnFactsDerived(ctx, "a", 0, 0, errors.New("tool exited 1"))
	h.OnCacheHit(ctx, "facts")

	out := buf.String()
	for _, want := range []string{"corpus start", "pair compared", "fact derivation failed", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnPairCompared(context.Background(), "a-b", time.Millisecond)
	if buf.Len() != 0 {
		t.Errorf("debug events should be filtered at info level, got %q", buf.String())
	}
}

// Test implementations
type testBatchHooks struct{ NoopBatchHooks }
type testCacheHooks struct{ NoopCacheHooks }
