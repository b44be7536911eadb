package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestSwappableHandler_DerivedLoggerFollowsSwap(t *testing.T) {
	var before, after bytes.Buffer
	root := NewSwappableHandler(slog.NewTextHandler(&before, nil))

	// Built before the swap, the way cmdutil.NewRegistry derives its logger.
	renderLog := slog.New(root).With("component", "render")
	renderLog.Warn("renderer failed; using fallback", "renderer", "csv")

	root.Swap(slog.NewTextHandler(&after, nil))
	renderLog.Warn("renderer failed; using fallback", "renderer", "json")

	if !strings.Contains(before.String(), "renderer=csv") {
		t.Errorf("first record missing from original handler: %q", before.String())
	}
	if strings.Contains(before.String(), "renderer=json") {
		t.Errorf("record after swap reached the old handler: %q", before.String())
	}
	got := after.String()
	if !strings.Contains(got, "component=render") || !strings.Contains(got, "renderer=json") {
		t.Errorf("derived logger lost its attrs or missed the swap: %q", got)
	}
}

func TestSwappableHandler_SwapFromDerivedAffectsRoot(t *testing.T) {
	var first, second bytes.Buffer
	root := NewSwappableHandler(slog.NewTextHandler(&first, nil))
	child := root.WithAttrs([]slog.Attr{slog.String("component", "view")}).(*SwappableHandler)

	child.Swap(slog.NewTextHandler(&second, nil))
	slog.New(root).Info("pager started")

	if first.Len() != 0 {
		t.Errorf("old handler still receives records: %q", first.String())
	}
	if !strings.Contains(second.String(), "pager started") {
		t.Errorf("root did not follow the swap: %q", second.String())
	}
}

func TestSwappableHandler_GroupsNestAfterSwap(t *testing.T) {
	var buf bytes.Buffer
	root := NewSwappableHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))
	logger := slog.New(root).WithGroup("render").With("renderer", "archive")

	root.Swap(slog.NewJSONHandler(&buf, nil))
	logger.Info("input exceeds renderer limit", "kind", "bytes")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	group, ok := rec["render"].(map[string]any)
	if !ok {
		t.Fatalf("record has no render group: %v", rec)
	}
	if group["renderer"] != "archive" || group["kind"] != "bytes" {
		t.Errorf("group = %v, want renderer and kind nested", group)
	}
}

func TestSwappableHandler_EmptyDerivationsReturnSelf(t *testing.T) {
	root := NewSwappableHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if root.WithAttrs(nil) != slog.Handler(root) {
		t.Error("WithAttrs(nil) should return the same handler")
	}
	if root.WithGroup("") != slog.Handler(root) {
		t.Error(`WithGroup("") should return the same handler`)
	}
}

func TestSwappableHandler_EnabledTracksLiveHandler(t *testing.T) {
	ctx := context.Background()
	root := NewSwappableHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}))
	child := root.WithAttrs([]slog.Attr{slog.String("file", "a.md")})

	if child.Enabled(ctx, slog.LevelInfo) {
		t.Error("Info enabled under a Warn handler")
	}
	root.Swap(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if !child.Enabled(ctx, slog.LevelDebug) {
		t.Error("child did not pick up the Debug handler")
	}
}

func TestSwappableHandler_ConcurrentSwapAndLog(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	w := writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return buf.Write(p)
	})

	root := NewSwappableHandler(slog.NewTextHandler(w, nil))
	logger := slog.New(root).With("component", "cat")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			logger.Info("rendering file")
		}()
		go func() {
			defer wg.Done()
			root.Swap(slog.NewTextHandler(w, nil))
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if n := strings.Count(buf.String(), "component=cat"); n != 8 {
		t.Errorf("got %d records, want 8", n)
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
