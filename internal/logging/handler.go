package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// handlerBox holds the live handler so that a swap is one pointer store.
type handlerBox struct {
	h slog.Handler
}

// derivation is a WithAttrs or WithGroup step replayed on the live handler.
type derivation func(slog.Handler) slog.Handler

// derivedCache memoizes the derived handler for one live handler.
type derivedCache struct {
	from *handlerBox
	h    slog.Handler
}

// SwappableHandler forwards records to a handler that can be replaced at
// runtime. Handlers derived through WithAttrs and WithGroup share the
// live handler with their parent, so a logger such as
// logger.With("component", "render") built before Upgrade still writes to
// the log file afterwards.
type SwappableHandler struct {
	live  *atomic.Pointer[handlerBox]
	steps []derivation
	cache atomic.Pointer[derivedCache]
}

// NewSwappableHandler creates a handler that forwards to initial.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	live := new(atomic.Pointer[handlerBox])
	live.Store(&handlerBox{h: initial})
	return &SwappableHandler{live: live}
}

// Swap replaces the live handler for sh and every handler derived from the
// same root. It is safe to call while records are being handled.
func (sh *SwappableHandler) Swap(h slog.Handler) {
	sh.live.Store(&handlerBox{h: h})
}

// resolve returns the live handler with this handler's attrs and groups
// applied.
func (sh *SwappableHandler) resolve() slog.Handler {
	box := sh.live.Load()
	if len(sh.steps) == 0 {
		return box.h
	}
	if c := sh.cache.Load(); c != nil && c.from == box {
		return c.h
	}

	h := box.h
	for _, step := range sh.steps {
		h = step(h)
	}
	sh.cache.Store(&derivedCache{from: box, h: h})
	return h
}

// Enabled reports whether the live handler handles records at level.
func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.resolve().Enabled(ctx, level)
}

// Handle forwards r to the live handler.
func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.resolve().Handle(ctx, r)
}

// WithAttrs returns a handler that adds attrs to every record and keeps
// following swaps of the root.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return sh
	}
	return sh.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup returns a handler that nests later attrs under name and keeps
// following swaps of the root.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return sh
	}
	return sh.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) derive(step derivation) *SwappableHandler {
	steps := make([]derivation, len(sh.steps), len(sh.steps)+1)
	copy(steps, sh.steps)
	return &SwappableHandler{
		live:  sh.live,
		steps: append(steps, step),
	}
}
