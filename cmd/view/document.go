package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/source"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/watcher"
)

// document holds the file shown by the pager and renders it on demand.
// The render for the most recent width is kept until the width changes or
// the file is reloaded.
type document struct {
	reg      *render.Registry
	reader   *source.Reader
	opts     render.Options
	maxWidth int // 0 follows the pager width
	logger   *slog.Logger

	mu          sync.Mutex
	file        *source.File
	cached      bool
	cachedWidth int
	cachedOut   string
}

func newDocument(reg *render.Registry, reader *source.Reader, file *source.File, opts render.Options, maxWidth int, logger *slog.Logger) *document {
	return &document{
		reg:      reg,
		reader:   reader,
		opts:     opts,
		maxWidth: maxWidth,
		logger:   logger,
		file:     file,
	}
}

// render renders at width, capped by an explicit maximum width.
func (d *document) render(width int) string {
	if d.maxWidth > 0 && (width <= 0 || width > d.maxWidth) {
		width = d.maxWidth
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached && d.cachedWidth == width {
		return d.cachedOut
	}
	opts := d.opts
	opts.MaxWidth = width
	out := d.reg.Render(d.file.Name, d.file.Content, d.file.Meta, opts)
	d.cached, d.cachedWidth, d.cachedOut = true, width, out
	return out
}

// reload re-reads the file and drops the cached render.
func (d *document) reload(ctx context.Context) error {
	d.mu.Lock()
	name := d.file.Name
	d.mu.Unlock()

	f, err := d.reader.ReadFile(ctx, name)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.file = f
	d.cached, d.cachedOut = false, ""
	d.mu.Unlock()
	return nil
}

// follow reloads the document for each change reported by changes and
// forwards the change once the new content is in place. out is closed when
// changes closes or ctx is done.
func (d *document) follow(ctx context.Context, changes <-chan watcher.Change, errs <-chan error, out chan<- watcher.Change) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			d.logger.Warn("file watcher error", "error", err)

		case ch, ok := <-changes:
			if !ok {
				return
			}
			if !ch.Removed {
				if err := d.reload(ctx); err != nil {
					d.logger.Warn("failed to reload followed file", "path", ch.Path, "error", err)
					continue
				}
			}
			select {
			case out <- ch:
			case <-ctx.Done():
				return
			}
		}
	}
}
