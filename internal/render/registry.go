package render

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/metrics"
)

// DetectFunc maps a filename and optional content sample to a tag.
type DetectFunc func(filename string, sample []byte) filetype.Tag

// Descriptor describes a registered renderer.
type Descriptor struct {
	Name     string
	Priority int
	Tags     []filetype.Tag
	Limits   Limits
}

// Registry selects renderers by tag. A Registry is built once by a Builder
// and is immutable afterwards, so it is safe for concurrent use.
type Registry struct {
	candidates map[filetype.Tag][]Renderer
	entries    []Descriptor
	renderers  []Renderer
	detect     DetectFunc
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for renderer failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDetector replaces the content-type detector.
func WithDetector(fn DetectFunc) Option {
	return func(r *Registry) {
		if fn != nil {
			r.detect = fn
		}
	}
}

// Builder assembles a Registry.
type Builder struct {
	reg *Registry
}

// NewBuilder creates a builder for an empty registry.
func NewBuilder(opts ...Option) *Builder {
	reg := &Registry{
		candidates: make(map[filetype.Tag][]Renderer),
		detect:     filetype.Detect,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return &Builder{reg: reg}
}

// Register adds r as a candidate for each tag. Within a tag, r is placed
// after every candidate whose priority is at least its own, so equal
// priorities keep registration order.
func (b *Builder) Register(r Renderer, tags ...filetype.Tag) *Builder {
	seen := make(map[filetype.Tag]bool, len(tags))
	registered := make([]filetype.Tag, 0, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		registered = append(registered, tag)
		b.reg.candidates[tag] = insertByPriority(b.reg.candidates[tag], r)
	}

	b.reg.renderers = append(b.reg.renderers, r)
	b.reg.entries = append(b.reg.entries, Descriptor{
		Name:     r.Name(),
		Priority: r.Priority(),
		Tags:     registered,
		Limits:   r.Limits(),
	})
	return b
}

func insertByPriority(list []Renderer, r Renderer) []Renderer {
	idx := len(list)
	for i, c := range list {
		if c.Priority() < r.Priority() {
			idx = i
			break
		}
	}
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = r
	return list
}

// Build returns the registry. The builder must not be used afterwards.
func (b *Builder) Build() *Registry {
	reg := b.reg
	b.reg = nil
	return reg
}

// Candidates returns the ordered candidates for tag.
func (r *Registry) Candidates(tag filetype.Tag) []Renderer {
	list := r.candidates[tag]
	out := make([]Renderer, len(list))
	copy(out, list)
	return out
}

// Describe lists registered renderers in registration order.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, len(r.entries))
	copy(out, r.entries)
	return out
}

// Renderers returns the registered renderers in registration order.
func (r *Registry) Renderers() []Renderer {
	out := make([]Renderer, len(r.renderers))
	copy(out, r.renderers)
	return out
}

// Detect runs the registry's detector.
func (r *Registry) Detect(filename string, content []byte) filetype.Tag {
	return r.detect(filename, sniff(content))
}

// Resolve detects the tag for a file and picks a renderer in two stages:
// the first accepting candidate for the tag, then, if the tag is not text,
// the first accepting candidate for text. It returns a nil renderer when
// both stages fail. The returned tag is always the detected one.
func (r *Registry) Resolve(filename string, content []byte) (Renderer, filetype.Tag) {
	tag := r.Detect(filename, content)

	if rd := r.first(tag, tag); rd != nil {
		return rd, tag
	}
	if tag != filetype.Text {
		if rd := r.first(filetype.Text, filetype.Text); rd != nil {
			return rd, tag
		}
	}
	return nil, tag
}

func (r *Registry) first(list, tag filetype.Tag) Renderer {
	for _, c := range r.candidates[list] {
		if c.CanRender(tag) {
			return c
		}
	}
	return nil
}

// GetRenderer returns the renderer Render would use, or nil.
func (r *Registry) GetRenderer(filename string, content []byte, _ Options) Renderer {
	rd, _ := r.Resolve(filename, content)
	return rd
}

// Render renders a file. It always returns displayable, non-empty text:
// failures and missing renderers produce the fallback rendering.
func (r *Registry) Render(filename string, content []byte, meta Metadata, opts Options) (out string) {
	opts = opts.Normalize()
	tag := filetype.Unknown

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("render pipeline panicked; using fallback", "file", filename, "panic", rec)
			out = FallbackAs(filename, tag, content, meta, opts, fmt.Errorf("internal error: %v", rec))
		}
	}()

	var rd Renderer
	rd, tag = r.Resolve(filename, content)
	metrics.RecordDetect(string(tag))

	name := "fallback"
	var body string
	if rd == nil {
		r.logger.Debug("no renderer found; using fallback", "file", filename, "tag", tag)
		metrics.RecordFallback(metrics.ReasonNoRenderer)
		body = FallbackAs(filename, tag, content, meta, opts, nil)
	} else {
		name = rd.Name()
		body = r.invoke(rd, tag, filename, content, meta, opts)
	}

	if opts.ShowMetadata {
		body = Header(filename, content, meta, tag, name, opts) + "\n" + body
	}
	return body
}

func (r *Registry) invoke(rd Renderer, tag filetype.Tag, filename string, content []byte, meta Metadata, opts Options) string {
	name := rd.Name()
	limits := rd.Limits()

	if v, over := limits.Check(content, meta); over {
		r.logger.Info("input exceeds renderer limit", "renderer", name, "file", filename, "size", v.Size, "kind", v.Kind)
		metrics.RecordOversize(name)
		if o, ok := rd.(OversizeRenderer); ok {
			return o.RenderOversize(filename, v.Size, opts)
		}
		return OversizeWarning(filename, v, limits, opts)
	}

	start := time.Now()
	out, err := safeRender(rd, content, filename, meta, opts)
	elapsed := time.Since(start)

	if err == nil && out == "" && len(content) > 0 {
		err = errors.New("renderer produced no output")
	}
	if err != nil {
		outcome := metrics.OutcomeError
		var pe *PanicError
		if errors.As(err, &pe) {
			outcome = metrics.OutcomePanic
		}
		r.logger.Warn("renderer failed; using fallback", "renderer", name, "file", filename, "tag", tag, "error", err)
		metrics.RecordRender(name, outcome, elapsed, 0)
		metrics.RecordFallback(metrics.ReasonError)
		return FallbackAs(filename, tag, content, meta, opts, err)
	}

	metrics.RecordRender(name, metrics.OutcomeOK, elapsed, len(out))
	if out == "" {
		return FallbackAs(filename, tag, content, meta, opts, nil)
	}
	return out
}

// PanicError reports a renderer panic recovered by the registry.
type PanicError struct {
	Renderer string
	Value    any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("renderer %s panicked: %v", e.Renderer, e.Value)
}

func safeRender(rd Renderer, content []byte, filename string, meta Metadata, opts Options) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = ""
			err = &PanicError{Renderer: rd.Name(), Value: rec}
		}
	}()
	return rd.Render(content, filename, meta, opts)
}
