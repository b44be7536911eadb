package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
)

type stubRenderer struct {
	name     string
	priority int
	tags     []filetype.Tag
	limits   Limits
	output   string
	err      error
	panics   bool
}

func (s *stubRenderer) Name() string   { return s.name }
func (s *stubRenderer) Priority() int  { return s.priority }
func (s *stubRenderer) Limits() Limits { return s.limits }

func (s *stubRenderer) CanRender(tag filetype.Tag) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s *stubRenderer) Render(content []byte, _ string, _ Metadata, _ Options) (string, error) {
	if s.panics {
		panic("boom")
	}
	if s.err != nil {
		return "", s.err
	}
	if s.output != "" {
		return s.output, nil
	}
	return s.name + ":" + string(content), nil
}

type oversizeStub struct {
	stubRenderer
}

func (o *oversizeStub) RenderOversize(filename string, size int64, _ Options) string {
	return "too big: " + filename
}

func stub(name string, priority int, tags ...filetype.Tag) *stubRenderer {
	return &stubRenderer{name: name, priority: priority, tags: tags}
}

func plainOpts() Options {
	return Options{MaxWidth: 80}
}

func TestRegistry_PriorityOrdering(t *testing.T) {
	a := stub("a", 20, filetype.JSON)
	b := stub("b", 10, filetype.JSON)

	tests := []struct {
		name  string
		order []*stubRenderer
	}{
		{"higher registered first", []*stubRenderer{a, b}},
		{"higher registered last", []*stubRenderer{b, a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := NewBuilder()
			for _, r := range tt.order {
				builder.Register(r, filetype.JSON)
			}
			reg := builder.Build()

			got := reg.GetRenderer("x.json", []byte("{}"), plainOpts())
			require.NotNil(t, got)
			assert.Equal(t, "a", got.Name())
			assert.Equal(t, "a:{}", reg.Render("x.json", []byte("{}"), Metadata{}, plainOpts()))
		})
	}
}

func TestRegistry_EqualPriorityKeepsRegistrationOrder(t *testing.T) {
	reg := NewBuilder().
		Register(stub("first", 10, filetype.YAML), filetype.YAML).
		Register(stub("second", 10, filetype.YAML), filetype.YAML).
		Register(stub("third", 5, filetype.YAML), filetype.YAML).
		Register(stub("zeroth", 30, filetype.YAML), filetype.YAML).
		Build()

	var names []string
	for _, c := range reg.Candidates(filetype.YAML) {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"zeroth", "first", "second", "third"}, names)
}

func TestRegistry_SkipsCandidatesThatDecline(t *testing.T) {
	picky := stub("picky", 50) // accepts nothing
	reg := NewBuilder().
		Register(picky, filetype.Go).
		Register(stub("code", 10, filetype.Go), filetype.Go).
		Build()

	got := reg.GetRenderer("main.go", []byte("package main"), plainOpts())
	require.NotNil(t, got)
	assert.Equal(t, "code", got.Name())
}

func TestRegistry_FallsBackToTextOnce(t *testing.T) {
	text := stub("text", 10, filetype.Text, filetype.Unknown)
	reg := NewBuilder().Register(text, filetype.Text).Build()

	rd, tag := reg.Resolve("notes.md", []byte("# hi"))
	require.NotNil(t, rd)
	assert.Equal(t, "text", rd.Name())
	assert.Equal(t, filetype.Markdown, tag)

	none := NewBuilder().Register(stub("json", 10, filetype.JSON), filetype.JSON).Build()
	rd, tag = none.Resolve("notes.md", []byte("# hi"))
	assert.Nil(t, rd)
	assert.Equal(t, filetype.Markdown, tag)
}

func TestRegistry_FallbackIsTotal(t *testing.T) {
	reg := NewBuilder().Build()
	content := []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00, 0x10}

	out := reg.Render("mystery", content, Metadata{}, plainOpts())
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "File: mystery")
	assert.Contains(t, out, "00000000  00 01 02 ff fe 00 10")

	empty := reg.Render("", nil, Metadata{}, plainOpts())
	assert.NotEmpty(t, empty)
	assert.Contains(t, empty, "(no content)")
}

func TestRegistry_RendererErrorUsesAnnotatedFallback(t *testing.T) {
	failing := stub("failing", 10, filetype.JSON)
	failing.err = errors.New("unexpected token")

	reg := NewBuilder().Register(failing, filetype.JSON).Build()
	out := reg.Render("bad.json", []byte("{oops"), Metadata{}, plainOpts())

	assert.Contains(t, out, "Error: unexpected token")
	assert.Contains(t, out, "{oops")
	assert.NotContains(t, out, "\x1b")
}

func TestRegistry_RendererPanicUsesAnnotatedFallback(t *testing.T) {
	bad := stub("bad", 10, filetype.YAML)
	bad.panics = true

	reg := NewBuilder().Register(bad, filetype.YAML).Build()
	var out string
	require.NotPanics(t, func() {
		out = reg.Render("x.yaml", []byte("a: 1"), Metadata{}, plainOpts())
	})

	assert.Contains(t, out, "renderer bad panicked: boom")
	assert.Contains(t, out, "a: 1")
}

func TestRegistry_EmptyOutputFallsBack(t *testing.T) {
	silent := &stubRenderer{name: "silent", priority: 10, tags: []filetype.Tag{filetype.Text}}
	silent.output = ""
	reg := NewBuilder().Register(&emptyRenderer{silent}, filetype.Text).Build()

	out := reg.Render("a.txt", []byte("hello"), Metadata{}, plainOpts())
	assert.Contains(t, out, "renderer produced no output")
	assert.Contains(t, out, "hello")
}

type emptyRenderer struct{ *stubRenderer }

func (e *emptyRenderer) Render([]byte, string, Metadata, Options) (string, error) {
	return "", nil
}

func TestRegistry_SizeGuardBoundary(t *testing.T) {
	limited := stub("limited", 10, filetype.CSV)
	limited.limits = Limits{MaxBytes: 8, Alternative: "column -t %s"}
	reg := NewBuilder().Register(limited, filetype.CSV).Build()

	atLimit := reg.Render("data.csv", []byte("12345678"), Metadata{}, plainOpts())
	assert.Equal(t, "limited:12345678", atLimit)

	over := reg.Render("data.csv", []byte("123456789"), Metadata{}, plainOpts())
	assert.Contains(t, over, "File too large to render")
	assert.Contains(t, over, "data.csv")
	assert.Contains(t, over, "9 B (9 bytes)")
	assert.Contains(t, over, "column -t data.csv")
	assert.NotContains(t, over, "limited:")
	assert.NotContains(t, over, "┼")
}

func TestRegistry_LineLimit(t *testing.T) {
	limited := stub("limited", 10, filetype.Text)
	limited.limits = Limits{MaxLines: 2}
	reg := NewBuilder().Register(limited, filetype.Text).Build()

	assert.Equal(t, "limited:a\nb\n", reg.Render("a.txt", []byte("a\nb\n"), Metadata{}, plainOpts()))

	over := reg.Render("a.txt", []byte("a\nb\nc"), Metadata{}, plainOpts())
	assert.Contains(t, over, "Lines:")
	assert.Contains(t, over, "2 lines")
}

func TestRegistry_MetadataSizeOnlyWhenContentNil(t *testing.T) {
	limited := stub("limited", 10, filetype.Text)
	limited.limits = Limits{MaxBytes: 4}
	reg := NewBuilder().Register(limited, filetype.Text).Build()

	// Metadata claims a huge file but the content is small.
	out := reg.Render("a.txt", []byte("ok"), Metadata{Size: 1 << 30}, plainOpts())
	assert.Equal(t, "limited:ok", out)
}

func TestRegistry_OversizeRendererPlaceholder(t *testing.T) {
	img := &oversizeStub{stubRenderer{name: "img", priority: 10, tags: []filetype.Tag{filetype.Image}, limits: Limits{MaxBytes: 2}}}
	reg := NewBuilder().Register(img, filetype.Image).Build()

	out := reg.Render("cat.png", []byte("abc"), Metadata{}, plainOpts())
	assert.Equal(t, "too big: cat.png", out)
}

func TestRegistry_ShowMetadataPrefixesHeader(t *testing.T) {
	reg := NewBuilder().Register(stub("text", 10, filetype.Text), filetype.Text).Build()
	opts := plainOpts()
	opts.ShowMetadata = true

	out := reg.Render("notes.txt", []byte("hi"), Metadata{Path: "/tmp/notes.txt"}, opts)
	assert.True(t, strings.HasPrefix(out, "Name:"))
	assert.Contains(t, out, "Path:     /tmp/notes.txt")
	assert.Contains(t, out, "Renderer: text")
	assert.Contains(t, out, "text/plain")
	assert.True(t, strings.HasSuffix(out, "text:hi"))
}

func TestRegistry_Deterministic(t *testing.T) {
	reg := NewBuilder().Build()
	content := []byte("some text\nwith lines\n")
	first := reg.Render("file.weird", content, Metadata{}, DefaultOptions())
	second := reg.Render("file.weird", content, Metadata{}, DefaultOptions())
	assert.Equal(t, first, second)
}

func TestRegistry_WithDetector(t *testing.T) {
	reg := NewBuilder(WithDetector(func(string, []byte) filetype.Tag { return filetype.TOML })).
		Register(stub("toml", 10, filetype.TOML), filetype.TOML).
		Build()

	rd, tag := reg.Resolve("anything.txt", nil)
	require.NotNil(t, rd)
	assert.Equal(t, filetype.TOML, tag)
}

func TestRegistry_FallbackUsesDetectorTag(t *testing.T) {
	detect := WithDetector(func(string, []byte) filetype.Tag { return filetype.TOML })

	none := NewBuilder(detect).Build()
	out := none.Render("settings.txt", []byte("a = 1"), Metadata{}, plainOpts())
	assert.Contains(t, out, "Type: "+filetype.HumanName(filetype.TOML))
	assert.NotContains(t, out, "Type: "+filetype.HumanName(filetype.Text))

	failing := stub("toml", 10, filetype.TOML)
	failing.err = errors.New("bad key")
	reg := NewBuilder(detect).Register(failing, filetype.TOML).Build()
	out = reg.Render("settings.txt", []byte("a = 1"), Metadata{}, plainOpts())
	assert.Contains(t, out, "Type: "+filetype.HumanName(filetype.TOML))
	assert.Contains(t, out, "Error: bad key")
}

func TestRegistry_Describe(t *testing.T) {
	reg := NewBuilder().
		Register(stub("json", 100, filetype.JSON), filetype.JSON, filetype.JSONL, filetype.JSON).
		Register(stub("text", 10, filetype.Text), filetype.Text).
		Build()

	desc := reg.Describe()
	require.Len(t, desc, 2)
	assert.Equal(t, "json", desc[0].Name)
	assert.Equal(t, []filetype.Tag{filetype.JSON, filetype.JSONL}, desc[0].Tags)
	assert.Equal(t, 10, desc[1].Priority)
}
