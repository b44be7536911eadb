package renderers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
)

func TestGlamourRenderer(t *testing.T) {
	src := []byte("# Hello\n\nSome *text* with `code`.\n")
	r := NewGlamourRenderer()

	plain, err := r.Render(src, "doc.md", render.Metadata{}, plainOpts())
	require.NoError(t, err)
	assert.Contains(t, plain, "Hello")
	assert.Contains(t, plain, "code")
	assert.NotContains(t, plain, "\x1b")

	colored, err := r.Render(src, "doc.md", render.Metadata{}, colorOpts())
	require.NoError(t, err)
	assert.Contains(t, colored, "\x1b[")
}

func TestWithGlamourStyle(t *testing.T) {
	assert.Equal(t, GlamourLight, NewGlamourRenderer(WithGlamourStyle(GlamourLight)).style)
	assert.Equal(t, GlamourDark, NewGlamourRenderer(WithGlamourStyle("neon")).style)
	assert.Equal(t, 110, NewGlamourRenderer().Priority())
}
