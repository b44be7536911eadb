package renderers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

func renderYAML(t *testing.T, src string) string {
	t.Helper()
	out, err := NewYAMLRenderer().Render([]byte(src), "config.yaml", render.Metadata{}, plainOpts())
	require.NoError(t, err)
	return out
}

func TestYAMLRenderer_Document(t *testing.T) {
	out := renderYAML(t, "# settings\nname: demo\nport: 8080\nitems:\n  - a\n  - b\nnested:\n  key: ~\n")

	assert.Contains(t, out, "# settings")
	assert.Contains(t, out, "name: demo\nport: 8080\nitems:\n  - a\n  - b\nnested:\n  key: ~")
}

func TestYAMLRenderer_Styles(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"flow sequence", "list: [1, 2]\n", "list: [1, 2]"},
		{"flow mapping", "point: {x: 1, y: 2}\n", "point: {x: 1, y: 2}"},
		{"quoted", "msg: \"hi there\"\n", `msg: "hi there"`},
		{"literal", "text: |\n  line one\n  line two\n", "text: |\n  line one\n  line two"},
		{"anchor and alias", "base: &b\n  x: 1\nother: *b\n", "base: &b\n  x: 1\nother: *b"},
		{"sequence of maps", "- name: a\n  v: 1\n- name: b\n", "- name: a\n  v: 1\n- name: b"},
		{"empty collections", "a: []\nb: {}\n", "a: []\nb: {}"},
		{"multiple documents", "a: 1\n---\nb: 2\n", "a: 1\n---\nb: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderYAML(t, tt.src))
		})
	}
}

func TestYAMLRenderer_ParseError(t *testing.T) {
	out := renderYAML(t, "key: [unclosed\nother: 1\n")
	assert.Contains(t, out, "YAML parse error:")
	assert.Contains(t, out, "Line ")
	assert.Contains(t, out, "key: [unclosed")
}

func TestYAMLRenderer_Empty(t *testing.T) {
	assert.Equal(t, "(empty document)", renderYAML(t, ""))
}

func TestPlainScalarRole(t *testing.T) {
	for _, v := range []string{"true", "No", "42", "-1.5e3", "0x1F", ".inf"} {
		assert.Equal(t, theme.Number, plainScalarRole(v), v)
	}
	for _, v := range []string{"", "~", "null"} {
		assert.Equal(t, theme.Null, plainScalarRole(v), v)
	}
	for _, v := range []string{"hello", "1.2.3", "v1"} {
		assert.Equal(t, theme.String, plainScalarRole(v), v)
	}
}

func TestTOMLRenderer_Document(t *testing.T) {
	src := "title = \"demo\"\n\n[owner]\nname = \"x\"\n\n[[servers]]\nhost = \"a\"\nport = 1\n\n[[servers]]\nhost = \"b\"\nport = 2\n"
	out, err := NewTOMLRenderer().Render([]byte(src), "config.toml", render.Metadata{}, plainOpts())
	require.NoError(t, err)

	want := "title = \"demo\"\n\n[owner]\nname = \"x\"\n\n[[servers]]\nhost = \"a\"\nport = 1\n\n[[servers]]\nhost = \"b\"\nport = 2"
	assert.Equal(t, want, out)
}

func TestTOMLRenderer_Values(t *testing.T) {
	src := "f = 1.0\narr = [1, 2]\nd = 1979-05-27\n\"odd key\" = true\n[a.b]\nc = 1\n"
	out, err := NewTOMLRenderer().Render([]byte(src), "values.toml", render.Metadata{}, plainOpts())
	require.NoError(t, err)

	want := "arr = [1, 2]\nd = 1979-05-27\nf = 1.0\n\"odd key\" = true\n\n[a.b]\nc = 1"
	assert.Equal(t, want, out)
}

func TestTOMLRenderer_ParseError(t *testing.T) {
	out, err := NewTOMLRenderer().Render([]byte("a = \n"), "bad.toml", render.Metadata{}, plainOpts())
	require.NoError(t, err)
	assert.Contains(t, out, "TOML parse error:")
	assert.Contains(t, out, "Line 1, column")
}

func TestTOMLRenderer_Empty(t *testing.T) {
	out, err := NewTOMLRenderer().Render([]byte("# nothing\n"), "empty.toml", render.Metadata{}, plainOpts())
	require.NoError(t, err)
	assert.Equal(t, "(empty document)", out)
}

func TestFormatTOMLFloat(t *testing.T) {
	assert.Equal(t, "1.0", formatTOMLFloat(1))
	assert.Equal(t, "3.14", formatTOMLFloat(3.14))
	assert.Equal(t, "1e+21", formatTOMLFloat(1e21))
}
