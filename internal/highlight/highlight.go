// Package highlight splits source text into categorized, non-overlapping
// spans and colors them in a separate pass.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// TabWidth is the column stop used when expanding tabs.
const TabWidth = 4

// Category classifies a span of source text.
type Category int

const (
	Plain Category = iota
	Keyword
	String
	Comment
	Number
	Preprocessor
	Decorator
	Builtin
	Function
	Type
	Operator
	Inserted
	Deleted
)

var categoryNames = [...]string{
	"plain", "keyword", "string", "comment", "number", "preprocessor",
	"decorator", "builtin", "function", "type", "operator", "inserted", "deleted",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Role maps a category to its palette role.
func (c Category) Role() theme.Role {
	switch c {
	case Keyword:
		return theme.Keyword
	case String:
		return theme.String
	case Comment:
		return theme.Comment
	case Number:
		return theme.Number
	case Preprocessor:
		return theme.Preprocessor
	case Decorator:
		return theme.Decorator
	case Builtin:
		return theme.Builtin
	case Function:
		return theme.Function
	case Type:
		return theme.Type
	case Operator:
		return theme.Operator
	case Inserted:
		return theme.Success
	case Deleted:
		return theme.Error
	default:
		return theme.Plain
	}
}

// Span is a run of text with one category.
type Span struct {
	Text     string
	Category Category
}

// Line is the ordered spans of one source line.
type Line []Span

// Text returns the line without styling.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// chromaNames maps tags to chroma lexer names where they differ or where
// the filename alone is not enough.
var chromaNames = map[filetype.Tag]string{
	filetype.Shell:      "bash",
	filetype.Dockerfile: "docker",
	filetype.CSharp:     "csharp",
	filetype.CPP:        "cpp",
	filetype.Protobuf:   "protobuf",
}

// LexerFor returns a lexer for the language name or tag, trying the
// filename first. It never returns nil.
func LexerFor(lang, filename string) chroma.Lexer {
	var lexer chroma.Lexer
	if filename != "" {
		lexer = lexers.Match(filename)
	}
	if lexer == nil && lang != "" {
		name := strings.ToLower(lang)
		if mapped, ok := chromaNames[filetype.Tag(name)]; ok {
			name = mapped
		}
		lexer = lexers.Get(name)
		if lexer == nil {
			lexer = lexers.Match("file." + name)
		}
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Tokenize splits source into lines of categorized spans. Tabs are expanded
// to TabWidth stops. The result has exactly one Line per source line.
func Tokenize(lang, filename, source string) []Line {
	want := strings.Count(source, "\n") + 1
	lines := make([]Line, 1, want)

	it, err := LexerFor(lang, filename).Tokenise(nil, source)
	if err != nil {
		return plainLines(source)
	}

	col := 0
	for _, tok := range it.Tokens() {
		if tok.Value == "" {
			continue
		}
		cat := Classify(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
				col = 0
			}
			if part == "" {
				continue
			}
			part, col = expandTabs(part, col)
			cur := &lines[len(lines)-1]
			*cur = append(*cur, Span{Text: part, Category: cat})
		}
	}

	// Some lexers append a trailing newline to their input.
	for len(lines) > want {
		lines = lines[:len(lines)-1]
	}
	for len(lines) < want {
		lines = append(lines, nil)
	}
	return lines
}

func plainLines(source string) []Line {
	raw := strings.Split(source, "\n")
	lines := make([]Line, len(raw))
	for i, r := range raw {
		if r == "" {
			continue
		}
		text, _ := expandTabs(r, 0)
		lines[i] = Line{{Text: text}}
	}
	return lines
}

func expandTabs(s string, col int) (string, int) {
	if !strings.Contains(s, "\t") {
		return s, col + ansi.StringWidth(s)
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\t' {
			n := TabWidth - col%TabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String(), col
}

// Classify maps a chroma token type to a category.
func Classify(tt chroma.TokenType) Category {
	switch {
	case tt == chroma.NameDecorator:
		return Decorator
	case tt == chroma.CommentPreproc || tt == chroma.CommentPreprocFile:
		return Preprocessor
	case tt.InCategory(chroma.Comment):
		return Comment
	case tt == chroma.KeywordType:
		return Type
	case tt.InCategory(chroma.Keyword), tt == chroma.NameTag:
		return Keyword
	case tt.InSubCategory(chroma.LiteralString):
		return String
	case tt.InSubCategory(chroma.LiteralNumber):
		return Number
	case tt == chroma.NameBuiltin, tt == chroma.NameBuiltinPseudo, tt == chroma.NameAttribute:
		return Builtin
	case tt == chroma.NameFunction, tt == chroma.NameFunctionMagic:
		return Function
	case tt == chroma.NameClass, tt == chroma.NameNamespace, tt == chroma.NameException:
		return Type
	case tt.InCategory(chroma.Operator):
		return Operator
	case tt == chroma.GenericInserted:
		return Inserted
	case tt == chroma.GenericDeleted:
		return Deleted
	case tt == chroma.GenericHeading, tt == chroma.GenericSubheading:
		return Function
	default:
		return Plain
	}
}

// Paint colors one line.
func Paint(line Line, p *theme.Palette) string {
	var b strings.Builder
	for _, s := range line {
		b.WriteString(p.Paint(s.Category.Role(), s.Text))
	}
	return b.String()
}

// Code tokenizes and paints source, returning one string per line.
func Code(lang, source string, p *theme.Palette) []string {
	lines := Tokenize(lang, "", source)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = Paint(l, p)
	}
	return out
}
