// Package filetype maps filenames and content samples to content-type tags.
package filetype

// Tag is the canonical content-kind label used to select a renderer.
type Tag string

// Document and data tags.
const (
	Markdown Tag = "markdown"
	JSON     Tag = "json"
	JSONL    Tag = "jsonl"
	YAML     Tag = "yaml"
	TOML     Tag = "toml"
	CSV      Tag = "csv"
	TSV      Tag = "tsv"
	HTML     Tag = "html"
	XML      Tag = "xml"
	Image    Tag = "image"
	Binary   Tag = "binary"
	Archive  Tag = "archive"
	Text     Tag = "text"
	Unknown  Tag = "unknown"
)

// Source language tags.
const (
	Go         Tag = "go"
	Python     Tag = "python"
	JavaScript Tag = "javascript"
	TypeScript Tag = "typescript"
	Rust       Tag = "rust"
	Java       Tag = "java"
	C          Tag = "c"
	CPP        Tag = "cpp"
	CSharp     Tag = "csharp"
	Ruby       Tag = "ruby"
	PHP        Tag = "php"
	Swift      Tag = "swift"
	Kotlin     Tag = "kotlin"
	Scala      Tag = "scala"
	Shell      Tag = "shell"
	SQL        Tag = "sql"
	Lua        Tag = "lua"
	CSS        Tag = "css"
	Dockerfile Tag = "dockerfile"
	Makefile   Tag = "makefile"
	Haskell    Tag = "haskell"
	Elixir     Tag = "elixir"
	Perl       Tag = "perl"
	R          Tag = "r"
	Zig        Tag = "zig"
	Protobuf   Tag = "protobuf"
	Diff       Tag = "diff"
	INI        Tag = "ini"
)

var languageTags = []Tag{
	Go, Python, JavaScript, TypeScript, Rust, Java, C, CPP, CSharp, Ruby,
	PHP, Swift, Kotlin, Scala, Shell, SQL, Lua, CSS, Dockerfile, Makefile,
	Haskell, Elixir, Perl, R, Zig, Protobuf, Diff, INI,
}

var languageSet = func() map[Tag]bool {
	m := make(map[Tag]bool, len(languageTags))
	for _, t := range languageTags {
		m[t] = true
	}
	return m
}()

// LanguageTags returns the fixed set of source language tags.
func LanguageTags() []Tag {
	out := make([]Tag, len(languageTags))
	copy(out, languageTags)
	return out
}

// AllTags returns every tag the detector can produce.
func AllTags() []Tag {
	tags := []Tag{Markdown, JSON, JSONL, YAML, TOML, CSV, TSV, HTML, XML, Image, Binary, Archive, Text, Unknown}
	return append(tags, languageTags...)
}

// IsLanguage reports whether t names a source language.
func (t Tag) IsLanguage() bool {
	return languageSet[t]
}

func (t Tag) String() string {
	return string(t)
}

var humanNames = map[Tag]string{
	Markdown:   "Markdown document",
	JSON:       "JSON document",
	JSONL:      "JSON Lines",
	YAML:       "YAML document",
	TOML:       "TOML document",
	CSV:        "CSV table",
	TSV:        "TSV table",
	HTML:       "HTML document",
	XML:        "XML document",
	Image:      "Image",
	Binary:     "Binary data",
	Archive:    "Archive",
	Text:       "Plain text",
	Unknown:    "Unknown",
	Go:         "Go source",
	Python:     "Python source",
	JavaScript: "JavaScript source",
	TypeScript: "TypeScript source",
	Rust:       "Rust source",
	Java:       "Java source",
	C:          "C source",
	CPP:        "C++ source",
	CSharp:     "C# source",
	Ruby:       "Ruby source",
	PHP:        "PHP source",
	Swift:      "Swift source",
	Kotlin:     "Kotlin source",
	Scala:      "Scala source",
	Shell:      "Shell script",
	SQL:        "SQL script",
	Lua:        "Lua source",
	CSS:        "CSS stylesheet",
	Dockerfile: "Dockerfile",
	Makefile:   "Makefile",
	Haskell:    "Haskell source",
	Elixir:     "Elixir source",
	Perl:       "Perl source",
	R:          "R source",
	Zig:        "Zig source",
	Protobuf:   "Protocol Buffers definition",
	Diff:       "Diff",
	INI:        "INI configuration",
}

// HumanName returns a display name for a tag.
func HumanName(t Tag) string {
	if name, ok := humanNames[t]; ok {
		return name
	}
	return string(t)
}
