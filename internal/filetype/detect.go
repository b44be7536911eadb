package filetype

import (
	"path/filepath"
	"strings"
)

// TextThreshold is the minimum fraction of printable bytes for a sample to
// be treated as text.
const TextThreshold = 0.70

// specialNames maps bare filenames, compared case-insensitively.
var specialNames = map[string]Tag{
	"dockerfile":    Dockerfile,
	"containerfile": Dockerfile,
	"makefile":      Makefile,
	"gnumakefile":   Makefile,
	"gemfile":       Ruby,
	"rakefile":      Ruby,
}

// compoundExtensions are checked before the single extension.
var compoundExtensions = map[string]Tag{
	".tar.gz":  Archive,
	".tar.bz2": Archive,
	".tar.xz":  Archive,
}

var extensionTags = map[string]Tag{
	// Documents and data
	".md":       Markdown,
	".markdown": Markdown,
	".mdown":    Markdown,
	".mkd":      Markdown,
	".json":     JSON,
	".jsonc":    JSON,
	".geojson":  JSON,
	".jsonl":    JSONL,
	".ndjson":   JSONL,
	".yaml":     YAML,
	".yml":      YAML,
	".toml":     TOML,
	".csv":      CSV,
	".psv":      CSV,
	".tsv":      TSV,
	".tab":      TSV,
	".html":     HTML,
	".htm":      HTML,
	".xhtml":    HTML,
	".xml":      XML,
	".svg":      XML,
	".plist":    XML,
	".txt":      Text,
	".text":     Text,
	".log":      Text,
	".rst":      Text,

	// Images
	".png":  Image,
	".jpg":  Image,
	".jpeg": Image,
	".gif":  Image,
	".webp": Image,
	".bmp":  Image,
	".tif":  Image,
	".tiff": Image,
	".ico":  Image,

	// Archives
	".zip": Archive,
	".jar": Archive,
	".war": Archive,
	".ear": Archive,
	".tar": Archive,
	".tgz": Archive,
	".gz":  Archive,
	".bz2": Archive,
	".xz":  Archive,
	".7z":  Archive,
	".rar": Archive,

	// Known binaries
	".exe":   Binary,
	".dll":   Binary,
	".so":    Binary,
	".dylib": Binary,
	".o":     Binary,
	".a":     Binary,
	".bin":   Binary,
	".class": Binary,
	".wasm":  Binary,
	".pdf":   Binary,
	".db":    Binary,
	".mp3":   Binary,
	".ogg":   Binary,
	".flac":  Binary,

	// Source code
	".go":    Go,
	".py":    Python,
	".pyw":   Python,
	".pyi":   Python,
	".js":    JavaScript,
	".mjs":   JavaScript,
	".cjs":   JavaScript,
	".jsx":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".mts":   TypeScript,
	".rs":    Rust,
	".java":  Java,
	".c":     C,
	".h":     C,
	".cc":    CPP,
	".cpp":   CPP,
	".cxx":   CPP,
	".hpp":   CPP,
	".hh":    CPP,
	".cs":    CSharp,
	".rb":    Ruby,
	".php":   PHP,
	".swift": Swift,
	".kt":    Kotlin,
	".kts":   Kotlin,
	".scala": Scala,
	".sc":    Scala,
	".sh":    Shell,
	".bash":  Shell,
	".zsh":   Shell,
	".fish":  Shell,
	".sql":   SQL,
	".lua":   Lua,
	".css":   CSS,
	".scss":  CSS,
	".less":  CSS,
	".hs":    Haskell,
	".ex":    Elixir,
	".exs":   Elixir,
	".pl":    Perl,
	".pm":    Perl,
	".r":     R,
	".zig":   Zig,
	".proto": Protobuf,
	".diff":  Diff,
	".patch": Diff,
	".ini":   INI,
	".cfg":   INI,
	".conf":  INI,
	".mk":    Makefile,
}

// Detect maps a filename and an optional content sample to a tag.
// A nil sample means no content is available. Detect never fails.
func Detect(filename string, sample []byte) Tag {
	if tag, ok := detectByName(filename); ok {
		return tag
	}

	if sample == nil {
		return Unknown
	}
	if IsTextual(sample) {
		return Text
	}
	return Binary
}

// DetectByName reports the tag for filename using only the name tables.
func DetectByName(filename string) (Tag, bool) {
	return detectByName(filename)
}

func detectByName(filename string) (Tag, bool) {
	base := strings.ToLower(filepath.Base(filename))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return Unknown, false
	}

	if tag, ok := specialNames[base]; ok {
		return tag, true
	}
	if strings.HasPrefix(base, "dockerfile.") || strings.HasSuffix(base, ".dockerfile") {
		return Dockerfile, true
	}

	for ext, tag := range compoundExtensions {
		if strings.HasSuffix(base, ext) && len(base) > len(ext) {
			return tag, true
		}
	}

	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return Unknown, false
	}
	tag, ok := extensionTags[ext]
	return tag, ok
}

// Extension returns the lowercase extension of filename, including compound
// archive extensions such as ".tar.gz".
func Extension(filename string) string {
	base := strings.ToLower(filepath.Base(filename))
	for ext := range compoundExtensions {
		if strings.HasSuffix(base, ext) && len(base) > len(ext) {
			return ext
		}
	}
	return filepath.Ext(base)
}

// PrintableRatio returns the fraction of bytes in sample that are printable
// ASCII or common whitespace. An empty sample is fully printable.
func PrintableRatio(sample []byte) float64 {
	if len(sample) == 0 {
		return 1
	}
	printable := 0
	for _, b := range sample {
		if IsPrintableByte(b) {
			printable++
		}
	}
	return float64(printable) / float64(len(sample))
}

// IsTextual reports whether sample meets the printable threshold.
func IsTextual(sample []byte) bool {
	return PrintableRatio(sample) >= TextThreshold
}

// IsPrintableByte reports whether b is printable ASCII, tab, CR or LF.
func IsPrintableByte(b byte) bool {
	return (b >= 0x20 && b <= 0x7e) || b == '\t' || b == '\n' || b == '\r'
}
