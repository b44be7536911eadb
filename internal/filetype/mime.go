package filetype

import (
	"mime"
	"net/http"
	"strings"
)

// MIMEType determines the MIME type of content. The extension table wins
// unless sniffing produced something more specific than a generic type.
func MIMEType(filename string, content []byte) string {
	ext := Extension(filename)
	extMime := mimeByExtension[ext]
	if extMime == "" {
		extMime = stripParams(mime.TypeByExtension(ext))
	}

	var sniffed string
	if len(content) > 0 {
		sniffed = stripParams(http.DetectContentType(content))
	}

	if extMime != "" {
		if sniffed == "" || sniffed == "application/octet-stream" || sniffed == "text/plain" {
			return extMime
		}
	}
	if sniffed != "" {
		return sniffed
	}
	if extMime != "" {
		return extMime
	}
	return "application/octet-stream"
}

func stripParams(m string) string {
	if idx := strings.Index(m, ";"); idx != -1 {
		m = m[:idx]
	}
	return strings.TrimSpace(m)
}

var mimeByExtension = map[string]string{
	".go":    "text/x-go",
	".py":    "text/x-python",
	".js":    "text/javascript",
	".ts":    "text/typescript",
	".tsx":   "text/typescript-jsx",
	".jsx":   "text/javascript-jsx",
	".rs":    "text/x-rust",
	".rb":    "text/x-ruby",
	".java":  "text/x-java",
	".kt":    "text/x-kotlin",
	".swift": "text/x-swift",
	".c":     "text/x-c",
	".cpp":   "text/x-c++",
	".h":     "text/x-c-header",
	".hpp":   "text/x-c++-header",
	".cs":    "text/x-csharp",
	".php":   "text/x-php",
	".scala": "text/x-scala",
	".ex":    "text/x-elixir",
	".hs":    "text/x-haskell",
	".lua":   "text/x-lua",
	".pl":    "text/x-perl",
	".r":     "text/x-r",
	".sql":   "text/x-sql",
	".sh":    "text/x-shellscript",
	".bash":  "text/x-shellscript",
	".zsh":   "text/x-shellscript",
	".zig":   "text/x-zig",
	".proto": "text/x-protobuf",
	".diff":  "text/x-diff",
	".patch": "text/x-diff",

	".md":       "text/markdown",
	".markdown": "text/markdown",
	".rst":      "text/x-rst",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".ini":      "text/ini",
	".cfg":      "text/ini",
	".json":     "application/json",
	".jsonl":    "application/x-ndjson",
	".ndjson":   "application/x-ndjson",
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".xml":      "application/xml",
	".html":     "text/html",
	".htm":      "text/html",
	".txt":      "text/plain",
	".log":      "text/plain",

	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",

	".zip":    "application/zip",
	".tar":    "application/x-tar",
	".gz":     "application/gzip",
	".tgz":    "application/gzip",
	".tar.gz": "application/gzip",
	".bz2":    "application/x-bzip2",
	".xz":     "application/x-xz",
	".7z":     "application/x-7z-compressed",
	".rar":    "application/vnd.rar",
	".jar":    "application/java-archive",
	".war":    "application/java-archive",
	".ear":    "application/java-archive",

	".exe":   "application/x-executable",
	".dll":   "application/x-executable",
	".so":    "application/x-sharedlib",
	".dylib": "application/x-sharedlib",
	".wasm":  "application/wasm",
}
