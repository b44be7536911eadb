package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/layout"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Fallback limits.
const (
	FallbackMaxChars     = 10000
	FallbackPreviewChars = 1000
	FallbackHexBytes     = 256
	FallbackHexPerRow    = 16
)

// sniffLen bounds the bytes examined for detection.
const sniffLen = 8192

func sniff(content []byte) []byte {
	if len(content) > sniffLen {
		return content[:sniffLen]
	}
	return content
}

// Fallback renders content without a specialized renderer: a short header,
// then the text itself or a hex dump. A non-nil cause is shown in the
// header. The type line uses filetype.Detect; callers that already
// resolved a tag use FallbackAs. Fallback never panics.
func Fallback(filename string, content []byte, meta Metadata, opts Options, cause error) string {
	return FallbackAs(filename, filetype.Detect(filename, sniff(content)), content, meta, opts, cause)
}

// FallbackAs is Fallback with the type line taken from tag.
func FallbackAs(filename string, tag filetype.Tag, content []byte, meta Metadata, opts Options, cause error) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = fmt.Sprintf("File: %s\nType: %s\n(content could not be displayed)", filepath.Base(filename), filetype.HumanName(filetype.Unknown))
		}
	}()

	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	var b strings.Builder
	b.WriteString(p.Paint(theme.Label, "File: ") + p.Paint(theme.Bold, displayName(filename)) + "\n")
	b.WriteString(p.Paint(theme.Label, "Type: ") + filetype.HumanName(tag) + "\n")

	size := int64(len(content))
	if content == nil {
		size = meta.Size
	}
	if size > 0 {
		b.WriteString(p.Paint(theme.Label, "Size: ") + fmt.Sprintf("%s (%d bytes)", FormatSize(size), size) + "\n")
	}
	if cause != nil {
		b.WriteString(p.Paint(theme.Error, "Error: "+cause.Error()) + "\n")
	}
	b.WriteString(layout.Rule(opts.MaxWidth, p))
	b.WriteByte('\n')

	switch {
	case len(content) == 0:
		b.WriteString(p.Paint(theme.Dim, "(no content)"))
	case filetype.IsTextual(sniff(content)):
		b.WriteString(textPreview(content, p))
	default:
		data := content
		if len(data) > FallbackHexBytes {
			data = data[:FallbackHexBytes]
		}
		b.WriteString(strings.Join(HexDump(data, FallbackHexPerRow), "\n"))
		if len(content) > FallbackHexBytes {
			b.WriteString("\n" + p.Paint(theme.Dim, fmt.Sprintf("… %d more bytes not shown", len(content)-FallbackHexBytes)))
		}
	}
	return b.String()
}

func displayName(filename string) string {
	if filename == "" {
		return "(unnamed)"
	}
	return filepath.Base(filename)
}

func textPreview(content []byte, p *theme.Palette) string {
	text := strings.ToValidUTF8(string(content), "�")
	n := utf8.RuneCountInString(text)
	if n <= FallbackMaxChars {
		return text
	}

	cut, count := 0, 0
	for i := range text {
		if count == FallbackPreviewChars {
			cut = i
			break
		}
		count++
	}
	return text[:cut] + "\n" + p.Paint(theme.Warning,
		fmt.Sprintf("… truncated: showing first %d of %d characters", FallbackPreviewChars, n))
}

// HexDump formats data as rows of an offset, perRow hex bytes and an ASCII
// column in which non-printable bytes are shown as '.'.
func HexDump(data []byte, perRow int) []string {
	if perRow <= 0 {
		perRow = FallbackHexPerRow
	}
	rows := make([]string, 0, (len(data)+perRow-1)/perRow)
	for off := 0; off < len(data); off += perRow {
		end := min(off+perRow, len(data))
		chunk := data[off:end]

		var hex, ascii strings.Builder
		for i := 0; i < perRow; i++ {
			if i < len(chunk) {
				fmt.Fprintf(&hex, "%02x ", chunk[i])
				if chunk[i] >= 0x20 && chunk[i] <= 0x7e {
					ascii.WriteByte(chunk[i])
				} else {
					ascii.WriteByte('.')
				}
			} else {
				hex.WriteString("   ")
			}
			if i == perRow/2-1 {
				hex.WriteByte(' ')
			}
		}
		rows = append(rows, fmt.Sprintf("%08x  %s |%s|", off, hex.String(), ascii.String()))
	}
	return rows
}
