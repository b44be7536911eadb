package renderers

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Binary renderer defaults.
const (
	BinaryMaxBytes = 10 * MB

	DefaultBytesPerLine = 16
	DefaultHexBytes     = 2048

	entropySample = 1024
	stringsWindow = 64 * 1024
	maxStrings    = 20
	minStringLen  = 4
)

// Labels for content no signature matches.
const (
	LabelTextLike = "Text-based file (treated as binary)"
	LabelUnknown  = "Unknown binary format"
)

type signature struct {
	offset int
	magic  []byte
	label  string
}

// signatures are checked in order; the first match wins.
var signatures = []signature{
	{0, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, "PNG Image"},
	{0, []byte{0x89, 'P', 'N', 'G'}, "PNG Image"},
	{0, []byte{0xff, 0xd8, 0xff}, "JPEG Image"},
	{0, []byte("GIF87a"), "GIF Image"},
	{0, []byte("GIF89a"), "GIF Image"},
	{8, []byte("WEBP"), "WebP Image"},
	{0, []byte("BM"), "BMP Image"},
	{0, []byte{'I', 'I', 0x2a, 0x00}, "TIFF Image"},
	{0, []byte{'M', 'M', 0x00, 0x2a}, "TIFF Image"},
	{0, []byte{0x00, 0x00, 0x01, 0x00}, "ICO Icon"},
	{0, []byte("%PDF"), "PDF Document"},
	{0, []byte{'P', 'K', 0x03, 0x04}, "ZIP Archive"},
	{0, []byte{'P', 'K', 0x05, 0x06}, "ZIP Archive"},
	{0, []byte{0x1f, 0x8b}, "GZIP Compressed"},
	{0, []byte("BZh"), "BZIP2 Compressed"},
	{0, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, "XZ Compressed"},
	{0, []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}, "7-Zip Archive"},
	{0, []byte("Rar!\x1a\x07"), "RAR Archive"},
	{0, []byte{0x7f, 'E', 'L', 'F'}, "ELF Executable"},
	{0, []byte{0xfe, 0xed, 0xfa, 0xce}, "Mach-O Binary"},
	{0, []byte{0xfe, 0xed, 0xfa, 0xcf}, "Mach-O Binary"},
	{0, []byte{0xce, 0xfa, 0xed, 0xfe}, "Mach-O Binary"},
	{0, []byte{0xcf, 0xfa, 0xed, 0xfe}, "Mach-O Binary"},
	{0, []byte{0xca, 0xfe, 0xba, 0xbe}, "Java Class File"},
	{0, []byte("MZ"), "Windows Executable (PE)"},
	{0, []byte{0x00, 'a', 's', 'm'}, "WebAssembly Module"},
	{0, []byte("SQLite format 3\x00"), "SQLite Database"},
	{0, []byte("ID3"), "MP3 Audio (ID3)"},
	{0, []byte("OggS"), "OGG Media"},
	{0, []byte("fLaC"), "FLAC Audio"},
}

// headerChecks confirm two-byte magics that plain text often starts with.
var headerChecks = map[string]func([]byte) bool{
	"BMP Image":               isBMP,
	"Windows Executable (PE)": isPE,
}

// bmpInfoSizes are the DIB header sizes the BMP variants use.
var bmpInfoSizes = map[uint32]bool{12: true, 40: true, 52: true, 56: true, 64: true, 108: true, 124: true}

// isBMP requires a known DIB header size after the 14-byte file header.
func isBMP(data []byte) bool {
	if len(data) < 18 {
		return false
	}
	return bmpInfoSizes[binary.LittleEndian.Uint32(data[14:18])]
}

// isPE follows e_lfanew to the PE signature. A sample that stops before
// it still counts when it is not text.
func isPE(data []byte) bool {
	if len(data) >= 0x40 {
		off := int64(binary.LittleEndian.Uint32(data[0x3c:0x40]))
		if off >= 0x40 && off+4 <= int64(len(data)) {
			return bytes.Equal(data[off:off+4], []byte("PE\x00\x00"))
		}
	}
	return !filetype.IsTextual(data)
}

// Identify labels data by its leading bytes.
func Identify(data []byte) string {
	for _, s := range signatures {
		if s.offset == 8 && !bytes.HasPrefix(data, []byte("RIFF")) {
			continue
		}
		if len(data) < s.offset+len(s.magic) || !bytes.Equal(data[s.offset:s.offset+len(s.magic)], s.magic) {
			continue
		}
		if check, ok := headerChecks[s.label]; ok && !check(data) {
			continue
		}
		return s.label
	}
	if filetype.IsTextual(data) {
		return LabelTextLike
	}
	return LabelUnknown
}

// Entropy returns the Shannon entropy of data in bits per byte.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var freq [256]int
	for _, b := range data {
		freq[b]++
	}
	n := float64(len(data))
	var h float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// entropyMeaning interprets an entropy value.
func entropyMeaning(h float64) string {
	switch {
	case h < 1:
		return "highly repetitive"
	case h < 3.5:
		return "low, structured or sparse data"
	case h < 6:
		return "moderate, typical of text or code"
	case h < 7.5:
		return "high, typical of executables"
	default:
		return "very high, compressed or encrypted"
	}
}

// ByteClasses holds the share of each byte class, in percent.
type ByteClasses struct {
	Null, Printable, Control, High float64
}

// Classify computes byte class percentages.
func Classify(data []byte) ByteClasses {
	if len(data) == 0 {
		return ByteClasses{}
	}
	var null, printable, control, high int
	for _, b := range data {
		switch byteClass(b) {
		case classNull:
			null++
		case classPrintable:
			printable++
		case classHigh:
			high++
		default:
			control++
		}
	}
	n := float64(len(data)) / 100
	return ByteClasses{
		Null:      float64(null) / n,
		Printable: float64(printable) / n,
		Control:   float64(control) / n,
		High:      float64(high) / n,
	}
}

type class int

const (
	classNull class = iota
	classPrintable
	classControl
	classHigh
)

func byteClass(b byte) class {
	switch {
	case b == 0:
		return classNull
	case b >= 0x80:
		return classHigh
	case filetype.IsPrintableByte(b):
		return classPrintable
	default:
		return classControl
	}
}

var classRoles = [...]theme.Role{
	classNull:      theme.Dim,
	classPrintable: theme.Success,
	classControl:   theme.Number,
	classHigh:      theme.Keyword,
}

// Strings extracts printable ASCII runs of at least minLen bytes.
func Strings(data []byte, minLen, limit int) []string {
	var out []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minLen {
			out = append(out, string(data[start:end]))
		}
		start = -1
	}
	for i, b := range data {
		if b >= 0x20 && b <= 0x7e {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		if len(out) >= limit {
			return out
		}
	}
	flush(len(data))
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BinaryRenderer shows a file-type guess, statistics and a hex dump.
type BinaryRenderer struct {
	base
	bytesPerLine int
	maxBytes     int
}

// BinaryRendererOption configures the BinaryRenderer.
type BinaryRendererOption func(*BinaryRenderer)

// WithBytesPerLine sets the hex dump row length.
func WithBytesPerLine(n int) BinaryRendererOption {
	return func(r *BinaryRenderer) {
		if n > 0 {
			r.bytesPerLine = n
		}
	}
}

// WithHexBytes sets how many leading bytes the hex dump covers.
func WithHexBytes(n int) BinaryRendererOption {
	return func(r *BinaryRenderer) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// NewBinaryRenderer creates a BinaryRenderer.
func NewBinaryRenderer(opts ...BinaryRendererOption) *BinaryRenderer {
	r := &BinaryRenderer{
		base: newBase("binary", 50, render.Limits{
			MaxBytes:    BinaryMaxBytes,
			Alternative: "xxd %s | less",
		}, filetype.Binary),
		bytesPerLine: DefaultBytesPerLine,
		maxBytes:     DefaultHexBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders the info section followed by the hex dump.
func (r *BinaryRenderer) Render(content []byte, filename string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	label := func(s string) string { return p.Paint(theme.Label, fmt.Sprintf("%-9s", s)) }

	var b strings.Builder
	name := filepath.Base(filename)
	if filename == "" {
		name = "(unnamed)"
	}
	b.WriteString(label("File:") + p.Paint(theme.Bold, name) + "\n")
	b.WriteString(label("Size:") + fmt.Sprintf("%s (%d bytes)", render.FormatSize(int64(len(content))), len(content)) + "\n")
	b.WriteString(label("Type:") + p.Paint(theme.Accent, Identify(content)) + "\n")

	if len(content) == 0 {
		b.WriteString(p.Paint(theme.Dim, "(empty file)"))
		return b.String(), nil
	}

	sample := content[:min(len(content), entropySample)]
	h := Entropy(sample)
	b.WriteString(label("Entropy:") + fmt.Sprintf("%.2f bits/byte (%s)", h, entropyMeaning(h)) + "\n")

	window := content[:min(len(content), stringsWindow)]
	c := Classify(window)
	b.WriteString(label("Bytes:") + fmt.Sprintf("%.1f%% null, %.1f%% printable, %.1f%% control, %.1f%% high-bit",
		c.Null, c.Printable, c.Control, c.High) + "\n")

	if found := Strings(window, minStringLen, maxStrings); len(found) > 0 {
		b.WriteString("\n" + p.Paint(theme.Bold, "Strings") + "\n")
		for _, s := range found {
			b.WriteString("  " + p.Paint(theme.String, termtext.TruncatePlain(strconv.Quote(s), opts.MaxWidth-2)) + "\n")
		}
	}

	b.WriteString("\n" + p.Paint(theme.Bold, "Hex dump") + "\n")
	dump := content[:min(len(content), r.maxBytes)]
	b.WriteString(strings.Join(r.hexRows(dump, opts.MaxWidth, p), "\n"))
	if rest := len(content) - len(dump); rest > 0 {
		b.WriteString("\n" + p.Paint(theme.Dim, fmt.Sprintf("… %d more bytes not shown", rest)))
	}
	return b.String(), nil
}

// rowBytes fits the configured row length to width, in multiples of four.
func (r *BinaryRenderer) rowBytes(width int) int {
	n := r.bytesPerLine
	// offset(8) + 2 + 3n + 1 + n
	if fit := (width - 11) / 4; fit < n {
		n = max(fit/4*4, 4)
	}
	return n
}

func (r *BinaryRenderer) hexRows(data []byte, width int, p *theme.Palette) []string {
	per := r.rowBytes(width)
	rows := make([]string, 0, (len(data)+per-1)/per)
	for off := 0; off < len(data); off += per {
		chunk := data[off:min(off+per, len(data))]

		var hex, ascii strings.Builder
		for i := 0; i < per; i++ {
			if i > 0 && i%8 == 0 {
				hex.WriteByte(' ')
			}
			if i >= len(chunk) {
				hex.WriteString("   ")
				continue
			}
			bt := chunk[i]
			role := classRoles[byteClass(bt)]
			hex.WriteString(p.Paint(role, fmt.Sprintf("%02x", bt)) + " ")
			if bt >= 0x20 && bt <= 0x7e {
				ascii.WriteString(p.Paint(role, string(rune(bt))))
			} else {
				ascii.WriteString(p.Paint(theme.Dim, "·"))
			}
		}
		rows = append(rows, p.Paint(theme.Label, fmt.Sprintf("%08x", off))+"  "+hex.String()+" "+ascii.String())
	}
	return rows
}
