// Package source reads files from disk or a stream and describes them for
// the render pipeline.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
)

// DefaultMaxRead is the largest file read into memory. It sits above every
// renderer ceiling so that the registry, not the reader, decides what is
// too large to render.
const DefaultMaxRead = 64 * 1024 * 1024

// headSize is the prefix read for MIME sniffing when the body is skipped.
const headSize = 512

// StdinName is the display name for content read from standard input.
const StdinName = "-"

// Encodings reported in File.Encoding.
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8 (bom)"
	EncodingUTF16LE = "utf-16le"
	EncodingUTF16BE = "utf-16be"
)

// ErrIsDirectory is returned when the path names a directory.
var ErrIsDirectory = errors.New("is a directory")

// File is a file ready for rendering.
type File struct {
	// Name is the path as given by the caller; it drives detection.
	Name string

	// Content is nil when the file exceeded the read ceiling. Meta.Size
	// still reports the real size so the registry can draw its warning.
	Content []byte

	Meta     render.Metadata
	Encoding string
	Hash     string
}

// Truncated reports whether the body was skipped for size.
func (f *File) Truncated() bool {
	return f.Content == nil && f.Meta.Size > 0
}

// Reader loads files.
type Reader struct {
	maxRead int64
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxRead sets the largest body read into memory.
func WithMaxRead(n int64) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxRead = n
		}
	}
}

// NewReader creates a Reader.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{maxRead: DefaultMaxRead}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile reads path with a default Reader.
func ReadFile(ctx context.Context, path string) (*File, error) {
	return NewReader().ReadFile(ctx, path)
}

// ReadFile stats and reads path. Files larger than the read ceiling are
// described but not loaded.
func (r *Reader) ReadFile(ctx context.Context, path string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file; %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to read %s; %w", path, ErrIsDirectory)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	f := &File{
		Name: path,
		Meta: render.Metadata{
			Path:    abs,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		},
		Encoding: EncodingUTF8,
	}

	if info.Size() > r.maxRead {
		head, err := readHead(path, headSize)
		if err != nil {
			return nil, fmt.Errorf("failed to read file head; %w", err)
		}
		f.Meta.MIMEType = filetype.MIMEType(path, head)
		return f, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file; %w", err)
	}
	r.fill(f, content)
	return f, nil
}

// ReadFrom reads a stream such as standard input. name is used for
// detection and display.
func (r *Reader) ReadFrom(ctx context.Context, name string, src io.Reader) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(io.LimitReader(src, r.maxRead+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s; %w", name, err)
	}

	f := &File{Name: name, Encoding: EncodingUTF8}
	if int64(len(content)) > r.maxRead {
		f.Meta.Size = int64(len(content))
		f.Meta.MIMEType = filetype.MIMEType(name, head(content))
		return f, nil
	}

	if content == nil {
		content = []byte{}
	}
	f.Meta.Size = int64(len(content))
	r.fill(f, content)
	return f, nil
}

func (r *Reader) fill(f *File, raw []byte) {
	f.Hash = filetype.HashBytes(raw)
	f.Meta.MIMEType = filetype.MIMEType(f.Name, head(raw))
	f.Content, f.Encoding = Decode(raw)
}

// Decode transcodes BOM-prefixed UTF-16 to UTF-8 and strips a UTF-8 BOM.
// Content without a BOM is returned unchanged, so binary data survives.
func Decode(content []byte) ([]byte, string) {
	var name string
	var dec *encoding.Decoder
	switch {
	case bytes.HasPrefix(content, []byte{0xef, 0xbb, 0xbf}):
		return content[3:], EncodingUTF8BOM
	case bytes.HasPrefix(content, []byte{0xff, 0xfe}):
		name = EncodingUTF16LE
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case bytes.HasPrefix(content, []byte{0xfe, 0xff}):
		name = EncodingUTF16BE
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	default:
		return content, EncodingUTF8
	}

	out, _, err := transform.Bytes(dec, content)
	if err != nil {
		return content, EncodingUTF8
	}
	return out, name
}

func head(content []byte) []byte {
	if len(content) > headSize {
		return content[:headSize]
	}
	return content
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}
