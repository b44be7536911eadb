package renderers

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/layout"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Archive renderer defaults.
const (
	ArchiveMaxBytes          = 50 * MB
	DefaultArchiveMaxEntries = 100

	dizName    = "file_id.diz"
	dizMaxSize = 10 * 1024

	// gzipScanLimit bounds how much of a bare .gz stream is inflated to
	// measure it.
	gzipScanLimit = 256 * MB
)

// unreadable maps extensions with no reader to their archive kind.
var unreadable = map[string]string{
	".7z":      "7-Zip archive",
	".rar":     "RAR archive",
	".bz2":     "BZIP2 compressed file",
	".xz":      "XZ compressed file",
	".tar.bz2": "BZIP2 compressed tar archive",
	".tar.xz":  "XZ compressed tar archive",
}

// ArchiveEntry is one member of an archive.
type ArchiveEntry struct {
	Path       string
	Dir        bool
	Size       int64
	Compressed int64
}

// ArchiveListing is the readable contents of an archive.
type ArchiveListing struct {
	Kind    string
	Entries []ArchiveEntry

	// Compressed is the total compressed size, or the archive size when
	// members are not compressed individually.
	Compressed int64

	// Description is a decoded FILE_ID.DIZ, if present.
	Description string
}

// ArchiveRenderer lists archive contents as a tree.
type ArchiveRenderer struct {
	base
	maxEntries int
	showHidden bool
}

// ArchiveRendererOption configures the ArchiveRenderer.
type ArchiveRendererOption func(*ArchiveRenderer)

// WithMaxEntries caps the tree lines shown.
func WithMaxEntries(n int) ArchiveRendererOption {
	return func(r *ArchiveRenderer) {
		if n > 0 {
			r.maxEntries = n
		}
	}
}

// WithShowHidden includes dot-prefixed entries.
func WithShowHidden(show bool) ArchiveRendererOption {
	return func(r *ArchiveRenderer) {
		r.showHidden = show
	}
}

// NewArchiveRenderer creates an ArchiveRenderer.
func NewArchiveRenderer(opts ...ArchiveRendererOption) *ArchiveRenderer {
	r := &ArchiveRenderer{
		base: newBase("archive", 100, render.Limits{
			MaxBytes:    ArchiveMaxBytes,
			Alternative: "unzip -l %s",
		}, filetype.Archive),
		maxEntries: DefaultArchiveMaxEntries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lists the archive. A corrupt archive is an error.
func (r *ArchiveRenderer) Render(content []byte, filename string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	ext := filetype.Extension(filename)
	if kind, ok := unreadable[ext]; ok {
		return r.unavailable(filename, kind, p, opts.MaxWidth), nil
	}

	listing, err := ReadArchive(content, filename)
	if err != nil {
		return "", err
	}
	return r.format(filename, listing, p, opts.MaxWidth), nil
}

// ReadArchive reads the member list of a zip, tar, tar.gz or gz archive.
// The format comes from the extension, then the leading bytes.
func ReadArchive(content []byte, filename string) (*ArchiveListing, error) {
	switch ext := filetype.Extension(filename); {
	case ext == ".zip" || ext == ".jar" || ext == ".war" || ext == ".ear":
		return readZip(content)
	case ext == ".tar":
		return readTar(bytes.NewReader(content), "TAR archive", int64(len(content)))
	case ext == ".tar.gz" || ext == ".tgz":
		return readTarGz(content)
	case ext == ".gz":
		return readGzip(content, filename)
	}

	switch {
	case bytes.HasPrefix(content, []byte("PK")):
		return readZip(content)
	case bytes.HasPrefix(content, []byte{0x1f, 0x8b}):
		if l, err := readTarGz(content); err == nil {
			return l, nil
		}
		return readGzip(content, filename)
	case len(content) > 262 && string(content[257:262]) == "ustar":
		return readTar(bytes.NewReader(content), "TAR archive", int64(len(content)))
	}
	return nil, errors.New("unrecognized archive format")
}

func readZip(content []byte) (*ArchiveListing, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip; %w", err)
	}

	l := &ArchiveListing{Kind: "ZIP archive"}
	for _, f := range zr.File {
		e := ArchiveEntry{
			Path:       f.Name,
			Dir:        f.FileInfo().IsDir(),
			Size:       int64(f.UncompressedSize64),
			Compressed: int64(f.CompressedSize64),
		}
		l.Entries = append(l.Entries, e)
		l.Compressed += e.Compressed

		if !e.Dir && strings.EqualFold(f.Name, dizName) {
			if desc, err := readDIZ(f); err == nil {
				l.Description = desc
			}
		}
	}
	return l, nil
}

// readDIZ reads a FILE_ID.DIZ member, decoding it from CP437.
func readDIZ(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s; %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, dizMaxSize))
	if err != nil {
		return "", fmt.Errorf("failed to read %s; %w", f.Name, err)
	}
	return DecodeCP437(raw)
}

// DecodeCP437 converts CP437 text to UTF-8 with normalized line endings.
func DecodeCP437(raw []byte) (string, error) {
	// A trailing SUB marks end of file in DOS text.
	raw = bytes.TrimRight(raw, "\x1a")
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode cp437; %w", err)
	}
	text := strings.ReplaceAll(string(decoded), "\r\n", "\n")
	return strings.TrimRight(text, "\n "), nil
}

func readTarGz(content []byte) (*ArchiveListing, error) {
	gz, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip; %w", err)
	}
	defer gz.Close()
	return readTar(gz, "gzip compressed TAR archive", int64(len(content)))
}

func readTar(rd io.Reader, kind string, size int64) (*ArchiveListing, error) {
	tr := tar.NewReader(rd)
	l := &ArchiveListing{Kind: kind, Compressed: size}
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar; %w", err)
		}
		switch hdr.Typeflag {
		case tar.TypeXGlobalHeader, tar.TypeXHeader:
			continue
		}
		l.Entries = append(l.Entries, ArchiveEntry{
			Path: hdr.Name,
			Dir:  hdr.Typeflag == tar.TypeDir,
			Size: hdr.Size,
		})
	}
	return l, nil
}

func readGzip(content []byte, filename string) (*ArchiveListing, error) {
	gz, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip; %w", err)
	}
	defer gz.Close()

	name := gz.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	n, err := io.Copy(io.Discard, io.LimitReader(gz, gzipScanLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to read gzip; %w", err)
	}

	return &ArchiveListing{
		Kind:       "GZIP compressed file",
		Entries:    []ArchiveEntry{{Path: name, Size: n, Compressed: int64(len(content))}},
		Compressed: int64(len(content)),
	}, nil
}

type treeNode struct {
	name     string
	dir      bool
	size     int64
	children map[string]*treeNode
}

func (n *treeNode) child(name string, dir bool) *treeNode {
	if n.children == nil {
		n.children = make(map[string]*treeNode)
	}
	c, ok := n.children[name]
	if !ok {
		c = &treeNode{name: name, dir: dir}
		n.children[name] = c
	}
	if dir {
		c.dir = true
	}
	return c
}

func (n *treeNode) sorted() []*treeNode {
	out := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].dir != out[j].dir {
			return out[i].dir
		}
		return strings.ToLower(out[i].name) < strings.ToLower(out[j].name)
	})
	return out
}

func cleanEntryPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

func hiddenPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// buildTree arranges entries into a tree and counts what it holds.
func (r *ArchiveRenderer) buildTree(entries []ArchiveEntry) (root *treeNode, files, dirs int, total int64) {
	root = &treeNode{dir: true}
	for _, e := range entries {
		p := cleanEntryPath(e.Path)
		if p == "" || !r.showHidden && hiddenPath(p) {
			continue
		}
		segs := strings.Split(p, "/")
		node := root
		for i, seg := range segs {
			last := i == len(segs)-1
			dir := !last || e.Dir
			if dir {
				if _, exists := node.children[seg]; !exists {
					dirs++
				}
			} else {
				files++
				total += e.Size
			}
			node = node.child(seg, dir)
			if last && !dir {
				node.size = e.Size
			}
		}
	}
	return root, files, dirs, total
}

func (r *ArchiveRenderer) format(filename string, l *ArchiveListing, p *theme.Palette, width int) string {
	root, files, dirs, total := r.buildTree(l.Entries)

	var b strings.Builder
	b.WriteString(p.Paint(theme.Bold, filepath.Base(filename)) + " " + p.Paint(theme.Dim, "("+l.Kind+")") + "\n")

	dirWord := "directories"
	if dirs == 1 {
		dirWord = "directory"
	}
	summary := fmt.Sprintf("%s, %d %s · %s", plural(files, "file"), dirs, dirWord, render.FormatSize(total))
	if l.Compressed > 0 && l.Compressed < total {
		ratio := (1 - float64(l.Compressed)/float64(total)) * 100
		summary += fmt.Sprintf(" · compressed %s (%.1f%% saved)", render.FormatSize(l.Compressed), ratio)
	}
	b.WriteString(p.Paint(theme.Label, summary) + "\n")

	if l.Description != "" {
		lines := strings.Split(l.Description, "\n")
		b.WriteString("\n" + layout.Box(layout.BoxSpec{Title: "FILE_ID.DIZ", Lines: lines, Width: min(width, 50)}, p) + "\n")
	}
	b.WriteByte('\n')

	if files+dirs == 0 {
		b.WriteString(p.Paint(theme.Dim, "(no entries)"))
		return b.String()
	}

	var lines []string
	shown := 0
	var walk func(n *treeNode, prefix string)
	walk = func(n *treeNode, prefix string) {
		children := n.sorted()
		for i, c := range children {
			if shown >= r.maxEntries {
				return
			}
			last := i == len(children)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}

			var line string
			if c.dir {
				line = p.Paint(theme.Border, prefix+branch) + p.Paint(theme.Path, c.name+"/")
			} else {
				line = p.Paint(theme.Border, prefix+branch) + c.name + " " + p.Paint(theme.Dim, "("+render.FormatSize(c.size)+")")
			}
			lines = append(lines, line)
			shown++
			if c.dir {
				walk(c, prefix+next)
			}
		}
	}
	walk(root, "")

	b.WriteString(strings.Join(lines, "\n"))
	if rest := files + dirs - shown; rest > 0 {
		b.WriteString("\n" + p.Paint(theme.Dim, fmt.Sprintf("… %d more entries", rest)))
	}
	return b.String()
}

func (r *ArchiveRenderer) unavailable(filename, kind string, p *theme.Palette, width int) string {
	lines := []string{
		"File: " + filepath.Base(filename),
		"Kind: " + kind,
		"",
		p.Paint(theme.Dim, "No built-in reader for this format."),
	}
	return layout.WarningBox("Archive viewer not available", lines, width, p)
}
