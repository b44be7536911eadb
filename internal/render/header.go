package render

import (
	"fmt"
	"strings"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/layout"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Header renders the metadata block prefixed when ShowMetadata is set.
func Header(filename string, content []byte, meta Metadata, tag filetype.Tag, renderer string, opts Options) string {
	p := theme.For(opts.ColorOutput)

	size := int64(len(content))
	if content == nil {
		size = meta.Size
	}
	mime := meta.MIMEType
	if mime == "" {
		mime = filetype.MIMEType(filename, sniff(content))
	}

	type field struct{ label, value string }
	fields := []field{{"Name", displayName(filename)}}
	if meta.Path != "" {
		fields = append(fields, field{"Path", meta.Path})
	}
	fields = append(fields,
		field{"Size", fmt.Sprintf("%s (%d bytes)", FormatSize(size), size)},
		field{"Type", fmt.Sprintf("%s (%s)", filetype.HumanName(tag), mime)},
	)
	if !meta.ModTime.IsZero() {
		fields = append(fields, field{"Modified", meta.ModTime.Format("2006-01-02 15:04:05")})
	}
	fields = append(fields, field{"Renderer", renderer})

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(p.Paint(theme.Label, fmt.Sprintf("%-9s", f.label+":")))
		b.WriteString(" ")
		b.WriteString(f.value)
		b.WriteByte('\n')
	}
	b.WriteString(layout.Rule(opts.MaxWidth, p))
	return b.String()
}
