// Package renderers implements the renderers command for listing the
// renderer registry.
package renderers

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/cmdutil"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
)

// Flag variables for the renderers command.
var (
	renderersTag string
)

// RenderersCmd lists the registered renderers.
var RenderersCmd = &cobra.Command{
	Use:   "renderers",
	Short: "List the available renderers",
	Long: "List the renderers in the registry with their priority, input limits " +
		"and the content types they accept.\n\n" +
		"When several renderers accept a type the one with the highest priority " +
		"is tried first. Use --tag to show the candidates for a single type in " +
		"the order they are tried.",
	Example: `  # List all renderers
  r3x renderers

  # Show which renderers handle Markdown
  r3x renderers --tag markdown`,
	Args:    cobra.NoArgs,
	PreRunE: validateRenderers,
	RunE:    runRenderers,
}

func init() {
	RenderersCmd.Flags().StringVarP(&renderersTag, "tag", "t", "",
		"Only show candidates for this content type")
}

func validateRenderers(cmd *cobra.Command, args []string) error {
	if renderersTag != "" && !knownTag(filetype.Tag(renderersTag)) {
		return fmt.Errorf("unknown content type %q", renderersTag)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func knownTag(tag filetype.Tag) bool {
	for _, t := range filetype.AllTags() {
		if t == tag {
			return true
		}
	}
	return false
}

func runRenderers(cmd *cobra.Command, args []string) error {
	cfg, err := config.Current()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reg := cmdutil.NewRegistry(cfg, slog.Default())

	if renderersTag != "" {
		return printCandidates(out, reg, filetype.Tag(renderersTag))
	}

	entries := reg.Describe()
	fmt.Fprintf(out, "Registered renderers (%d):\n\n", len(entries))
	printHeader(out)
	for _, e := range entries {
		printRow(out, e)
	}
	return nil
}

func printCandidates(out io.Writer, reg *render.Registry, tag filetype.Tag) error {
	candidates := reg.Candidates(tag)
	if len(candidates) == 0 {
		fmt.Fprintf(out, "No renderer accepts %s; the text renderer or the fallback view is used.\n", tag)
		return nil
	}

	byName := make(map[string]render.Descriptor)
	for _, e := range reg.Describe() {
		byName[e.Name] = e
	}

	fmt.Fprintf(out, "Candidates for %s (%s), in order:\n\n", tag, filetype.HumanName(tag))
	printHeader(out)
	for _, c := range candidates {
		printRow(out, byName[c.Name()])
	}
	return nil
}

func printHeader(out io.Writer) {
	fmt.Fprintf(out, "%-10s %-8s %-10s %-10s %s\n", "NAME", "PRIORITY", "MAX SIZE", "MAX LINES", "TYPES")
	fmt.Fprintf(out, "%-10s %-8s %-10s %-10s %s\n", strings.Repeat("-", 10), strings.Repeat("-", 8), strings.Repeat("-", 10), strings.Repeat("-", 10), strings.Repeat("-", 20))
}

func printRow(out io.Writer, e render.Descriptor) {
	maxSize := "-"
	if e.Limits.MaxBytes > 0 {
		maxSize = render.FormatSize(e.Limits.MaxBytes)
	}
	maxLines := "-"
	if e.Limits.MaxLines > 0 {
		maxLines = fmt.Sprintf("%d", e.Limits.MaxLines)
	}

	tags := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		tags[i] = string(t)
	}
	fmt.Fprintf(out, "%-10s %-8d %-10s %-10s %s\n", e.Name, e.Priority, maxSize, maxLines, strings.Join(tags, ", "))
}
