// Package detect implements the detect command for showing how files are
// classified.
package detect

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/cmdutil"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/source"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/walker"
)

// Flag variables for the detect command.
var (
	detectVerbose   bool
	detectRecursive bool
	detectHidden    bool
	detectMaxFiles  int
)

// DetectCmd reports the content type and renderer chosen for each file.
var DetectCmd = &cobra.Command{
	Use:   "detect FILE...",
	Short: "Show the detected type and renderer for files",
	Long: "Show the detected content type and the renderer r3x would use for each FILE.\n\n" +
		"Detection looks at the filename first and falls back to sniffing the " +
		"content. Use --verbose to also display the MIME type, size, text " +
		"encoding, content hash and every candidate renderer in priority order. " +
		"With --recursive, directories are expanded into the files beneath " +
		"them; hidden entries and dependency directories are skipped unless " +
		"--hidden is given.",
	Example: `  # Show how a file would be rendered
  r3x detect README.md

  # Show details for several files
  r3x detect --verbose main.go data.csv image.png

  # Classify every file in a project
  r3x detect --recursive ./docs`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateDetect,
	RunE:    runDetect,
}

func init() {
	registerFlags(DetectCmd)
}

func registerFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&detectVerbose, "verbose", "v", false,
		"Show MIME type, size, encoding, hash and candidate renderers")
	cmd.Flags().BoolVarP(&detectRecursive, "recursive", "r", false,
		"Expand directories into the files beneath them")
	cmd.Flags().BoolVar(&detectHidden, "hidden", false,
		"Include hidden files and dependency directories when recursing")
	cmd.Flags().IntVar(&detectMaxFiles, "max-files", walker.DefaultMaxFiles,
		"Maximum number of files listed per directory")
}

func validateDetect(cmd *cobra.Command, args []string) error {
	if detectMaxFiles < 1 {
		return fmt.Errorf("max-files must be at least 1; got %d", detectMaxFiles)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

type detection struct {
	name       string
	file       *source.File
	tag        filetype.Tag
	renderer   string
	candidates []render.Renderer
	err        error
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Current()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reg := cmdutil.NewRegistry(cfg, slog.Default())
	reader := source.NewReader()

	inputs, failed := expandInputs(cmd, args)

	results := make([]detection, 0, len(inputs))
	for _, name := range inputs {
		d := detectOne(cmd, reader, reg, name)
		if d.err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "r3x: %s: %v\n", name, d.err)
			continue
		}
		results = append(results, d)
	}

	if detectVerbose {
		for i, d := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printVerbose(out, d)
		}
	} else if len(results) > 0 {
		fmt.Fprintf(out, "%-40s %-12s %-10s %s\n", "FILE", "TYPE", "RENDERER", "MIME")
		fmt.Fprintf(out, "%-40s %-12s %-10s %s\n", strings.Repeat("-", 40), strings.Repeat("-", 12), strings.Repeat("-", 10), strings.Repeat("-", 24))
		for _, d := range results {
			printTableRow(out, d)
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to detect %d of %d inputs", failed, len(inputs)+failed)
	}
	return nil
}

// expandInputs replaces directory arguments with their files when
// recursing. Directories that cannot be walked are reported and counted.
func expandInputs(cmd *cobra.Command, args []string) ([]string, int) {
	if !detectRecursive {
		return args, 0
	}

	rules := walker.DefaultRules()
	if detectHidden {
		rules = walker.Rules{}
	}

	var inputs []string
	failed := 0
	for _, name := range args {
		path, err := cmdutil.ResolvePath(name)
		if err != nil || name == source.StdinName {
			inputs = append(inputs, name)
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			inputs = append(inputs, name)
			continue
		}

		w := walker.New(walker.WithRules(rules), walker.WithMaxFiles(detectMaxFiles))
		files, err := w.Walk(cmd.Context(), path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "r3x: %s: %v\n", name, err)
			if !errors.Is(err, walker.ErrTooManyFiles) {
				failed++
				continue
			}
		}
		for _, f := range files {
			inputs = append(inputs, displayPath(name, path, f))
		}
	}
	return inputs, failed
}

// displayPath shows a walked file relative to the directory argument as
// the user typed it.
func displayPath(arg, root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return file
	}
	return filepath.Join(arg, rel)
}

func detectOne(cmd *cobra.Command, reader *source.Reader, reg *render.Registry, name string) detection {
	d := detection{name: name}

	var err error
	if name == source.StdinName {
		d.file, err = reader.ReadFrom(cmd.Context(), name, cmd.InOrStdin())
	} else {
		var path string
		path, err = cmdutil.ResolvePath(name)
		if err == nil {
			d.file, err = reader.ReadFile(cmd.Context(), path)
		}
	}
	if err != nil {
		d.err = err
		return d
	}

	rd, tag := reg.Resolve(d.file.Name, d.file.Content)
	d.tag = tag
	d.renderer = "fallback"
	if rd != nil {
		d.renderer = rd.Name()
	}
	d.candidates = reg.Candidates(tag)
	return d
}

func printTableRow(out io.Writer, d detection) {
	name := d.name
	if len(name) > 40 {
		name = "..." + name[len(name)-37:]
	}
	fmt.Fprintf(out, "%-40s %-12s %-10s %s\n", name, d.tag, d.renderer, d.file.Meta.MIMEType)
}

func printVerbose(out io.Writer, d detection) {
	f := d.file
	fmt.Fprintf(out, "%s\n", d.name)
	fmt.Fprintf(out, "  Type:       %s (%s)\n", d.tag, filetype.HumanName(d.tag))
	fmt.Fprintf(out, "  Renderer:   %s\n", d.renderer)
	fmt.Fprintf(out, "  MIME:       %s\n", f.Meta.MIMEType)
	fmt.Fprintf(out, "  Size:       %s (%d bytes)\n", render.FormatSize(f.Meta.Size), f.Meta.Size)
	fmt.Fprintf(out, "  Encoding:   %s\n", f.Encoding)
	if f.Hash != "" {
		fmt.Fprintf(out, "  Hash:       %s\n", f.Hash)
	}
	if f.Truncated() {
		fmt.Fprintf(out, "  Content:    not loaded (over the read ceiling)\n")
	}

	if len(d.candidates) == 0 {
		fmt.Fprintf(out, "  Candidates: none\n")
		return
	}
	names := make([]string, len(d.candidates))
	for i, c := range d.candidates {
		names[i] = fmt.Sprintf("%s(%d)", c.Name(), c.Priority())
	}
	fmt.Fprintf(out, "  Candidates: %s\n", strings.Join(names, ", "))
}
