// Package cat provides the cat command, which renders files to stdout.
package cat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/cmdutil"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/metrics"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/source"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

var (
	catFlags     cmdutil.RenderFlags
	catStats     bool
	catJobs      int
	catStdinName string
)

// CatCmd renders one or more files.
var CatCmd = &cobra.Command{
	Use:   "cat [FILE...]",
	Short: "Render files to standard output",
	Long: "Render files to standard output.\n\n" +
		"Each FILE is classified and rendered by the best matching renderer. " +
		"Files are rendered concurrently but printed in the order given; when " +
		"more than one file is rendered each is preceded by a header line. " +
		"With no FILE, or when FILE is -, standard input is read. A file that " +
		"cannot be read is reported on stderr and the remaining files are " +
		"still rendered.",
	Example: `  # Render a Markdown file
  r3x cat README.md

  # Render several files with metadata headers at a fixed width
  r3x cat --metadata --width 100 config.yaml data.csv

  # Render piped JSON, naming it for type detection
  curl -s https://example.com/api | r3x cat --stdin-name response.json

  # Print render metrics after the output
  r3x cat --stats archive.zip`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: validateCat,
	RunE:    runCat,
}

func init() {
	registerFlags(CatCmd)
}

func registerFlags(cmd *cobra.Command) {
	catFlags.Register(cmd)
	cmd.Flags().BoolVar(&catStats, "stats", false, "Write render metrics to stderr after the output")
	cmd.Flags().IntVarP(&catJobs, "jobs", "j", runtime.NumCPU(), "Number of files rendered concurrently")
	cmd.Flags().StringVar(&catStdinName, "stdin-name", source.StdinName, "Filename used to detect the type of standard input")
}

func validateCat(cmd *cobra.Command, args []string) error {
	if err := catFlags.Validate(); err != nil {
		return err
	}
	if catJobs < 1 {
		return fmt.Errorf("jobs must be at least 1; got %d", catJobs)
	}
	if len(args) == 0 && cmdutil.IsTerminal(cmd.InOrStdin()) {
		return errors.New("no input; pass a FILE or pipe data on stdin")
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

type result struct {
	name string
	out  string
	err  error
}

func runCat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Current()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := catFlags.Options(cmd, cfg, out)
	reg := cmdutil.NewRegistry(cfg, slog.Default())

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{source.StdinName}
	}

	results := renderAll(cmd.Context(), reg, inputs, cmd.InOrStdin(), opts)
	failed := writeResults(out, cmd.ErrOrStderr(), results, opts)

	if catStats {
		if err := metrics.WriteText(cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("failed to write metrics; %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to render %d of %d files", failed, len(inputs))
	}
	return nil
}

// renderAll renders inputs with at most catJobs in flight. Results keep
// the input order.
func renderAll(ctx context.Context, reg *render.Registry, inputs []string, stdin io.Reader, opts render.Options) []result {
	reader := source.NewReader()
	results := make([]result, len(inputs))

	var g errgroup.Group
	g.SetLimit(catJobs)

	stdinUsed := false
	for i, name := range inputs {
		results[i].name = name
		if name == source.StdinName {
			if stdinUsed {
				results[i].err = errors.New("standard input already read")
				continue
			}
			stdinUsed = true
		}

		g.Go(func() error {
			results[i].out, results[i].err = renderOne(ctx, reader, reg, name, stdin, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func renderOne(ctx context.Context, reader *source.Reader, reg *render.Registry, name string, stdin io.Reader, opts render.Options) (string, error) {
	var (
		f   *source.File
		err error
	)
	if name == source.StdinName {
		f, err = reader.ReadFrom(ctx, catStdinName, stdin)
	} else {
		var path string
		path, err = cmdutil.ResolvePath(name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path; %w", err)
		}
		f, err = reader.ReadFile(ctx, path)
	}
	if err != nil {
		return "", err
	}

	slog.Debug("rendering file", "file", f.Name, "size", f.Meta.Size, "encoding", f.Encoding)
	return reg.Render(f.Name, f.Content, f.Meta, opts), nil
}

// writeResults prints rendered output in order and reports failures on
// errOut. It returns the number of failed inputs.
func writeResults(out, errOut io.Writer, results []result, opts render.Options) int {
	p := theme.For(opts.ColorOutput)
	multi := len(results) > 1

	failed := 0
	printed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(errOut, "r3x: %s: %v\n", r.name, r.err)
			continue
		}

		if multi {
			if printed > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, p.Paint(theme.Bold, fmt.Sprintf("==> %s <==", r.name)))
		}
		fmt.Fprint(out, r.out)
		if !strings.HasSuffix(r.out, "\n") {
			fmt.Fprintln(out)
		}
		printed++
	}
	return failed
}
