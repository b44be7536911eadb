// Package view implements the view command, an interactive pager for a
// rendered file.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/cmdutil"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/pager"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/source"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/watcher"
)

var (
	viewFlags  cmdutil.RenderFlags
	viewFollow bool
)

// ViewCmd opens a rendered file in a full screen pager.
var ViewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Render a file in an interactive pager",
	Long: "Render a file in an interactive pager.\n\n" +
		"The file is rendered to fit the terminal and re-rendered whenever the " +
		"terminal is resized. With --follow the file is watched and re-rendered " +
		"when its content changes, including atomic saves by editors. When " +
		"standard output is not a terminal the file is rendered once, as with " +
		"the cat command.\n\n" +
		"Keys: arrows, pgup/pgdn and the mouse wheel scroll; g and G jump to the " +
		"top and bottom; q quits.",
	Example: `  # Page through a Markdown file
  r3x view README.md

  # Follow a log file as it changes
  r3x view --follow build.log`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateView,
	RunE:    runView,
}

func init() {
	registerFlags(ViewCmd)
}

func registerFlags(cmd *cobra.Command) {
	viewFlags.Register(cmd)
	cmd.Flags().BoolVarP(&viewFollow, "follow", "f", false, "Re-render when the file changes")
}

func validateView(cmd *cobra.Command, args []string) error {
	if err := viewFlags.Validate(); err != nil {
		return err
	}
	if args[0] == source.StdinName {
		return fmt.Errorf("view needs a file; use cat to render standard input")
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	logger := slog.Default().With("component", "view")

	cfg, err := config.Current()
	if err != nil {
		return err
	}

	path, err := cmdutil.ResolvePath(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path; %w", err)
	}

	reader := source.NewReader()
	file, err := reader.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := viewFlags.Options(cmd, cfg, out)
	reg := cmdutil.NewRegistry(cfg, logger)

	maxWidth := cfg.Render.MaxWidth
	if cmd.Flags().Changed("width") {
		maxWidth = viewFlags.Width
	}
	doc := newDocument(reg, reader, file, opts, maxWidth, logger)

	if !cmdutil.IsTerminal(out) {
		rendered := doc.render(opts.MaxWidth)
		if !strings.HasSuffix(rendered, "\n") {
			rendered += "\n"
		}
		fmt.Fprint(out, rendered)
		return nil
	}

	pagerOpts := []pager.Option{
		pager.WithColor(opts.ColorOutput),
		pager.WithLogger(logger),
	}

	if viewFollow {
		follower, err := watcher.NewFollower(path,
			watcher.WithInitialHash(file.Hash),
			watcher.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		if err := follower.Start(ctx); err != nil {
			return fmt.Errorf("failed to follow %s; %w", path, err)
		}
		defer func() { _ = follower.Stop() }()

		changes := make(chan watcher.Change)
		go doc.follow(ctx, follower.Changes(), follower.Errors(), changes)
		pagerOpts = append(pagerOpts, pager.WithChanges(changes))
	}

	return pager.Run(ctx, pager.New(filepath.Base(path), doc.render, pagerOpts...))
}
