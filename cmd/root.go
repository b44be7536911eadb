package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/cmd/cat"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/cmd/config"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/cmd/detect"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/cmd/renderers"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/cmd/version"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/cmd/view"
	internalconfig "github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var logLevelFlag string

var r3xCmd = &cobra.Command{
	Use:   "r3x",
	Short: "Render files as styled terminal text",
	Long: "r3x renders files for the terminal.\n\n" +
		"Each file is classified by name and content, then handed to the best " +
		"renderer for its type: Markdown, JSON, YAML, TOML, CSV, HTML, source " +
		"code, archives, images, binaries and plain text. Oversized input " +
		"produces a warning instead of a rendering, and a failing renderer " +
		"degrades to a plain fallback view.",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	r3xCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	r3xCmd.AddCommand(cat.CatCmd)
	r3xCmd.AddCommand(view.ViewCmd)
	r3xCmd.AddCommand(detect.DetectCmd)
	r3xCmd.AddCommand(renderers.RenderersCmd)
	r3xCmd.AddCommand(config.ConfigCmd)
	r3xCmd.AddCommand(version.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := internalconfig.Init(); err != nil {
		return err
	}
	if logLevelFlag != "" {
		internalconfig.Set("log_level", logLevelFlag)
	}

	logFile := internalconfig.GetPath("log_file")
	levelStr := internalconfig.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		level = logging.DefaultLevel
		if levelStr != "" {
			logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", level.String())
		}
	}

	if err := logManager.Upgrade(logFile, level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
	}

	logger.Debug("r3x initialized", "command", cmd.Name(), "config", internalconfig.ConfigFilePath())
	return nil
}

func Execute() error {
	r3xCmd.SilenceErrors = true
	r3xCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := r3xCmd.Execute()

	if err != nil {
		cmd, _, _ := r3xCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = r3xCmd
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Fprintf(os.Stderr, "\n")
			cmd.SetOut(os.Stderr)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
