package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
)

var (
	showRaw bool
)

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"Shows the effective r3x configuration as YAML, with defaults, the " +
		"config file and R3X_ environment variables applied. Use --raw to show " +
		"only the contents of the config file.",
	Example: `  # Show effective configuration
  r3x config show

  # Show only explicitly set values
  r3x config show --raw`,
	Args:    cobra.NoArgs,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show only explicitly configured values (no defaults)")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if showRaw {
		return showRawConfig(cmd)
	}
	return showEffectiveConfig(cmd)
}

func showRawConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	configPath := config.GetConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "# No configuration file found")
			fmt.Fprintf(out, "# Default location: %s\n", configPath)
			return nil
		}
		return fmt.Errorf("failed to read config file; %w", err)
	}

	fmt.Fprintf(out, "# Configuration file: %s\n", configPath)
	fmt.Fprintln(out, string(data))
	return nil
}

func showEffectiveConfig(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Current()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "# Effective configuration (with defaults)")
	if path := config.ConfigFilePath(); path != "" {
		fmt.Fprintf(out, "# Config file: %s\n", path)
	} else {
		fmt.Fprintf(out, "# Config file: none (default location %s)\n", config.DefaultConfigPath())
	}
	return config.Print(out, cfg)
}
