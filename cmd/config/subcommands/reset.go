package subcommands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
)

var (
	resetConfirm bool
)

// ResetCmd resets the configuration to defaults.
var ResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to default values",
	Long: "Reset configuration to default values.\n\n" +
		"This command rewrites the configuration file with every setting at its " +
		"default value, which also documents the available keys. A backup of " +
		"an existing file is created first. Use --confirm to skip the " +
		"confirmation prompt.",
	Example: `  # Reset configuration (prompts for confirmation)
  r3x config reset

  # Reset configuration without confirmation
  r3x config reset --confirm`,
	Args:    cobra.NoArgs,
	PreRunE: validateReset,
	RunE:    runReset,
}

func init() {
	ResetCmd.Flags().BoolVar(&resetConfirm, "confirm", false, "Skip confirmation prompt")
}

func validateReset(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.GetConfigPath()

	_, statErr := os.Stat(configPath)
	exists := statErr == nil

	if exists && !resetConfirm {
		fmt.Fprintf(out, "This will overwrite %s with default values.\n", configPath)
		fmt.Fprint(out, "Are you sure? [y/N]: ")

		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Reset cancelled.")
			return nil
		}
	}

	if exists {
		backupPath := fmt.Sprintf("%s.backup.%d", configPath, time.Now().Unix())
		if err := copyFile(configPath, backupPath); err != nil {
			return fmt.Errorf("failed to create backup; %w", err)
		}
		fmt.Fprintf(out, "Backup created: %s\n", backupPath)
	}

	cfg := config.NewDefaultConfig()
	if err := config.Write(&cfg, configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration reset to defaults: %s\n", configPath)
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}
