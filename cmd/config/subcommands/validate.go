package subcommands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
)

// ValidateCmd validates the current configuration.
var ValidateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Validate the current configuration",
	Long: "Validate the current configuration.\n\n" +
		"Checks the configuration file for syntax errors and validates that all " +
		"settings have valid values. Pass FILE to check a file other than the " +
		"active one. Returns exit code 0 if valid, 1 if invalid.",
	Example: `  # Validate the configuration
  r3x config validate

  # Validate a candidate file before installing it
  r3x config validate ./config.yaml`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	configPath := config.GetConfigPath()
	if len(args) == 1 {
		configPath = args[0]
	}

	if !config.ConfigExistsAt(configPath) {
		if len(args) == 1 {
			return fmt.Errorf("configuration file %s not found", configPath)
		}
		fmt.Fprintf(out, "No configuration file found at %s\n", configPath)
		fmt.Fprintln(out, "Using default configuration values.")
		return nil
	}

	// Load the configuration (this also validates it)
	if _, err := config.LoadFromPath(configPath); err != nil {
		fmt.Fprintln(out, "Configuration validation failed:")
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				fmt.Fprintf(out, "  - %v\n", e)
			}
		} else {
			fmt.Fprintf(out, "  %v\n", err)
		}
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Fprintf(out, "Configuration is valid: %s\n", configPath)
	return nil
}
