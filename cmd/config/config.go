// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage r3x configuration",
	Long: "Manage r3x configuration.\n\n" +
		"The config command allows you to view, edit, validate and reset the " +
		"r3x configuration. Configuration is stored in a YAML file located at " +
		"~/.config/r3x/config.yaml by default, or in the directory named by " +
		"R3X_CONFIG_DIR. Every key can also be set through an R3X_ environment " +
		"variable, for example R3X_RENDER_COLOR=never.",
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.EditCmd)
	ConfigCmd.AddCommand(subcommands.ResetCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
