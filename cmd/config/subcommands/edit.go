package subcommands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
)

// EditCmd opens the configuration file in an editor.
var EditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration file in your default editor",
	Long: "Edit the configuration file in your default editor.\n\n" +
		"Opens the r3x configuration file in the editor specified by the " +
		"EDITOR or VISUAL environment variable. If neither is set, attempts to " +
		"use common editors (vim, vi, nano) in order. A missing file is first " +
		"created with the default values, and the result is validated after " +
		"the editor exits.",
	Example: `  # Edit configuration with default editor
  r3x config edit

  # Edit with a specific editor
  EDITOR="code --wait" r3x config edit`,
	Args:    cobra.NoArgs,
	PreRunE: validateEdit,
	RunE:    runEdit,
}

func validateEdit(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.GetConfigPath()

	if !config.ConfigExistsAt(configPath) {
		cfg := config.NewDefaultConfig()
		if err := config.Write(&cfg, configPath); err != nil {
			return fmt.Errorf("failed to create config file; %w", err)
		}
	}

	editor := findEditor()
	if len(editor) == 0 {
		return fmt.Errorf("no editor found; set EDITOR environment variable")
	}

	editorCmd := exec.CommandContext(cmd.Context(), editor[0], append(editor[1:], configPath)...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error; %w", err)
	}

	if _, err := config.LoadFromPath(configPath); err != nil {
		fmt.Fprintf(out, "Configuration saved but is invalid:\n  %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Fprintf(out, "Configuration saved: %s\n", configPath)
	return nil
}

// findEditor returns the editor command split into words.
func findEditor() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if editor := strings.Fields(os.Getenv(env)); len(editor) > 0 {
			return editor
		}
	}

	for _, editor := range []string{"vim", "vi", "nano", "emacs"} {
		if _, err := exec.LookPath(editor); err == nil {
			return []string{editor}
		}
	}

	return nil
}
