package renderers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/testutil"
)

func createTestCommand() *cobra.Command {
	// Reset flag variables
	renderersTag = ""

	cmd := &cobra.Command{
		Use:     RenderersCmd.Use,
		Args:    RenderersCmd.Args,
		PreRunE: RenderersCmd.PreRunE,
		RunE:    RenderersCmd.RunE,
	}
	cmd.Flags().StringVarP(&renderersTag, "tag", "t", "", "")
	return cmd
}

func executeRenderers(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := createTestCommand()

	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestRenderers_ListsAll(t *testing.T) {
	testutil.NewTestEnv(t)

	output, err := executeRenderers(t)
	if err != nil {
		t.Fatalf("renderers failed: %v", err)
	}

	for _, name := range []string{"markdown", "json", "yaml", "toml", "csv", "html", "code", "binary", "archive", "image", "text"} {
		found := false
		for _, line := range strings.Split(output, "\n") {
			if fields := strings.Fields(line); len(fields) > 0 && fields[0] == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("renderer %q not listed:\n%s", name, output)
		}
	}
	if strings.Contains(output, "glamour") {
		t.Error("glamour should only be registered when configured")
	}
	if !strings.Contains(output, "Registered renderers (11)") {
		t.Errorf("unexpected count line:\n%s", output)
	}
}

func TestRenderers_TagCandidatesInOrder(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteConfig("renderers:\n  markdown:\n    engine: glamour\n")

	output, err := executeRenderers(t, "--tag", "markdown")
	if err != nil {
		t.Fatalf("renderers failed: %v", err)
	}

	glamour := strings.Index(output, "\nglamour ")
	native := strings.Index(output, "\nmarkdown ")
	if glamour < 0 || native < 0 {
		t.Fatalf("expected both markdown engines:\n%s", output)
	}
	if glamour > native {
		t.Errorf("glamour should be tried before the native renderer:\n%s", output)
	}
}

func TestRenderers_XMLHandledByCode(t *testing.T) {
	testutil.NewTestEnv(t)

	output, err := executeRenderers(t, "--tag", "xml")
	if err != nil {
		t.Fatalf("renderers failed: %v", err)
	}
	if !strings.Contains(output, "Candidates for xml (XML document)") {
		t.Errorf("missing candidates heading:\n%s", output)
	}
	if !strings.Contains(output, "\ncode ") {
		t.Errorf("xml should be rendered by the code renderer:\n%s", output)
	}
}

func TestRenderers_UnknownTag(t *testing.T) {
	testutil.NewTestEnv(t)

	if _, err := executeRenderers(t, "--tag", "nonsense"); err == nil {
		t.Error("expected an error for an unknown tag")
	}
}
