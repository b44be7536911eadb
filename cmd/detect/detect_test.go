package detect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/testutil"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/walker"
)

func createTestCommand() *cobra.Command {
	// Reset flag variables
	detectVerbose = false
	detectRecursive = false
	detectHidden = false
	detectMaxFiles = walker.DefaultMaxFiles

	cmd := &cobra.Command{
		Use:     DetectCmd.Use,
		Args:    DetectCmd.Args,
		PreRunE: DetectCmd.PreRunE,
		RunE:    DetectCmd.RunE,
	}
	registerFlags(cmd)
	return cmd
}

func executeDetect(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := createTestCommand()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func findRow(t *testing.T, output, name string) []string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && strings.HasSuffix(fields[0], name) {
			return fields
		}
	}
	t.Fatalf("no row for %s in:\n%s", name, output)
	return nil
}

func TestDetect_Table(t *testing.T) {
	env := testutil.NewTestEnv(t)
	md := env.CreateTestFile("a.md", []byte("# Title\n"))
	goFile := env.CreateTestFile("m.go", []byte("package main\n"))
	noExt := env.CreateTestFile("blob", []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00, 0x00, 0x10})

	stdout, _, err := executeDetect(t, md, goFile, noExt)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if !strings.HasPrefix(stdout, "FILE") {
		t.Errorf("output should start with the table header:\n%s", stdout)
	}

	tests := []struct {
		name     string
		tag      string
		renderer string
	}{
		{"a.md", "markdown", "markdown"},
		{"m.go", "go", "code"},
		{"blob", "binary", "binary"},
	}
	for _, tt := range tests {
		row := findRow(t, stdout, tt.name)
		if len(row) < 3 {
			t.Fatalf("short row %v", row)
		}
		if row[1] != tt.tag {
			t.Errorf("%s tag = %s, want %s", tt.name, row[1], tt.tag)
		}
		if row[2] != tt.renderer {
			t.Errorf("%s renderer = %s, want %s", tt.name, row[2], tt.renderer)
		}
	}
}

func TestDetect_Verbose(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.CreateTestFile("data.json", []byte(`{"a":1}`))

	stdout, _, err := executeDetect(t, "--verbose", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	for _, want := range []string{
		"Type:       json (JSON document)",
		"Renderer:   json",
		"MIME:       application/json",
		"Encoding:   utf-8",
		"Hash:",
		"Candidates: json(100)",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("verbose output missing %q:\n%s", want, stdout)
		}
	}
}

func TestDetect_MissingFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	good := env.CreateTestFile("ok.txt", []byte("hi"))

	stdout, stderr, err := executeDetect(t, good, env.DataDir+"/nope.txt")

	if err == nil {
		t.Fatal("expected an error for the missing file")
	}
	if !strings.Contains(stderr, "nope.txt") {
		t.Errorf("stderr = %q, want the missing file named", stderr)
	}
	findRow(t, stdout, "ok.txt")
}

func TestDetect_RequiresArgs(t *testing.T) {
	testutil.NewTestEnv(t)

	if _, _, err := executeDetect(t); err == nil {
		t.Error("expected an error without arguments")
	}
}

func TestDetect_GlamourEngineChangesRenderer(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteConfig("renderers:\n  markdown:\n    engine: glamour\n")
	md := env.CreateTestFile("a.md", []byte("# Title\n"))

	stdout, _, err := executeDetect(t, md)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if row := findRow(t, stdout, "a.md"); row[2] != "glamour" {
		t.Errorf("renderer = %s, want glamour", row[2])
	}
}

func TestDetect_DirectoryWithoutRecursiveFails(t *testing.T) {
	env := testutil.NewTestEnv(t)
	dir := env.CreateTestDir("docs")

	_, stderr, err := executeDetect(t, dir)
	if err == nil {
		t.Fatal("expected an error for a directory without --recursive")
	}
	if !strings.Contains(stderr, "is a directory") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestDetect_Recursive(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateTestFile("proj/README.md", []byte("# hi\n"))
	env.CreateTestFile("proj/src/main.go", []byte("package main\n"))
	env.CreateTestFile("proj/.secret", []byte("x"))
	dir := env.DataDir + "/proj"

	stdout, _, err := executeDetect(t, "--recursive", dir)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if row := findRow(t, stdout, "README.md"); row[1] != "markdown" {
		t.Errorf("README.md tag = %s", row[1])
	}
	if row := findRow(t, stdout, "src/main.go"); row[1] != "go" {
		t.Errorf("main.go tag = %s", row[1])
	}
	if strings.Contains(stdout, ".secret") {
		t.Error("hidden files should be skipped by default")
	}

	stdout, _, err = executeDetect(t, "-r", "--hidden", dir)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	findRow(t, stdout, ".secret")
}

func TestDetect_RecursiveMaxFiles(t *testing.T) {
	env := testutil.NewTestEnv(t)
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		env.CreateTestFile("many/"+name, []byte(name))
	}

	stdout, stderr, err := executeDetect(t, "-r", "--max-files", "2", env.DataDir+"/many")
	if err != nil {
		t.Fatalf("a truncated walk should not fail: %v", err)
	}
	if !strings.Contains(stderr, "too many files") {
		t.Errorf("stderr = %q, want a truncation notice", stderr)
	}
	if strings.Contains(stdout, "c.txt") {
		t.Error("files past the limit should not be listed")
	}
}
