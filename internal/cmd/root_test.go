package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("Root command should not be nil")
	}

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("Help should not fail: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "doccheck") {
		t.Errorf("Help text should contain 'doccheck', got: %s", output)
	}
	if !strings.Contains(output, "doc-test") {
		t.Errorf("Help text should mention doc-tests, got: %s", output)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "doccheck" {
		t.Errorf("Expected Use to be 'doccheck', got '%s'", cmd.Use)
	}

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"run", "validate", "history"} {
		if !names[want] {
			t.Errorf("Expected subcommand %q, found: %v", want, names)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	cmd := NewRootCommand()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Version flag should not fail: %v", err)
	}
	if !strings.Contains(buf.String(), Version) {
		t.Errorf("Version output should contain %q, got: %s", Version, buf.String())
	}
}
