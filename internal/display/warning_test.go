package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarningDisplay(t *testing.T) {
	buf := new(bytes.Buffer)
	w := Warning{
		Title:      "build artifact cleanup incomplete",
		Message:    "permission denied",
		Files:      []string{"libjson.rlib"},
		Suggestion: "remove the artifact manually before the next run",
	}
	w.Display(buf)

	output := buf.String()
	for _, want := range []string{
		"Warning: build artifact cleanup incomplete",
		"permission denied",
		"Affected file:",
		"1. libjson.rlib",
		"Suggestion:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Warning output missing %q, got: %q", want, output)
		}
	}
}

func TestWarningDisplayPlural(t *testing.T) {
	buf := new(bytes.Buffer)
	Warning{Title: "t", Files: []string{"a", "b"}}.Display(buf)

	if !strings.Contains(buf.String(), "Affected files:") {
		t.Errorf("Expected plural file header, got: %q", buf.String())
	}
}

func TestWarnCleanup(t *testing.T) {
	w := WarnCleanup("libjson.rlib", "permission denied")
	if len(w.Files) != 1 || w.Files[0] != "libjson.rlib" {
		t.Errorf("Unexpected files: %v", w.Files)
	}
	if w.Suggestion == "" {
		t.Error("Deletion failure should carry a suggestion")
	}

	absent := WarnCleanup("libjson.rlib", "artifact already absent")
	if absent.Suggestion != "" {
		t.Error("An already-absent artifact needs no suggestion")
	}
}
