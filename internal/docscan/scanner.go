// Package docscan extracts embedded documentation examples from a source
// unit without invoking the external doc-test tool. Doc comments are
// markdown; the scanner collects them, parses the markdown, and counts the
// fenced code blocks the doc-test tool would treat as executable examples.
//
// The scan is a preview only. The external tool remains the authority on
// what runs and what passes.
package docscan

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Example describes one fenced code block found in documentation comments.
type Example struct {
	Info     string // The fence info string ("rust", "ignore", "" ...)
	Runnable bool   // Whether the doc-test tool would execute it
	Code     string // The example source text
}

// Scanner extracts documentation examples from source units.
type Scanner struct {
	markdown goldmark.Markdown
}

// NewScanner creates a Scanner with a default markdown parser.
func NewScanner() *Scanner {
	return &Scanner{
		markdown: goldmark.New(),
	}
}

// ScanFile reads the source unit at path and returns the documentation
// examples found in its doc comments.
func (s *Scanner) ScanFile(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source unit: %w", err)
	}
	defer f.Close()

	var doc strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line, ok := docCommentText(scanner.Text())
		if !ok {
			continue
		}
		doc.WriteString(line)
		doc.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source unit: %w", err)
	}

	return s.Scan([]byte(doc.String())), nil
}

// Scan parses assembled documentation markdown and returns its examples.
func (s *Scanner) Scan(source []byte) []Example {
	var examples []Example

	doc := s.markdown.Parser().Parse(text.NewReader(source))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		info := ""
		if block.Info != nil {
			info = strings.TrimSpace(string(block.Info.Text(source)))
		}

		var code strings.Builder
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(source))
		}

		examples = append(examples, Example{
			Info:     info,
			Runnable: isRunnable(info),
			Code:     code.String(),
		})
		return ast.WalkContinue, nil
	})

	return examples
}

// CountRunnable scans the source unit and returns how many examples the
// doc-test tool would execute.
func (s *Scanner) CountRunnable(path string) (int, error) {
	examples, err := s.ScanFile(path)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, ex := range examples {
		if ex.Runnable {
			count++
		}
	}
	return count, nil
}

// docCommentText returns the documentation text of a line if it is a doc
// comment (outer /// or inner //!), with the comment marker stripped.
func docCommentText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)

	for _, marker := range []string{"///", "//!"} {
		if !strings.HasPrefix(trimmed, marker) {
			continue
		}
		rest := trimmed[len(marker):]
		// "////" and beyond is a regular comment, not documentation
		if strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "!") {
			return "", false
		}
		return strings.TrimPrefix(rest, " "), true
	}
	return "", false
}

// isRunnable reports whether a fence info string marks an executable
// example. An empty info string means a plain example; attribute lists may
// combine flags with commas ("rust,should_panic").
func isRunnable(info string) bool {
	if info == "" {
		return true
	}

	for _, attr := range strings.Split(info, ",") {
		switch strings.TrimSpace(attr) {
		case "ignore", "text", "compile_fail":
			return false
		case "", "rust", "should_panic", "no_run", "edition2015", "edition2018", "edition2021":
			// still an example the tool picks up
		default:
			// any other language tag (sh, json, ...) is not executed
			return false
		}
	}
	return true
}
