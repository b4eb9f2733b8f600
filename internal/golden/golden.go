// Package golden reads compiler test cases written as markdown documents.
//
// Each case starts with a "Test: name" heading followed by a zz fence
// holding the program. Assertion fences follow: asm lists instruction
// lines that must appear in the output in that order, ast holds the
// expected dump of the resolved tree, and error holds text the
// compilation error must contain.
package golden

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind is the language of a fence.
type Kind string

const (
	Source   Kind = "zz"
	Assembly Kind = "asm"
	Tree     Kind = "ast"
	Error    Kind = "error"
)

// Assertion is one expectation of a case.
type Assertion struct {
	Kind    Kind
	Content string
	Line    int
}

// Lines returns the non-blank lines of the assertion, trimmed.
func (a Assertion) Lines() []string {
	var out []string
	for _, line := range strings.Split(a.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Case is a single test case.
type Case struct {
	Name       string
	Source     string
	Assertions []Assertion
}

// Parse extracts the cases of a markdown document.
func Parse(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case
	flush := func() error {
		if current == nil {
			return nil
		}
		if current.Source == "" {
			return fmt.Errorf("test '%s' has no zz fence", current.Name)
		}
		if len(current.Assertions) == 0 {
			return fmt.Errorf("test '%s' has no assertions", current.Name)
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			title := plain(n, markdown)
			if !strings.HasPrefix(title, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{Name: strings.TrimPrefix(title, "Test: ")}
		case *ast.FencedCodeBlock:
			kind := Kind(n.Language(markdown))
			line := lineOf(n, markdown)
			if current == nil {
				if kind != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test", line, kind)
				}
				return ast.WalkContinue, nil
			}
			content := code(n, markdown)
			switch kind {
			case Source:
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: test '%s' has more than one zz fence", line, current.Name)
				}
				current.Source = content
			case Assembly, Tree, Error:
				current.Assertions = append(current.Assertions, Assertion{
					Kind:    kind,
					Content: strings.TrimRight(content, "\n"),
					Line:    line,
				})
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence '%s' in test '%s'", line, kind, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func plain(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func code(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n"))
}

// Subsequence reports the first expected line that does not appear in
// lines after the previous one, or "" when all of them do.
func Subsequence(lines, expected []string) string {
	i := 0
	for _, line := range lines {
		if i < len(expected) && strings.TrimSpace(line) == expected[i] {
			i++
		}
	}
	if i < len(expected) {
		return expected[i]
	}
	return ""
}
