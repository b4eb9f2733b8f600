package parser

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// Priority bounds of the grammar. Declarations sit at the top so they are
// reduced before the expressions inside them.
const (
	MinPriority = 1
	MaxPriority = 21
	Members     = 20
)

// Pattern reduces a fixed sequence of tokens into a node.
type Pattern interface {
	Name() string
	// Path lists the accepted token kinds per slot. Optional slots carry
	// token.Optional.
	Path() []token.Kind
	// Priority is the level at which the match may fire. Missing optional
	// slots are nil.
	Priority(tokens []*token.Token) int
	Passes(p *Parser, ctx *scope.Context, tokens []*token.Token) bool
	Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error)
	// Span is the part of the matched tokens replaced by the built node,
	// relative to the first matched token. An end of -1 means the end of
	// the match.
	Span() (start, end int)
}

// base carries the constant parts of a pattern.
type base struct {
	name     string
	path     []token.Kind
	priority int
	start    int
	end      int
}

func newBase(name string, priority int, path ...token.Kind) base {
	return base{name: name, path: path, priority: priority, end: -1}
}

func (b *base) Name() string { return b.name }
func (b *base) Path() []token.Kind { return b.path }
func (b *base) Priority([]*token.Token) int { return b.priority }
func (b *base) Span() (int, int) { return b.start, b.end }

type option struct {
	pattern Pattern
	missing []int
}

// trie indexes patterns by the kinds of their slots.
type trie struct {
	branches map[token.Kind]*trie
	options  []option
}

func newTrie() *trie {
	return &trie{branches: map[token.Kind]*trie{}}
}

func (t *trie) grow(pattern Pattern, path []token.Kind, index int, missing []int) {
	if index == len(path) {
		t.options = append(t.options, option{pattern: pattern, missing: append([]int(nil), missing...)})
		return
	}
	mask := path[index]
	if mask.Has(token.Optional) {
		t.grow(pattern, path, index+1, append(missing, index))
	}
	for _, kind := range (mask &^ token.Optional).Bits() {
		branch, ok := t.branches[kind]
		if !ok {
			branch = newTrie()
			t.branches[kind] = branch
		}
		branch.grow(pattern, path, index+1, missing)
	}
}

// mold fills the missing optional slots of a candidate with nil.
func mold(missing []int, candidate []token.Token) []*token.Token {
	molded := make([]*token.Token, 0, len(candidate)+len(missing))
	for i := range candidate {
		molded = append(molded, &candidate[i])
	}
	for _, index := range missing {
		molded = append(molded, nil)
		copy(molded[index+1:], molded[index:])
		molded[index] = nil
	}
	return molded
}

// Grammar is the pattern trie together with the tables the patterns use.
// It is built once and shared read-only between parsers.
type Grammar struct {
	root     *trie
	patterns []Pattern
	tables   *token.Tables
}

// NewGrammar registers every pattern in a fixed order.
func NewGrammar(tables *token.Tables) *Grammar {
	g := &Grammar{root: newTrie(), tables: tables}
	for _, pattern := range []Pattern{
		newExtendedTypePattern(),
		newTypePattern(),
		newMemberVariablePattern(),
		newMemberFunctionPattern(),
		newConstructorPattern(),
		newExternalFunctionPattern(),
		newLinkPattern(),
		newCastPattern(),
		newConstructionPattern(),
		newOffsetPattern(),
		newCallPattern(),
		newVariablePattern(),
		newLoopPattern(),
		newContentPattern(),
		newIfPattern(),
		newElsePattern(),
		newLabelPattern(),
		newUnarySignPattern(),
		newOperatorPattern(),
		newReturnPattern(),
		newJumpPattern(),
	} {
		g.Add(pattern)
	}
	return g
}

// Add registers a pattern. Patterns registered earlier win ties.
func (g *Grammar) Add(pattern Pattern) {
	g.patterns = append(g.patterns, pattern)
	g.root.grow(pattern, pattern.Path(), 0, nil)
}

// Patterns returns the registered patterns in order.
func (g *Grammar) Patterns() []Pattern { return g.patterns }

// Tables returns the operator and keyword tables.
func (g *Grammar) Tables() *token.Tables { return g.tables }

type match struct {
	pattern Pattern
	start   int
	length  int
	molded  []*token.Token
}

// next finds the leftmost start with a match at the given priority and,
// for that start, the deepest one.
func (g *Grammar) next(p *Parser, ctx *scope.Context, tokens []token.Token, priority int) *match {
	for start := range tokens {
		node := g.root
		var found *match
		for end := start; end < len(tokens); end++ {
			node = node.branches[tokens[end].Kind]
			if node == nil {
				break
			}
			candidate := tokens[start : end+1]
			for _, opt := range node.options {
				molded := mold(opt.missing, candidate)
				if opt.pattern.Priority(molded) == priority && opt.pattern.Passes(p, ctx, molded) {
					found = &match{pattern: opt.pattern, start: start, length: len(candidate), molded: molded}
					break
				}
			}
		}
		if found != nil {
			return found
		}
	}
	return nil
}
