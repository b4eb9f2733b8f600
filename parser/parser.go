// Package parser turns token lists into syntax trees by repeatedly reducing
// the highest priority pattern match into a single node.
package parser

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// Parser reduces token lists into nodes of one tree. A Parser is not safe
// for concurrent use; parse files in parallel with one Parser each.
type Parser struct {
	grammar *Grammar
	tree    *ast.Tree
	logger  zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger that receives every reduction at trace level.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New returns a parser that builds nodes into tree.
func New(grammar *Grammar, tree *ast.Tree, opts ...Option) *Parser {
	p := &Parser{grammar: grammar, tree: tree, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tree returns the tree the parser builds into.
func (p *Parser) Tree() *ast.Tree { return p.tree }

func (p *Parser) builtins() *scope.Builtins { return p.tree.Builtins() }

// Parse reduces tokens at priorities max down to min and appends the
// resulting nodes to parent. Line breaks left over are ignored; any other
// token that no pattern consumed is an error.
func (p *Parser) Parse(parent ast.ID, ctx *scope.Context, tokens []token.Token, min, max int) error {
	tokens = slices.Clone(tokens)
	for priority := max; priority >= min; priority-- {
		for {
			m := p.grammar.next(p, ctx, tokens, priority)
			if m == nil {
				break
			}
			var err error
			if tokens, err = p.reduce(ctx, tokens, m, priority); err != nil {
				return err
			}
		}
	}
	for _, tok := range tokens {
		switch tok.Kind {
		case token.End:
		case token.Dynamic:
			if err := p.append(parent, ast.ID(tok.Node)); err != nil {
				return err
			}
		default:
			return errors.New(errors.UnexpectedToken, tok.StartPosition, "unexpected '%s'", tok.String())
		}
	}
	return nil
}

// reduce builds the node of a match and replaces the span of the match
// with a single dynamic token at the start of the span.
func (p *Parser) reduce(ctx *scope.Context, tokens []token.Token, m *match, priority int) ([]token.Token, error) {
	id, err := m.pattern.Build(p, ctx, m.molded)
	if err != nil {
		return nil, err
	}
	start, end := m.pattern.Span()
	if end < 0 {
		end = m.length
	}
	first, last := tokens[m.start+start], tokens[m.start+end-1]
	p.logger.Trace().
		Str("pattern", m.pattern.Name()).
		Int("priority", priority).
		Stringer("pos", first.StartPosition).
		Msg("reduce")
	reduced := token.Token{
		Kind:          token.Dynamic,
		Node:          int32(id),
		StartPosition: first.StartPosition,
		EndPosition:   last.EndPosition,
	}
	return slices.Replace(tokens, m.start+start, m.start+end, reduced), nil
}

// append adds a reduced node to parent. Else and else-if nodes become the
// successor of the if chain that precedes them.
func (p *Parser) append(parent, id ast.ID) error {
	t := p.tree
	switch n := t.Node(id).(type) {
	case *ast.Else:
	case *ast.If:
		if !n.ElseIf {
			t.Append(parent, id)
			return nil
		}
	default:
		t.Append(parent, id)
		return nil
	}
	chain := t.Last(parent)
	if chain == ast.None {
		return errors.New(errors.UnexpectedToken, t.Pos(id), "'else' without a preceding 'if'")
	}
	if _, ok := t.Node(chain).(*ast.If); !ok {
		return errors.New(errors.UnexpectedToken, t.Pos(id), "'else' without a preceding 'if'")
	}
	for {
		successor := t.Child(chain, 2)
		if successor == ast.None {
			break
		}
		if _, ok := t.Node(successor).(*ast.If); !ok {
			return errors.New(errors.UnexpectedToken, t.Pos(id), "the 'if' chain already ends with an 'else'")
		}
		chain = successor
	}
	t.Append(chain, id)
	return nil
}

// Expression parses tokens as exactly one expression and returns its
// detached node. A lone operand needs no pattern and becomes a node directly.
func (p *Parser) Expression(ctx *scope.Context, tokens []token.Token, pos token.Position) (ast.ID, error) {
	t := p.tree
	if tok, ok := single(tokens); ok && tok.Kind != token.Dynamic {
		return p.operand(ctx, &tok)
	}
	holder := t.New(&ast.Block{}, pos)
	if err := p.Parse(holder, ctx, tokens, MinPriority, Members-1); err != nil {
		return ast.None, err
	}
	switch t.Count(holder) {
	case 0:
		return ast.None, errors.New(errors.EmptyContent, pos, "expression cannot be empty")
	case 1:
		id := t.First(holder)
		t.Remove(id)
		return id, nil
	default:
		return ast.None, errors.New(errors.UnexpectedToken, t.Pos(t.Child(holder, 1)), "expected a single expression")
	}
}

// single returns the only token of tokens that is not a line break.
func single(tokens []token.Token) (token.Token, bool) {
	var found token.Token
	n := 0
	for _, tok := range tokens {
		if tok.Kind == token.End {
			continue
		}
		found = tok
		n++
	}
	return found, n == 1
}

// Body parses statements into a new block.
func (p *Parser) Body(ctx *scope.Context, tokens []token.Token, pos token.Position) (ast.ID, error) {
	block := p.tree.New(&ast.Block{}, pos)
	if err := p.Parse(block, ctx, tokens, MinPriority, Members-1); err != nil {
		return ast.None, err
	}
	return block, nil
}
