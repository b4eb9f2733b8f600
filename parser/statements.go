package parser

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// ifPattern: [else] if (condition) [\n] {...}
type ifPattern struct{ base }

func newIfPattern() *ifPattern {
	return &ifPattern{newBase("If", 15,
		token.Keyword|optional, token.Keyword, token.Dynamic, token.End|optional, token.Content)}
}

func (pt *ifPattern) Passes(p *Parser, _ *scope.Context, tokens []*token.Token) bool {
	if tokens[0] != nil && !isKeyword(tokens[0], "else") {
		return false
	}
	_, parenthesized := p.tree.Node(ast.ID(tokens[2].Node)).(*ast.Content)
	return isKeyword(tokens[1], "if") && parenthesized && isGroup(tokens[4], token.Braces)
}

func (pt *ifPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	t := p.tree
	pos := tokens[1].StartPosition
	content := ast.ID(tokens[2].Node)
	if t.Count(content) != 1 {
		return ast.None, errors.New(errors.EmptyContent, tokens[2].StartPosition, "condition must be a single expression")
	}
	condition := t.First(content)
	t.Remove(condition)

	inner := scope.NewContext(ctx)
	body, err := p.Body(inner, tokens[4].Flatten(), tokens[4].StartPosition)
	if err != nil {
		return ast.None, err
	}
	id := t.New(&ast.If{Context: inner, ElseIf: tokens[0] != nil}, pos)
	t.Append(id, condition)
	t.Append(id, body)
	return id, nil
}

// elsePattern: else [\n] {...}
type elsePattern struct{ base }

func newElsePattern() *elsePattern {
	return &elsePattern{newBase("Else", 15, token.Keyword, token.End|optional, token.Content)}
}

func (pt *elsePattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isKeyword(tokens[0], "else") && isGroup(tokens[2], token.Braces)
}

func (pt *elsePattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	inner := scope.NewContext(ctx)
	body, err := p.Body(inner, tokens[2].Flatten(), tokens[2].StartPosition)
	if err != nil {
		return ast.None, err
	}
	id := p.tree.New(&ast.Else{Context: inner}, tokens[0].StartPosition)
	p.tree.Append(id, body)
	return id, nil
}

// loopPattern: loop|while [(init, condition, step) | (condition)] [\n] {...}
type loopPattern struct{ base }

func newLoopPattern() *loopPattern {
	return &loopPattern{newBase("Loop", 16,
		token.Keyword, token.Content|optional, token.End|optional, token.Content)}
}

func (pt *loopPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isKeyword(tokens[0], "loop", "while") &&
		(tokens[1] == nil || tokens[1].Paren == token.Parenthesis) && isGroup(tokens[3], token.Braces)
}

func (pt *loopPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	t := p.tree
	pos := tokens[0].StartPosition
	inner := scope.NewContext(ctx)

	var init, step []token.Token
	var condition []token.Token
	if header := tokens[1]; header != nil {
		switch len(header.Sections) {
		case 0:
		case 1:
			condition = header.Sections[0]
		case 3:
			init, condition, step = header.Sections[0], header.Sections[1], header.Sections[2]
		default:
			return ast.None, errors.New(errors.E1008, header.StartPosition,
				"loop header takes a condition or three sections: initialization, condition and step")
		}
	}

	initBlock := t.New(&ast.Block{}, pos)
	if err := p.Parse(initBlock, inner, init, MinPriority, Members-1); err != nil {
		return ast.None, err
	}
	forever := isBlank(condition)
	var cond ast.ID
	if forever {
		cond = t.New(&ast.Block{}, pos)
	} else {
		var err error
		if cond, err = p.Expression(inner, condition, pos); err != nil {
			return ast.None, err
		}
	}
	stepBlock := t.New(&ast.Block{}, pos)
	if err := p.Parse(stepBlock, inner, step, MinPriority, Members-1); err != nil {
		return ast.None, err
	}
	body, err := p.Body(inner, tokens[3].Flatten(), tokens[3].StartPosition)
	if err != nil {
		return ast.None, err
	}

	id := t.New(&ast.Loop{Context: inner, Forever: forever}, pos)
	for _, child := range []ast.ID{initBlock, cond, stepBlock, body} {
		t.Append(id, child)
	}
	return id, nil
}

func isBlank(tokens []token.Token) bool {
	for _, tok := range tokens {
		if tok.Kind != token.End {
			return false
		}
	}
	return true
}

// labelPattern: name:
type labelPattern struct{ base }

func newLabelPattern() *labelPattern {
	return &labelPattern{newBase("Label", 15, token.Identifier, token.Operator)}
}

func (pt *labelPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isOperator(tokens[1], ":")
}

func (pt *labelPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	owner := ctx
	if f := ctx.FunctionParent(); f != nil {
		owner = &f.Context
	}
	label := scope.NewLabel(tokens[0].Literal, tokens[0].StartPosition)
	if err := owner.DeclareLabel(label); err != nil {
		return ast.None, err
	}
	return p.tree.New(&ast.Label{Label: label}, tokens[0].StartPosition), nil
}

// returnPattern: return [value]
type returnPattern struct{ base }

func newReturnPattern() *returnPattern {
	return &returnPattern{newBase("Return", MinPriority, token.Keyword, anyValue|optional)}
}

func (pt *returnPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isKeyword(tokens[0], "return")
}

func (pt *returnPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	id := p.tree.New(&ast.Return{}, tokens[0].StartPosition)
	if tokens[1] != nil {
		value, err := p.operand(ctx, tokens[1])
		if err != nil {
			return ast.None, err
		}
		p.tree.Append(id, value)
	}
	return id, nil
}

// jumpPattern: goto label
type jumpPattern struct{ base }

func newJumpPattern() *jumpPattern {
	return &jumpPattern{newBase("Jump", MinPriority, token.Keyword, token.Identifier)}
}

func (pt *jumpPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isKeyword(tokens[0], "goto")
}

func (pt *jumpPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	name := tokens[1].Literal
	return p.tree.New(&ast.Jump{Name: name, Label: ctx.LookupLabel(name)}, tokens[0].StartPosition), nil
}
