package parser

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// linkPattern: object . member
type linkPattern struct{ base }

func newLinkPattern() *linkPattern {
	return &linkPattern{newBase("Link", 19,
		token.Function|token.Identifier|token.Dynamic, token.Operator, token.Function|token.Identifier)}
}

func (pt *linkPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isOperator(tokens[1], ".")
}

func (pt *linkPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	t := p.tree
	left, err := p.operand(ctx, tokens[0])
	if err != nil {
		return ast.None, err
	}
	var typ *scope.Type
	if ref, ok := t.Node(left).(*ast.TypeRef); ok {
		typ = ref.Type
	} else {
		typ = ast.TypeOf(t, left)
	}
	member := tokens[2]
	var right ast.ID
	if member.Kind == token.Function {
		var fs *scope.Functions
		if typ != nil {
			fs = typ.LocalFunctions(member.Literal)
		}
		// Arguments are evaluated in the caller's scope.
		if right, err = p.call(ctx, member, fs, false); err != nil {
			return ast.None, err
		}
	} else {
		right = p.member(typ, member)
	}
	id := t.New(&ast.Link{}, tokens[1].StartPosition)
	t.Append(id, left)
	t.Append(id, right)
	return id, nil
}

// member binds a name inside typ, leaving a placeholder while typ is unknown.
func (p *Parser) member(typ *scope.Type, tok *token.Token) ast.ID {
	t := p.tree
	if typ != nil {
		if v := typ.LocalVariable(tok.Literal); v != nil {
			return t.New(&ast.Var{Variable: v}, tok.StartPosition)
		}
		if nested := typ.LocalType(tok.Literal); nested != nil {
			return t.New(&ast.TypeRef{Type: nested}, tok.StartPosition)
		}
	}
	return t.New(&ast.UnresolvedIdent{Name: tok.Literal}, tok.StartPosition)
}

// castPattern: value -> type
type castPattern struct{ base }

func newCastPattern() *castPattern {
	return &castPattern{newBase("Cast", 19,
		token.Function|token.Identifier|token.Number|token.String|token.Dynamic, token.Operator, token.Identifier|token.Dynamic)}
}

func (pt *castPattern) Passes(p *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isOperator(tokens[1], "->") &&
		(tokens[2].Kind == token.Identifier || p.isTypePath(ast.ID(tokens[2].Node)))
}

func (pt *castPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	object, err := p.operand(ctx, tokens[0])
	if err != nil {
		return ast.None, err
	}
	typ, err := p.typeOf(ctx, tokens[2])
	if err != nil {
		return ast.None, err
	}
	id := p.tree.New(&ast.Cast{Type: typ}, tokens[1].StartPosition)
	p.tree.Append(id, object)
	return id, nil
}

// constructionPattern: new type(args)
type constructionPattern struct{ base }

func newConstructionPattern() *constructionPattern {
	return &constructionPattern{newBase("Construction", 19, token.Keyword, token.Function)}
}

func (pt *constructionPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isKeyword(tokens[0], "new")
}

func (pt *constructionPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	var fs *scope.Functions
	if typ := ctx.LookupType(tokens[1].Literal); typ != nil && typ.Primitive() == nil {
		fs = typ.Constructors
	}
	call, err := p.call(ctx, tokens[1], fs, true)
	if err != nil {
		return ast.None, err
	}
	id := p.tree.New(&ast.Construction{}, tokens[0].StartPosition)
	p.tree.Append(id, call)
	return id, nil
}

// offsetPattern: object[index]
type offsetPattern struct{ base }

func newOffsetPattern() *offsetPattern {
	return &offsetPattern{newBase("Offset", 19,
		token.Function|token.Identifier|token.Dynamic, token.Content)}
}

func (pt *offsetPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return tokens[1].Paren == token.Brackets
}

func (pt *offsetPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	brackets := tokens[1]
	if brackets.IsEmpty() {
		return ast.None, errors.New(errors.EmptyContent, brackets.StartPosition, "offset cannot be empty")
	}
	if len(brackets.Sections) != 1 {
		return ast.None, errors.New(errors.UnexpectedToken, brackets.StartPosition, "offset takes a single index")
	}
	object, err := p.operand(ctx, tokens[0])
	if err != nil {
		return ast.None, err
	}
	index, err := p.Expression(ctx, brackets.Sections[0], brackets.StartPosition)
	if err != nil {
		return ast.None, err
	}
	id := p.tree.New(&ast.Offset{}, brackets.StartPosition)
	p.tree.Append(id, object)
	p.tree.Append(id, index)
	return id, nil
}

// callPattern: name(args)
type callPattern struct{ base }

func newCallPattern() *callPattern {
	return &callPattern{newBase("Call", 19, token.Function)}
}

func (pt *callPattern) Passes(*Parser, *scope.Context, []*token.Token) bool { return true }

func (pt *callPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	return p.operand(ctx, tokens[0])
}

// variablePattern: type|var name
type variablePattern struct{ base }

func newVariablePattern() *variablePattern {
	return &variablePattern{newBase("Variable", 17,
		token.Identifier|token.Keyword|token.Dynamic, token.Identifier)}
}

func (pt *variablePattern) Passes(p *Parser, ctx *scope.Context, tokens []*token.Token) bool {
	switch tokens[0].Kind {
	case token.Keyword:
		return isKeyword(tokens[0], "var")
	case token.Dynamic:
		return p.isTypePath(ast.ID(tokens[0].Node))
	}
	return ctx.LookupVariable(tokens[0].Literal) == nil
}

func (pt *variablePattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	category := scope.Local
	if ctx.IsGlobal() {
		category = scope.Global
	}
	return declareVariable(p, ctx, tokens[0], tokens[1], category, 0)
}

// contentPattern: (expression, ...)
type contentPattern struct{ base }

func newContentPattern() *contentPattern {
	return &contentPattern{newBase("Content", 16, token.Content)}
}

func (pt *contentPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return tokens[0].Paren == token.Parenthesis
}

func (pt *contentPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	return p.content(ctx, tokens[0])
}

// unarySignPattern: operator|keyword +|- operand. Only the sign and the
// operand are reduced.
type unarySignPattern struct{ base }

func newUnarySignPattern() *unarySignPattern {
	pt := &unarySignPattern{newBase("UnarySign", 14,
		token.Operator|token.Keyword, token.Operator, token.Identifier|token.Number|token.Dynamic)}
	pt.start = 1
	return pt
}

func (pt *unarySignPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	if tokens[0].Kind == token.Keyword {
		if !isKeyword(tokens[0], "return") {
			return false
		}
	} else if isOperator(tokens[0], "++", "--") {
		return false
	}
	return isOperator(tokens[1], "+", "-")
}

func (pt *unarySignPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	operand, err := p.operand(ctx, tokens[2])
	if err != nil || tokens[1].Literal == "+" {
		return operand, err
	}
	id := p.tree.New(&ast.Negate{}, tokens[1].StartPosition)
	p.tree.Append(id, operand)
	return id, nil
}

// operatorPattern: left op right, at the priority of the operator.
type operatorPattern struct{ base }

func newOperatorPattern() *operatorPattern {
	return &operatorPattern{newBase("Operator", 0, anyValue, token.Operator, anyValue)}
}

func (pt *operatorPattern) Priority(tokens []*token.Token) int {
	return tokens[1].Operator.Priority
}

func (pt *operatorPattern) Passes(p *Parser, _ *scope.Context, tokens []*token.Token) bool {
	op := tokens[1].Operator
	return op.Category != token.Independent && op != p.grammar.tables.Extender()
}

func (pt *operatorPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	left, err := p.operand(ctx, tokens[0])
	if err != nil {
		return ast.None, err
	}
	right, err := p.operand(ctx, tokens[2])
	if err != nil {
		return ast.None, err
	}
	id := p.tree.New(&ast.Operator{Op: tokens[1].Operator}, tokens[1].StartPosition)
	p.tree.Append(id, left)
	p.tree.Append(id, right)
	return id, nil
}
