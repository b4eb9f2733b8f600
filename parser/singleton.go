package parser

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// operand turns a single token into a node.
func (p *Parser) operand(ctx *scope.Context, tok *token.Token) (ast.ID, error) {
	t := p.tree
	switch tok.Kind {
	case token.Dynamic:
		return ast.ID(tok.Node), nil
	case token.Identifier:
		return p.identifier(ctx, tok), nil
	case token.Number:
		return t.New(&ast.Number{Value: tok.Number, Type: p.builtins().ForNumber(tok.Number)}, tok.StartPosition), nil
	case token.String:
		return t.New(&ast.String{Value: tok.Literal}, tok.StartPosition), nil
	case token.Function:
		return p.call(ctx, tok, ctx.LookupFunctions(tok.Literal), false)
	case token.Content:
		return p.content(ctx, tok)
	}
	return ast.None, errors.New(errors.UnexpectedToken, tok.StartPosition, "unexpected '%s'", tok.String())
}

// identifier binds a name to a variable or type when one is visible.
func (p *Parser) identifier(ctx *scope.Context, tok *token.Token) ast.ID {
	t := p.tree
	if v := ctx.LookupVariable(tok.Literal); v != nil {
		return t.New(&ast.Var{Variable: v}, tok.StartPosition)
	}
	if typ := ctx.LookupType(tok.Literal); typ != nil {
		return t.New(&ast.TypeRef{Type: typ}, tok.StartPosition)
	}
	return t.New(&ast.UnresolvedIdent{Name: tok.Literal}, tok.StartPosition)
}

// call parses the arguments of a function token in ctx and selects an
// overload from fs right away when every argument type is already known.
func (p *Parser) call(ctx *scope.Context, tok *token.Token, fs *scope.Functions, constructor bool) (ast.ID, error) {
	t := p.tree
	args := make([]ast.ID, 0, len(tok.Sections))
	types := make([]*scope.Type, 0, len(tok.Sections))
	for _, section := range tok.Sections {
		arg, err := p.Expression(ctx, section, tok.StartPosition)
		if err != nil {
			return ast.None, err
		}
		args = append(args, arg)
		types = append(types, ast.TypeOf(t, arg))
	}
	var id ast.ID
	if f := selectNow(fs, types); f != nil {
		id = t.New(&ast.Call{Function: f}, tok.StartPosition)
	} else {
		id = t.New(&ast.UnresolvedCall{Name: tok.Literal, Constructor: constructor}, tok.StartPosition)
	}
	for _, arg := range args {
		t.Append(id, arg)
	}
	return id, nil
}

func selectNow(fs *scope.Functions, types []*scope.Type) *scope.Function {
	if fs == nil {
		return nil
	}
	for _, typ := range types {
		if typ == nil {
			return nil
		}
	}
	f, _ := fs.Select(types)
	return f
}

// content parses each section of a parenthesized group into its own child.
func (p *Parser) content(ctx *scope.Context, tok *token.Token) (ast.ID, error) {
	t := p.tree
	id := t.New(&ast.Content{}, tok.StartPosition)
	for _, section := range tok.Sections {
		child, err := p.Expression(ctx, section, tok.StartPosition)
		if err != nil {
			return ast.None, err
		}
		t.Append(id, child)
	}
	return id, nil
}

// typeOf reads a type reference: a name or a link such as Outer.Inner.
// Types that are not declared yet become placeholders.
func (p *Parser) typeOf(ctx *scope.Context, tok *token.Token) (*scope.Type, error) {
	var path []string
	switch tok.Kind {
	case token.Identifier:
		path = []string{tok.Literal}
	case token.Dynamic:
		var ok bool
		if path, ok = p.typePath(ast.ID(tok.Node)); !ok {
			return nil, errors.New(errors.E1008, tok.StartPosition, "expected a type")
		}
	default:
		return nil, errors.New(errors.E1008, tok.StartPosition, "expected a type, found '%s'", tok.String())
	}
	if typ := ctx.ResolvePath(path); typ != nil {
		return typ, nil
	}
	return scope.Unresolved(tok.StartPosition, path...), nil
}

// typePath flattens a chain of links over names into a path.
func (p *Parser) typePath(id ast.ID) ([]string, bool) {
	t := p.tree
	switch n := t.Node(id).(type) {
	case *ast.TypeRef:
		if n.Type.IsResolved() {
			return []string{n.Type.Name}, true
		}
		return n.Type.Path(), true
	case *ast.UnresolvedIdent:
		return []string{n.Name}, true
	case *ast.Link:
		left, ok := p.typePath(t.First(id))
		if !ok {
			return nil, false
		}
		right, ok := p.typePath(t.Child(id, 1))
		if !ok || len(right) != 1 {
			return nil, false
		}
		return append(left, right[0]), true
	}
	return nil, false
}

// isTypePath reports whether a reduced node can name a type.
func (p *Parser) isTypePath(id ast.ID) bool {
	_, ok := p.typePath(id)
	return ok
}

// parameters parses each section of a function token into a parameter of f.
func (p *Parser) parameters(f *scope.Function, tok *token.Token) error {
	if tok == nil || tok.Kind != token.Function && tok.Kind != token.Content {
		return nil
	}
	t := p.tree
	for _, section := range tok.Sections {
		holder := t.New(&ast.Block{}, tok.StartPosition)
		if err := p.Parse(holder, &f.Context, section, MinPriority, Members-1); err != nil {
			return err
		}
		decl := t.First(holder)
		n, ok := t.Node(decl).(*ast.Var)
		if t.Count(holder) != 1 || !ok || !n.Declaration {
			return errors.New(errors.E1008, tok.StartPosition, "invalid parameter of '%s'", f.Name)
		}
		f.AddParameter(n.Variable)
	}
	return nil
}

func isKeyword(tok *token.Token, names ...string) bool {
	if tok == nil || tok.Kind != token.Keyword {
		return false
	}
	for _, name := range names {
		if tok.Literal == name {
			return true
		}
	}
	return false
}

func isOperator(tok *token.Token, symbols ...string) bool {
	if tok == nil || tok.Kind != token.Operator {
		return false
	}
	for _, symbol := range symbols {
		if tok.Literal == symbol {
			return true
		}
	}
	return false
}

func isModifier(tok *token.Token) bool {
	return tok == nil || tok.Kind == token.Keyword && tok.Keyword.IsModifier()
}

func isGroup(tok *token.Token, paren token.Paren) bool {
	return tok != nil && tok.Kind == token.Content && tok.Paren == paren
}

func modifiers(tokens ...*token.Token) token.Modifier {
	var mods token.Modifier
	for _, tok := range tokens {
		if tok != nil && tok.Keyword != nil {
			mods |= tok.Keyword.Modifier
		}
	}
	return mods
}
