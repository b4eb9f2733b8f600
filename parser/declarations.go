package parser

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

const (
	optional = token.Optional
	anyValue = token.Identifier | token.Number | token.Dynamic | token.String
)

// typePattern: [modifier] type name [\n] {...}
type typePattern struct{ base }

func newTypePattern() *typePattern {
	return &typePattern{newBase("Type", Members,
		token.Keyword|optional, token.Keyword, token.Identifier, token.End|optional, token.Content)}
}

func (pt *typePattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isModifier(tokens[0]) && isKeyword(tokens[1], "type") && isGroup(tokens[4], token.Braces)
}

func (pt *typePattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	return declareType(p, ctx, tokens[0], tokens[2], tokens[4], nil)
}

func declareType(p *Parser, ctx *scope.Context, modifier, name, body *token.Token, supertypes []*scope.Type) (ast.ID, error) {
	typ := scope.NewType(ctx, name.Literal, modifiers(modifier), name.StartPosition)
	typ.Supertypes = supertypes
	if err := ctx.DeclareType(typ); err != nil {
		return ast.None, err
	}
	return p.tree.New(&ast.TypeDecl{Type: typ, Body: body.Flatten()}, name.StartPosition), nil
}

// extendedTypePattern: [modifier] type name : supertype(s) [\n] {...}
type extendedTypePattern struct{ base }

func newExtendedTypePattern() *extendedTypePattern {
	return &extendedTypePattern{newBase("ExtendedType", MaxPriority,
		token.Keyword|optional, token.Keyword, token.Identifier, token.Operator,
		token.Identifier|token.Content, token.End|optional, token.Content)}
}

func (pt *extendedTypePattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isModifier(tokens[0]) && isKeyword(tokens[1], "type") && isOperator(tokens[3], ":") &&
		(tokens[4].Kind == token.Identifier || tokens[4].Paren == token.Parenthesis) &&
		isGroup(tokens[6], token.Braces)
}

func (pt *extendedTypePattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	var names []*token.Token
	if tokens[4].Kind == token.Identifier {
		names = append(names, tokens[4])
	} else {
		for _, section := range tokens[4].Sections {
			if len(section) != 1 || section[0].Kind != token.Identifier {
				return ast.None, errors.New(errors.E1008, tokens[4].StartPosition, "expected a supertype name")
			}
			names = append(names, &section[0])
		}
	}
	var supertypes []*scope.Type
	for _, name := range names {
		typ, err := p.typeOf(ctx, name)
		if err != nil {
			return ast.None, err
		}
		supertypes = append(supertypes, typ)
	}
	return declareType(p, ctx, tokens[0], tokens[2], tokens[6], supertypes)
}

// memberVariablePattern: [modifier] [modifier] type name, used for globals
// and type members.
type memberVariablePattern struct{ base }

func newMemberVariablePattern() *memberVariablePattern {
	return &memberVariablePattern{newBase("MemberVariable", Members,
		token.Keyword|optional, token.Keyword|optional, token.Identifier|token.Dynamic, token.Identifier)}
}

func (pt *memberVariablePattern) Passes(p *Parser, _ *scope.Context, tokens []*token.Token) bool {
	if !isModifier(tokens[0]) || !isModifier(tokens[1]) {
		return false
	}
	return tokens[2].Kind == token.Identifier || p.isTypePath(ast.ID(tokens[2].Node))
}

func (pt *memberVariablePattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	category := scope.Local
	switch {
	case ctx.IsGlobal():
		category = scope.Global
	case ctx.Type() != nil:
		category = scope.Member
	}
	return declareVariable(p, ctx, tokens[2], tokens[3], category, modifiers(tokens[0], tokens[1]))
}

func declareVariable(p *Parser, ctx *scope.Context, typeToken, name *token.Token, category scope.Category, mods token.Modifier) (ast.ID, error) {
	var typ *scope.Type
	if isKeyword(typeToken, "var") {
		typ = scope.NewUnknown()
	} else {
		var err error
		if typ, err = p.typeOf(ctx, typeToken); err != nil {
			return ast.None, err
		}
	}
	v := scope.NewVariable(name.Literal, typ, category, mods, name.StartPosition)
	if err := ctx.DeclareVariable(v); err != nil {
		return ast.None, err
	}
	return p.tree.New(&ast.Var{Variable: v, Declaration: true}, name.StartPosition), nil
}

// memberFunctionPattern: [modifier] [modifier] func|type name(params) [\n] {...}
type memberFunctionPattern struct{ base }

func newMemberFunctionPattern() *memberFunctionPattern {
	return &memberFunctionPattern{newBase("MemberFunction", Members,
		token.Keyword|optional, token.Keyword|optional, token.Keyword|token.Identifier|token.Dynamic,
		token.Function|token.Identifier, token.End|optional, token.Content)}
}

func (pt *memberFunctionPattern) Passes(p *Parser, _ *scope.Context, tokens []*token.Token) bool {
	if !isModifier(tokens[0]) || !isModifier(tokens[1]) || !isGroup(tokens[5], token.Braces) {
		return false
	}
	switch tokens[2].Kind {
	case token.Keyword:
		return isKeyword(tokens[2], "func")
	case token.Dynamic:
		return p.isTypePath(ast.ID(tokens[2].Node))
	}
	return true
}

func (pt *memberFunctionPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	f, err := declareFunction(p, ctx, tokens[2], tokens[3], modifiers(tokens[0], tokens[1]))
	if err != nil {
		return ast.None, err
	}
	f.Body = tokens[5].Flatten()
	return p.tree.New(&ast.FuncDecl{Function: f}, tokens[3].StartPosition), nil
}

func declareFunction(p *Parser, ctx *scope.Context, result, name *token.Token, mods token.Modifier) (*scope.Function, error) {
	f := scope.NewFunction(ctx, name.Literal, mods, name.StartPosition)
	if !isKeyword(result, "func") {
		typ, err := p.typeOf(ctx, result)
		if err != nil {
			return nil, err
		}
		f.ReturnType = typ
	}
	if err := p.parameters(f, name); err != nil {
		return nil, err
	}
	ctx.DeclareFunction(f)
	return f, nil
}

// constructorPattern: [modifier] init[(params)] [\n] {...}
type constructorPattern struct{ base }

func newConstructorPattern() *constructorPattern {
	return &constructorPattern{newBase("Constructor", Members,
		token.Keyword|optional, token.Keyword, token.Content|optional, token.End|optional, token.Content)}
}

func (pt *constructorPattern) Passes(_ *Parser, _ *scope.Context, tokens []*token.Token) bool {
	return isModifier(tokens[0]) && isKeyword(tokens[1], "init") &&
		(tokens[2] == nil || tokens[2].Paren == token.Parenthesis) && isGroup(tokens[4], token.Braces)
}

func (pt *constructorPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	typ := ctx.Type()
	if typ == nil {
		return ast.None, errors.New(errors.E1007, tokens[1].StartPosition, "constructor must be declared inside a type")
	}
	f := scope.NewFunction(ctx, "init", modifiers(tokens[0]), tokens[1].StartPosition)
	f.ReturnType = typ
	if err := p.parameters(f, tokens[2]); err != nil {
		return ast.None, err
	}
	f.Body = tokens[4].Flatten()
	typ.AddConstructor(f)
	return p.tree.New(&ast.FuncDecl{Function: f}, tokens[1].StartPosition), nil
}

// externalFunctionPattern: import func|type name(params)
type externalFunctionPattern struct{ base }

func newExternalFunctionPattern() *externalFunctionPattern {
	return &externalFunctionPattern{newBase("ExternalFunction", Members,
		token.Keyword, token.Keyword|token.Identifier|token.Dynamic, token.Function|token.Identifier, token.End|optional)}
}

func (pt *externalFunctionPattern) Passes(p *Parser, _ *scope.Context, tokens []*token.Token) bool {
	if !isKeyword(tokens[0], "import") {
		return false
	}
	switch tokens[1].Kind {
	case token.Keyword:
		return isKeyword(tokens[1], "func")
	case token.Dynamic:
		return p.isTypePath(ast.ID(tokens[1].Node))
	}
	return true
}

func (pt *externalFunctionPattern) Build(p *Parser, ctx *scope.Context, tokens []*token.Token) (ast.ID, error) {
	if !ctx.IsGlobal() {
		return ast.None, errors.New(errors.E1007, tokens[0].StartPosition, "external functions must be declared at the top level")
	}
	f, err := declareFunction(p, ctx, tokens[1], tokens[2], token.Public|token.External)
	if err != nil {
		return ast.None, err
	}
	// Nothing can be inferred without a body.
	if f.ReturnType.IsUnknown() {
		f.ReturnType = p.builtins().Normal()
	}
	return p.tree.New(&ast.FuncDecl{Function: f}, tokens[2].StartPosition), nil
}
