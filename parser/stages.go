package parser

import (
	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// File parses one source file into a new block under ctx, in three stages:
// the hull declares types, functions and globals; the members stage parses
// type bodies; the functions stage parses function bodies once every
// declaration is known. Errors in one body do not stop the others.
func (p *Parser) File(ctx *scope.Context, tokens []token.Token) (ast.ID, error) {
	t := p.tree
	var pos token.Position
	if len(tokens) > 0 {
		pos = tokens[0].StartPosition
	}
	root := t.New(&ast.Block{}, pos)
	if err := p.Parse(root, ctx, tokens, MinPriority, MaxPriority); err != nil {
		return root, err
	}
	var result *multierror.Error
	if err := p.members(root); err != nil {
		result = multierror.Append(result, err)
	}
	var functions []ast.ID
	for id := range t.Preorder(root) {
		if decl, ok := t.Node(id).(*ast.FuncDecl); ok && !decl.Function.IsExternal() {
			functions = append(functions, id)
		}
	}
	for _, id := range functions {
		if err := p.function(id, t.Node(id).(*ast.FuncDecl).Function); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return root, result.ErrorOrNil()
}

// members parses the bodies of the type declarations under parent,
// including nested types.
func (p *Parser) members(parent ast.ID) error {
	t := p.tree
	var result *multierror.Error
	for _, id := range t.Children(parent) {
		decl, ok := t.Node(id).(*ast.TypeDecl)
		if !ok {
			continue
		}
		body := decl.Body
		decl.Body = nil
		if err := p.Parse(id, &decl.Type.Context, body, Members, MaxPriority); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if err := p.members(id); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (p *Parser) function(id ast.ID, f *scope.Function) error {
	body := f.Body
	f.Body = nil
	p.logger.Debug().Str("function", f.String()).Msg("parsing function body")
	return p.Parse(id, &f.Context, body, MinPriority, Members-1)
}
