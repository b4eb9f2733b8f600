// Package resolver binds the names and types the parser left unresolved.
// Resolution runs in passes until the number of errors stops decreasing.
package resolver

import (
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// Resolver walks a tree and resolves every Resolvable node in it.
type Resolver struct {
	tree   *ast.Tree
	logger zerolog.Logger

	errs    *multierror.Error
	pending *multierror.Error
	passes  int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger that receives per pass statistics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New returns a resolver for tree.
func New(tree *ast.Tree, opts ...Option) *Resolver {
	r := &Resolver{tree: tree, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tree returns the tree being resolved.
func (r *Resolver) Tree() *ast.Tree { return r.tree }

// Passes returns the number of passes the last Resolve call ran.
func (r *Resolver) Passes() int { return r.passes }

// Resolve runs passes over the tree under root until nothing is left to
// resolve or a pass fails to reduce the number of errors. Errors waiting on
// other nodes are only reported when there is nothing else to report.
func (r *Resolver) Resolve(root ast.ID, ctx *scope.Context) error {
	previous := -1
	for r.passes = 1; ; r.passes++ {
		r.errs, r.pending = nil, nil
		r.fixTypes(ctx)
		r.Walk(root, ctx)
		r.checkInferred(ctx)

		errs, pending := count(r.errs), count(r.pending)
		r.logger.Debug().
			Int("pass", r.passes).
			Int("errors", errs).
			Int("pending", pending).
			Msg("resolution pass")
		total := errs + pending
		if total == 0 {
			return nil
		}
		if previous >= 0 && total >= previous {
			if errs > 0 {
				return r.errs.ErrorOrNil()
			}
			return r.pending.ErrorOrNil()
		}
		previous = total
	}
}

func count(err *multierror.Error) int {
	if err == nil {
		return 0
	}
	return len(err.Errors)
}

// Walk resolves the subtree at id in ctx and returns the ID now occupying
// its place.
func (r *Resolver) Walk(id ast.ID, ctx *scope.Context) ast.ID {
	t := r.tree
	n := t.Node(id)
	if res, ok := n.(ast.Resolvable); ok {
		result := res.Resolve(r, id, ctx)
		switch result.Status {
		case ast.Replaced:
			t.ReplaceWith(id, result.Node)
			return result.Node
		case ast.Done:
			return id
		case ast.Deferred, ast.Failed:
			r.errs = multierror.Append(r.errs, result.Err)
			return id
		case ast.Pending:
			r.pending = multierror.Append(r.pending, result.Err)
			return id
		}
	}
	inner := ctx
	if scoped, ok := n.(ast.Scoped); ok {
		inner = scoped.Scope()
	}
	for _, child := range t.Children(id) {
		r.Walk(child, inner)
	}
	return id
}

// fixTypes replaces placeholder types of declarations with the types they
// name.
func (r *Resolver) fixTypes(root *scope.Context) {
	fix := func(typ *scope.Type, ctx *scope.Context) *scope.Type {
		if typ == nil || typ.Path() == nil {
			return typ
		}
		if found := ctx.ResolvePath(typ.Path()); found != nil {
			return found
		}
		r.errs = multierror.Append(r.errs, errors.New(errors.E2008, typ.Position, "unknown type '%s'", typ.Name).
			WithSuggestions(errors.Similar(typ.Name, ctx.Names())))
		return typ
	}
	root.Walk(func(ctx *scope.Context) {
		for _, v := range ctx.Variables() {
			v.Type = fix(v.Type, ctx)
		}
		if f := ctx.Function(); f != nil {
			f.ReturnType = fix(f.ReturnType, ctx.Parent())
		}
		if typ := ctx.Type(); typ != nil {
			for i, super := range typ.Supertypes {
				typ.Supertypes[i] = fix(super, ctx.Parent())
			}
		}
	})
}

// checkInferred reports variables declared with 'var' that never received
// a value.
func (r *Resolver) checkInferred(root *scope.Context) {
	root.Walk(func(ctx *scope.Context) {
		for _, v := range ctx.Variables() {
			if v.Type.IsUnknown() {
				r.pending = multierror.Append(r.pending, errors.New(errors.E2008, v.Position,
					"couldn't infer the type of '%s'", v.Name))
			}
		}
	})
}
