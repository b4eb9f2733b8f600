package ast

import (
	"strings"

	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// Status is the outcome of one resolution attempt.
type Status uint8

const (
	// Keep leaves the node as is; its children are resolved next.
	Keep Status = iota
	// Done means the node resolved its children itself.
	Done
	// Replaced means the node was swapped for Result.Node.
	Replaced
	// Deferred records an error; the node is retried on the next pass.
	Deferred
	// Failed records an error that another pass cannot fix.
	Failed
	// Pending waits on another node that has not resolved yet. It only
	// becomes an error when nothing else is left to report.
	Pending
)

// Result is returned by Resolvable nodes.
type Result struct {
	Status Status
	Node   ID
	Err    error
}

func keep() Result              { return Result{Status: Keep} }
func done() Result              { return Result{Status: Done} }
func replace(id ID) Result      { return Result{Status: Replaced, Node: id} }
func deferred(err error) Result { return Result{Status: Deferred, Err: err} }
func failed(err error) Result   { return Result{Status: Failed, Err: err} }
func pending(err error) Result  { return Result{Status: Pending, Err: err} }

// Resolution is the resolver as seen by a node: it can resolve nested
// subtrees and records their errors.
type Resolution interface {
	Tree() *Tree
	// Walk resolves the subtree at id in ctx and returns the ID now
	// occupying its place.
	Walk(id ID, ctx *scope.Context) ID
}

// Resolvable is implemented by nodes that bind names or types after parsing.
type Resolvable interface {
	Resolve(r Resolution, id ID, ctx *scope.Context) Result
}

func unknown(pos token.Position, ctx *scope.Context, format, name string) *errors.CompileError {
	return errors.New(errors.UnknownName, pos, format, name).
		WithSuggestions(errors.Similar(name, ctx.Names()))
}

// Resolve binds the name to a variable or type.
func (n *UnresolvedIdent) Resolve(r Resolution, id ID, ctx *scope.Context) Result {
	t := r.Tree()
	if v := ctx.LookupVariable(n.Name); v != nil {
		return replace(t.New(&Var{Variable: v}, t.Pos(id)))
	}
	if typ := ctx.LookupType(n.Name); typ != nil {
		return replace(t.New(&TypeRef{Type: typ}, t.Pos(id)))
	}
	return deferred(unknown(t.Pos(id), ctx, "unknown name '%s'", n.Name))
}

// Resolve resolves the arguments and picks the matching overload.
func (n *UnresolvedCall) Resolve(r Resolution, id ID, ctx *scope.Context) Result {
	t := r.Tree()
	if n.Constructor {
		typ := ctx.LookupType(n.Name)
		if typ == nil || typ.Primitive() != nil {
			walkAll(r, id, ctx)
			return deferred(unknown(t.Pos(id), ctx, "unknown type '%s'", n.Name))
		}
		return resolveCall(r, id, ctx, typ.Constructors)
	}
	fs := ctx.LookupFunctions(n.Name)
	if fs == nil {
		walkAll(r, id, ctx)
		return deferred(unknown(t.Pos(id), ctx, "unknown function '%s'", n.Name))
	}
	return resolveCall(r, id, ctx, fs)
}

func walkAll(r Resolution, id ID, ctx *scope.Context) {
	for _, c := range r.Tree().Children(id) {
		r.Walk(c, ctx)
	}
}

// resolveCall resolves the arguments of an unresolved call in ctx and
// selects an overload from fs.
func resolveCall(r Resolution, id ID, ctx *scope.Context, fs *scope.Functions) Result {
	t := r.Tree()
	var args []*scope.Type
	var names []string
	for _, c := range t.Children(id) {
		c = r.Walk(c, ctx)
		typ := TypeOf(t, c)
		if typ == nil {
			return pending(errors.New(errors.E2008, t.Pos(c), "couldn't resolve the type of an argument of '%s'", fs.Name))
		}
		args = append(args, typ)
		names = append(names, typ.Name)
	}
	f, _ := fs.Select(args)
	if f == nil {
		return deferred(errors.New(errors.NoMatchingOverload, t.Pos(id),
			"no overload of '%s' accepts (%s)", fs.Name, strings.Join(names, ", ")))
	}
	call := t.New(&Call{Function: f}, t.Pos(id))
	t.MoveChildren(id, call)
	return replace(call)
}

// Resolve resolves the object first and then looks the member up in the
// object's type. The member stays a placeholder while the object's type is
// unknown.
func (n *Link) Resolve(r Resolution, id ID, ctx *scope.Context) Result {
	t := r.Tree()
	left := r.Walk(t.First(id), ctx)
	right := t.Next(left)

	var typ *scope.Type
	if ref, ok := t.Node(left).(*TypeRef); ok {
		typ = ref.Type
	} else {
		typ = TypeOf(t, left)
	}
	if typ == nil {
		if Unresolved(t, left) {
			return done()
		}
		return pending(errors.New(errors.E2006, t.Pos(id), "couldn't resolve the type of the left side of '.'"))
	}

	switch member := t.Node(right).(type) {
	case *UnresolvedIdent:
		if v := typ.LocalVariable(member.Name); v != nil {
			t.ReplaceWith(right, t.New(&Var{Variable: v}, t.Pos(right)))
			return done()
		}
		if nested := typ.LocalType(member.Name); nested != nil {
			t.ReplaceWith(right, t.New(&TypeRef{Type: nested}, t.Pos(right)))
			return done()
		}
		return deferred(unknown(t.Pos(right), &typ.Context, "unknown member '%s'", member.Name).
			WithNote("type '" + typ.Name + "' has no such member"))
	case *UnresolvedCall:
		fs := typ.LocalFunctions(member.Name)
		if fs == nil {
			walkAll(r, right, ctx)
			return deferred(unknown(t.Pos(right), &typ.Context, "unknown member function '%s'", member.Name).
				WithNote("type '" + typ.Name + "' has no such function"))
		}
		res := resolveCall(r, right, ctx, fs)
		if res.Status == Replaced {
			t.ReplaceWith(right, res.Node)
			return done()
		}
		return res
	}
	r.Walk(right, ctx)
	return done()
}

// Resolve infers the enclosing function's return type from the value.
func (n *Return) Resolve(r Resolution, id ID, ctx *scope.Context) Result {
	t := r.Tree()
	f := ctx.FunctionParent()
	value := t.First(id)
	if value == None || f == nil {
		return done()
	}
	value = r.Walk(value, ctx)
	typ := TypeOf(t, value)
	if typ == nil {
		return pending(errors.New(errors.E2008, t.Pos(id), "couldn't infer the type of the returned value"))
	}
	switch {
	case f.ReturnType.IsUnknown():
		f.ReturnType = typ
		f.Inferred = true
	default:
		shared := scope.Shared(typ, f.ReturnType)
		if shared == nil {
			return failed(errors.New(errors.IncompatibleTypes, t.Pos(id),
				"type '%s' isn't compatible with the current return type '%s'", typ, f.ReturnType))
		}
		if f.Inferred {
			f.ReturnType = shared
		}
	}
	return done()
}

// Resolve binds the jump to its label, which may be declared later.
func (n *Jump) Resolve(r Resolution, id ID, ctx *scope.Context) Result {
	if n.Label != nil {
		return keep()
	}
	if l := ctx.LookupLabel(n.Name); l != nil {
		n.Label = l
		return keep()
	}
	return deferred(errors.New(errors.UnknownName, r.Tree().Pos(id), "unknown label '%s'", n.Name))
}

// Resolve looks up an unresolved cast target.
func (n *Cast) Resolve(r Resolution, id ID, ctx *scope.Context) Result {
	t := r.Tree()
	walkAll(r, id, ctx)
	if n.Type.IsResolved() {
		return done()
	}
	if typ := ctx.ResolvePath(n.Type.Path()); typ != nil {
		n.Type = typ
		return done()
	}
	return deferred(unknown(t.Pos(id), ctx, "unknown type '%s'", n.Type.Name))
}

// Resolve gives a variable declared with 'var' the type of the first value
// assigned to it.
func (n *Operator) Resolve(r Resolution, id ID, ctx *scope.Context) Result {
	t := r.Tree()
	if n.Op.Category != token.Action {
		return keep()
	}
	left, ok := t.Node(t.First(id)).(*Var)
	if !ok || !left.Variable.Type.IsUnknown() {
		return keep()
	}
	value := r.Walk(t.Last(id), ctx)
	typ := TypeOf(t, value)
	if typ == nil {
		return pending(errors.New(errors.E2008, t.Pos(id), "couldn't infer the type of '%s'", left.Variable.Name))
	}
	left.Variable.Type = typ
	return done()
}
