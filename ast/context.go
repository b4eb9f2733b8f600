package ast

import (
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// Contextable is implemented by nodes that hand out a scope when evaluated:
// the type of the value they produce.
type Contextable interface {
	Context(t *Tree, id ID) *scope.Type
}

// TypeOf returns the type a node evaluates to, or nil when it is not known
// yet.
func TypeOf(t *Tree, id ID) *scope.Type {
	if id == None {
		return nil
	}
	c, ok := t.Node(id).(Contextable)
	if !ok {
		return nil
	}
	typ := c.Context(t, id)
	if !typ.IsResolved() {
		return nil
	}
	return typ
}

func (n *Var) Context(*Tree, ID) *scope.Type     { return n.Variable.Type }
func (n *TypeRef) Context(*Tree, ID) *scope.Type { return n.Type }
func (n *Number) Context(*Tree, ID) *scope.Type  { return n.Type }
func (n *Cast) Context(*Tree, ID) *scope.Type    { return n.Type }
func (n *Call) Context(*Tree, ID) *scope.Type    { return n.Function.ReturnType }

func (n *String) Context(t *Tree, _ ID) *scope.Type { return t.Builtins().Link() }

func (n *Link) Context(t *Tree, id ID) *scope.Type { return TypeOf(t, t.Child(id, 1)) }

func (n *Negate) Context(t *Tree, id ID) *scope.Type { return TypeOf(t, t.First(id)) }

func (n *Content) Context(t *Tree, id ID) *scope.Type { return TypeOf(t, t.First(id)) }

func (n *Construction) Context(t *Tree, id ID) *scope.Type { return TypeOf(t, t.First(id)) }

func (n *Operator) Context(t *Tree, id ID) *scope.Type {
	left := TypeOf(t, t.First(id))
	switch n.Op.Category {
	case token.Comparison, token.Logic:
		return t.Builtins().Bool()
	case token.Action:
		return left
	}
	return scope.Shared(left, TypeOf(t, t.Last(id)))
}

// Offset yields an element of the object's type; raw links address bytes.
func (n *Offset) Context(t *Tree, id ID) *scope.Type {
	object := TypeOf(t, t.First(id))
	if object == t.Builtins().Link() {
		return t.Builtins().Lookup("u8")
	}
	return object
}
