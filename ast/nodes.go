package ast

import (
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// Node is the payload of a tree entry. Each kind carries only the fields it
// needs; children hold the operands.
type Node interface {
	node()
}

// Block is a statement list: a file, a body or a loop section.
type Block struct{}

// Content is a parenthesized expression. Its children are the sections.
type Content struct{}

// Operator applies a binary operator to its two children.
type Operator struct {
	Op *token.OperatorInfo
}

// Negate negates its only child.
type Negate struct{}

// Number is an integer literal.
type Number struct {
	Value int64
	Type  *scope.Type
}

// String is a string literal. Label is assigned by the backend.
type String struct {
	Value string
	Label string
}

// Var refers to a variable. Declaration is set on the node that declared it.
type Var struct {
	Variable    *scope.Variable
	Declaration bool
}

// TypeRef refers to a type by name, such as the left side of Outer.Inner.
type TypeRef struct {
	Type *scope.Type
}

// TypeDecl declares a type. Body holds its tokens until the members stage;
// afterwards the children are the member declarations.
type TypeDecl struct {
	Type *scope.Type
	Body []token.Token
}

// FuncDecl declares a function or constructor. Its children are the body
// statements once the functions stage has run.
type FuncDecl struct {
	Function *scope.Function
}

// Call invokes a resolved function. Its children are the arguments.
type Call struct {
	Function *scope.Function
}

// If has children condition, body block and an optional successor, which
// is another If (else if) or an Else.
type If struct {
	Context *scope.Context
	ElseIf  bool
}

// Else holds the final body block of an if chain.
type Else struct {
	Context *scope.Context
}

// Loop has children init block, condition, step block and body block. A
// forever loop has an empty block as condition.
type Loop struct {
	Context *scope.Context
	Forever bool
}

// Construction allocates an object; its child is the constructor call.
type Construction struct{}

// Link is member access: children object and member.
type Link struct{}

// Cast reinterprets its child as Type.
type Cast struct {
	Type *scope.Type
}

// Offset indexes into memory: children object and index.
type Offset struct{}

// Return leaves the function, with the returned value as optional child.
type Return struct{}

// Label marks a jump target.
type Label struct {
	Label *scope.Label
}

// Jump transfers control to a label.
type Jump struct {
	Name  string
	Label *scope.Label
}

// UnresolvedIdent is a name that was not declared when it was parsed.
type UnresolvedIdent struct {
	Name string
}

// UnresolvedCall is a call whose target was not known when it was parsed.
// Its children are the arguments. Constructor calls look the name up as a
// type.
type UnresolvedCall struct {
	Name        string
	Constructor bool
}

func (*Block) node()           {}
func (*Content) node()         {}
func (*Operator) node()        {}
func (*Negate) node()          {}
func (*Number) node()          {}
func (*String) node()          {}
func (*Var) node()             {}
func (*TypeRef) node()         {}
func (*TypeDecl) node()        {}
func (*FuncDecl) node()        {}
func (*Call) node()            {}
func (*If) node()              {}
func (*Else) node()            {}
func (*Loop) node()            {}
func (*Construction) node()    {}
func (*Link) node()            {}
func (*Cast) node()            {}
func (*Offset) node()          {}
func (*Return) node()          {}
func (*Label) node()           {}
func (*Jump) node()            {}
func (*UnresolvedIdent) node() {}
func (*UnresolvedCall) node()  {}

// Scoped is implemented by nodes whose children are evaluated in a scope of
// their own.
type Scoped interface {
	Scope() *scope.Context
}

func (n *TypeDecl) Scope() *scope.Context { return &n.Type.Context }
func (n *FuncDecl) Scope() *scope.Context { return &n.Function.Context }
func (n *If) Scope() *scope.Context       { return n.Context }
func (n *Else) Scope() *scope.Context     { return n.Context }
func (n *Loop) Scope() *scope.Context     { return n.Context }

// IsPrimitive reports whether a node can be used as an operand without
// evaluating anything: literals and plain variables.
func IsPrimitive(t *Tree, id ID) bool {
	switch t.Node(id).(type) {
	case *Number, *String, *Var:
		return true
	}
	return false
}

// Unresolved reports whether a node is still a placeholder.
func Unresolved(t *Tree, id ID) bool {
	switch t.Node(id).(type) {
	case *UnresolvedIdent, *UnresolvedCall:
		return true
	case *Jump:
		return t.Node(id).(*Jump).Label == nil
	}
	return false
}
