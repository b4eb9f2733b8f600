// Package scope models the declarations of a program: nested contexts that
// hold variables, types, function overload sets and labels, with lookups
// delegated to the parent chain.
package scope

import (
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
)

// Context is a lexical scope. Types and functions embed a Context.
type Context struct {
	parent   *Context
	children []*Context

	typ *Type
	fn  *Function

	variables []*Variable
	varIndex  map[string]*Variable
	types     []*Type
	typeIndex map[string]*Type
	functions []*Functions
	funcIndex map[string]*Functions
	labels    []*Label
	lblIndex  map[string]*Label
}

// NewContext returns a scope nested in parent. A nil parent creates a root.
func NewContext(parent *Context) *Context {
	c := &Context{}
	c.init(parent)
	return c
}

func (c *Context) init(parent *Context) {
	c.parent = parent
	c.varIndex = map[string]*Variable{}
	c.typeIndex = map[string]*Type{}
	c.funcIndex = map[string]*Functions{}
	c.lblIndex = map[string]*Label{}
	if parent != nil {
		parent.children = append(parent.children, c)
	}
}

// Parent returns the enclosing scope, or nil for the root.
func (c *Context) Parent() *Context { return c.parent }

// Children returns the scopes nested directly in this one.
func (c *Context) Children() []*Context { return c.children }

// IsGlobal reports whether this is a root scope.
func (c *Context) IsGlobal() bool { return c.parent == nil }

// Type returns the type this context belongs to, if it is a type body.
func (c *Context) Type() *Type { return c.typ }

// Function returns the function this context belongs to, if it is a
// function body.
func (c *Context) Function() *Function { return c.fn }

// TypeParent returns the nearest enclosing type, including this context.
func (c *Context) TypeParent() *Type {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.typ != nil {
			return ctx.typ
		}
	}
	return nil
}

// FunctionParent returns the nearest enclosing function, including this
// context.
func (c *Context) FunctionParent() *Function {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.fn != nil {
			return ctx.fn
		}
	}
	return nil
}

// IsInside reports whether c is other or nested in it.
func (c *Context) IsInside(other *Context) bool {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx == other {
			return true
		}
	}
	return false
}

// DeclareVariable adds v to this scope.
func (c *Context) DeclareVariable(v *Variable) error {
	if _, ok := c.varIndex[v.Name]; ok {
		return errors.New(errors.DuplicateDeclaration, v.Position,
			"variable '%s' already exists in this context", v.Name)
	}
	v.Context = c
	c.variables = append(c.variables, v)
	c.varIndex[v.Name] = v
	return nil
}

// DeclareType adds t to this scope.
func (c *Context) DeclareType(t *Type) error {
	return c.DeclareAlias(t.Name, t)
}

// DeclareAlias makes t visible under an additional name.
func (c *Context) DeclareAlias(name string, t *Type) error {
	if existing, ok := c.typeIndex[name]; ok {
		if existing == t {
			return nil
		}
		return errors.New(errors.DuplicateDeclaration, t.Position,
			"type '%s' already exists in this context", name)
	}
	if name == t.Name {
		c.types = append(c.types, t)
	}
	c.typeIndex[name] = t
	return nil
}

// DeclareFunction appends f to the overload set of its name.
func (c *Context) DeclareFunction(f *Function) {
	set, ok := c.funcIndex[f.Name]
	if !ok {
		set = &Functions{Name: f.Name}
		c.functions = append(c.functions, set)
		c.funcIndex[f.Name] = set
	}
	set.Add(f)
}

// DeclareLabel adds l to this scope.
func (c *Context) DeclareLabel(l *Label) error {
	if _, ok := c.lblIndex[l.Name]; ok {
		return errors.New(errors.DuplicateDeclaration, l.Position,
			"label '%s' already exists in this context", l.Name)
	}
	l.Context = c
	c.labels = append(c.labels, l)
	c.lblIndex[l.Name] = l
	return nil
}

func (c *Context) localVariable(name string) *Variable {
	if v, ok := c.varIndex[name]; ok {
		return v
	}
	if c.typ != nil {
		for _, super := range c.typ.Supertypes {
			if v := super.localVariable(name); v != nil {
				return v
			}
		}
	}
	return nil
}

func (c *Context) localFunctions(name string) *Functions {
	if fs, ok := c.funcIndex[name]; ok {
		return fs
	}
	if c.typ != nil {
		for _, super := range c.typ.Supertypes {
			if fs := super.localFunctions(name); fs != nil {
				return fs
			}
		}
	}
	return nil
}

// LocalVariable looks name up in this scope and, for types, in the
// supertypes. Parents are not consulted.
func (c *Context) LocalVariable(name string) *Variable { return c.localVariable(name) }

// LocalFunctions is the overload set declared in this scope or a
// supertype, or nil.
func (c *Context) LocalFunctions(name string) *Functions { return c.localFunctions(name) }

// LocalType returns a type declared directly in this scope.
func (c *Context) LocalType(name string) *Type { return c.typeIndex[name] }

// LookupVariable finds the nearest variable with the given name.
func (c *Context) LookupVariable(name string) *Variable {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if v := ctx.localVariable(name); v != nil {
			return v
		}
	}
	return nil
}

// LookupType finds the nearest type with the given name.
func (c *Context) LookupType(name string) *Type {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if t, ok := ctx.typeIndex[name]; ok {
			return t
		}
	}
	return nil
}

// LookupFunctions finds the nearest overload set with the given name.
func (c *Context) LookupFunctions(name string) *Functions {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if fs := ctx.localFunctions(name); fs != nil {
			return fs
		}
	}
	return nil
}

// LookupLabel finds a label in this scope or an enclosing one, stopping at
// the function boundary.
func (c *Context) LookupLabel(name string) *Label {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if l, ok := ctx.lblIndex[name]; ok {
			return l
		}
		if ctx.fn != nil {
			break
		}
	}
	return nil
}

// ResolvePath finds a type by a dotted path such as Outer.Inner.
func (c *Context) ResolvePath(path []string) *Type {
	if len(path) == 0 {
		return nil
	}
	t := c.LookupType(path[0])
	for _, name := range path[1:] {
		if t == nil {
			return nil
		}
		t = t.LocalType(name)
	}
	return t
}

// Variables returns the variables declared in this scope in order.
func (c *Context) Variables() []*Variable { return c.variables }

// Types returns the types declared in this scope in order, without aliases.
func (c *Context) Types() []*Type { return c.types }

// Functions returns the overload sets declared in this scope in order.
func (c *Context) Functions() []*Functions { return c.functions }

// Labels returns the labels declared in this scope in order.
func (c *Context) Labels() []*Label { return c.labels }

// Names lists every name visible from this scope, nearest first.
func (c *Context) Names() []string {
	var names []string
	for ctx := c; ctx != nil; ctx = ctx.parent {
		for _, v := range ctx.variables {
			names = append(names, v.Name)
		}
		for name := range ctx.typeIndex {
			names = append(names, name)
		}
		for _, fs := range ctx.functions {
			names = append(names, fs.Name)
		}
	}
	return names
}

// Merge moves the declarations of other into c and re-parents them.
// Declarations that c already holds, such as shared built-ins, are skipped.
func (c *Context) Merge(other *Context) error {
	for _, t := range other.types {
		if c.typeIndex[t.Name] == t {
			continue
		}
		if err := c.DeclareType(t); err != nil {
			return err
		}
	}
	for name, t := range other.typeIndex {
		if name != t.Name {
			if err := c.DeclareAlias(name, t); err != nil {
				return err
			}
		}
	}
	for _, v := range other.variables {
		if err := c.DeclareVariable(v); err != nil {
			return err
		}
	}
	for _, fs := range other.functions {
		for _, f := range fs.Overloads {
			if existing := c.funcIndex[fs.Name]; existing != nil && existing.Contains(f) {
				continue
			}
			c.DeclareFunction(f)
		}
	}
	for _, child := range other.children {
		child.parent = c
		c.children = append(c.children, child)
	}
	other.children = nil
	return nil
}

// Walk calls fn for c and every nested context, depth first.
func (c *Context) Walk(fn func(*Context)) {
	fn(c)
	for _, child := range c.children {
		child.Walk(fn)
	}
}

// Label marks a jump target inside a function body.
type Label struct {
	Name     string
	Context  *Context
	Position token.Position
}

// NewLabel returns an undeclared label.
func NewLabel(name string, pos token.Position) *Label {
	return &Label{Name: name, Position: pos}
}
