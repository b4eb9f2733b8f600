package scope

import (
	"strings"

	"github.com/deepnoodle-ai/zigzag/internal/token"
)

// ReferenceSize is the size of a pointer to an object.
const ReferenceSize = 4

// Primitive describes a built-in value type.
type Primitive struct {
	Size    int
	Signed  bool
	Numeric bool
}

// Type is a named type. User types own a body scope with members, member
// functions, constructors and nested types.
type Type struct {
	Context

	Name         string
	Modifiers    token.Modifier
	Position     token.Position
	Supertypes   []*Type
	Constructors *Functions

	primitive *Primitive
	pending   []string
	unknown   bool
}

// NewType returns an undeclared user type whose body scope is nested in
// parent. The type starts with a default constructor.
func NewType(parent *Context, name string, mods token.Modifier, pos token.Position) *Type {
	t := &Type{Name: name, Modifiers: mods, Position: pos}
	t.init(parent)
	t.typ = t
	t.Constructors = &Functions{Name: "init"}
	def := NewFunction(&t.Context, "init", token.Public, pos)
	def.constructor = true
	def.isDefault = true
	def.ReturnType = t
	t.Constructors.Add(def)
	return t
}

// NewPrimitive returns a built-in type without a body.
func NewPrimitive(name string, p Primitive) *Type {
	t := &Type{Name: name, Modifiers: token.Public, primitive: &p}
	t.init(nil)
	t.typ = t
	return t
}

// Unresolved returns a placeholder for a type named by path that has not
// been looked up yet.
func Unresolved(pos token.Position, path ...string) *Type {
	return &Type{Name: strings.Join(path, "."), Position: pos, pending: path}
}

// NewUnknown returns a placeholder for a type to be inferred, such as the
// return type of a function declared with 'func'.
func NewUnknown() *Type {
	return &Type{Name: "?", unknown: true}
}

// IsResolved reports whether the type is neither unresolved nor unknown.
func (t *Type) IsResolved() bool {
	return t != nil && t.pending == nil && !t.unknown
}

// IsUnknown reports whether the type is waiting to be inferred.
func (t *Type) IsUnknown() bool { return t == nil || t.unknown }

// Path is the name path of an unresolved type.
func (t *Type) Path() []string { return t.pending }

// Primitive returns the built-in description, or nil for user types.
func (t *Type) Primitive() *Primitive { return t.primitive }

// IsNumeric reports whether the type is a built-in number.
func (t *Type) IsNumeric() bool { return t.primitive != nil && t.primitive.Numeric }

// ReferenceSize is the number of bytes a value of this type occupies in a
// variable. Objects are held by reference.
func (t *Type) ReferenceSize() int {
	if t.primitive != nil {
		return t.primitive.Size
	}
	return ReferenceSize
}

// Members returns the member variables in declaration order.
func (t *Type) Members() []*Variable {
	var out []*Variable
	for _, v := range t.variables {
		if v.Category == Member {
			out = append(out, v)
		}
	}
	return out
}

// ContentSize is the number of bytes an object of this type occupies,
// including inherited members.
func (t *Type) ContentSize() int {
	size := 0
	for _, super := range t.Supertypes {
		size += super.ContentSize()
	}
	for _, m := range t.Members() {
		size += m.Size()
	}
	return size
}

// Owner returns the type enclosing this one, or nil.
func (t *Type) Owner() *Type {
	if t.parent == nil {
		return nil
	}
	return t.parent.TypeParent()
}

// Identifier is the assembly prefix of everything declared in the type.
func (t *Type) Identifier() string {
	prefix := ""
	if owner := t.Owner(); owner != nil {
		prefix = owner.Identifier()
	}
	return prefix + "type_" + t.Name + "_"
}

// AddConstructor registers a user constructor, dropping the default one.
func (t *Type) AddConstructor(f *Function) {
	f.constructor = true
	f.ReturnType = t
	if len(t.Constructors.Overloads) == 1 && t.Constructors.Overloads[0].isDefault {
		t.Constructors.Overloads = nil
	}
	t.Constructors.Add(f)
}

// Inherits reports whether other is a direct or indirect supertype.
func (t *Type) Inherits(other *Type) bool {
	for _, super := range t.Supertypes {
		if super == other || super.Inherits(other) {
			return true
		}
	}
	return false
}

func (t *Type) String() string {
	if t == nil {
		return "?"
	}
	return t.Name
}

// Shared returns the type both a and b convert to, or nil if there is none.
// Numbers widen to the larger size, objects convert to a supertype and any
// object converts to a link.
func Shared(a, b *Type) *Type {
	switch {
	case !a.IsResolved() || !b.IsResolved():
		return nil
	case a == b:
		return a
	case a.IsNumeric() && b.IsNumeric():
		if b.ReferenceSize() > a.ReferenceSize() {
			return b
		}
		return a
	case a.Inherits(b):
		return b
	case b.Inherits(a):
		return a
	case isLink(a) && b.primitive == nil:
		return a
	case isLink(b) && a.primitive == nil:
		return b
	}
	return nil
}

func isLink(t *Type) bool {
	return t.primitive != nil && !t.primitive.Numeric && t.primitive.Size == ReferenceSize
}
