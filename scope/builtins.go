package scope

import "github.com/deepnoodle-ai/zigzag/internal/token"

// Builtins holds the primitive types and runtime functions shared by every
// source file of one compilation.
type Builtins struct {
	types    []*Type
	aliases  [][2]string
	byName   map[string]*Type
	runtime  []*Function
	link     *Type
	normal   *Type
	large    *Type
	boolType *Type
}

// NewBuiltins creates the primitive types and runtime helpers.
func NewBuiltins() *Builtins {
	b := &Builtins{byName: map[string]*Type{}}
	add := func(name string, size int, signed, numeric bool) *Type {
		t := NewPrimitive(name, Primitive{Size: size, Signed: signed, Numeric: numeric})
		b.types = append(b.types, t)
		b.byName[name] = t
		return t
	}
	add("tiny", 1, true, true)
	add("small", 2, true, true)
	b.normal = add("normal", 4, true, true)
	b.large = add("large", 8, true, true)
	add("u8", 1, false, true)
	add("u16", 2, false, true)
	add("u32", 4, false, true)
	add("u64", 8, false, true)
	b.boolType = add("bool", 1, false, false)
	b.link = add("link", ReferenceSize, false, false)

	for _, alias := range [][2]string{
		{"num", "normal"}, {"short", "small"}, {"long", "large"}, {"byte", "u8"},
		{"i8", "tiny"}, {"i16", "small"}, {"i32", "normal"}, {"i64", "large"},
	} {
		b.aliases = append(b.aliases, alias)
		b.byName[alias[0]] = b.byName[alias[1]]
	}

	runtime := func(name string, ret *Type, params ...*Type) {
		f := NewFunction(nil, name, token.Public|token.External, token.NoPos)
		f.ReturnType = ret
		for i, p := range params {
			v := NewVariable(string(rune('a'+i)), p, Parameter, 0, token.NoPos)
			_ = f.DeclareVariable(v)
			f.AddParameter(v)
		}
		b.runtime = append(b.runtime, f)
	}
	runtime("allocate", b.link, b.normal)
	runtime("integer_power", b.normal, b.normal, b.normal)
	return b
}

// Root returns a new global scope with the built-ins declared.
func (b *Builtins) Root() *Context {
	root := NewContext(nil)
	for _, t := range b.types {
		_ = root.DeclareType(t)
	}
	for _, alias := range b.aliases {
		_ = root.DeclareAlias(alias[0], b.byName[alias[1]])
	}
	for _, f := range b.runtime {
		// Runtime helpers are shared between roots, so their index is
		// fixed here instead of through DeclareFunction.
		set := &Functions{Name: f.Name, Overloads: []*Function{f}}
		root.functions = append(root.functions, set)
		root.funcIndex[f.Name] = set
	}
	return root
}

// Lookup returns a built-in type by name or alias.
func (b *Builtins) Lookup(name string) *Type { return b.byName[name] }

// Link is the pointer type.
func (b *Builtins) Link() *Type { return b.link }

// Bool is the type of comparisons.
func (b *Builtins) Bool() *Type { return b.boolType }

// Normal is the default integer type.
func (b *Builtins) Normal() *Type { return b.normal }

// ForNumber returns the smallest default type able to hold v.
func (b *Builtins) ForNumber(v int64) *Type {
	if v < -1<<31 || v > 1<<31-1 {
		return b.large
	}
	return b.normal
}

// Runtime returns the runtime helper functions.
func (b *Builtins) Runtime() []*Function { return b.runtime }
