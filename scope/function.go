package scope

import (
	"fmt"

	"github.com/deepnoodle-ai/zigzag/internal/token"
)

// Function is a global function, member function or constructor. Its body
// scope holds the parameters and locals.
type Function struct {
	Context

	Name       string
	Modifiers  token.Modifier
	Position   token.Position
	Parameters []*Variable
	ReturnType *Type
	// Index is the position of the function in its overload set.
	Index int
	// Body holds the unparsed body tokens until the functions stage.
	Body []token.Token
	// Inferred is set once the return type has been taken from a return
	// statement; later returns may widen it.
	Inferred bool

	constructor bool
	isDefault   bool
}

// NewFunction returns an undeclared function whose body scope is nested in
// parent. The return type starts unknown.
func NewFunction(parent *Context, name string, mods token.Modifier, pos token.Position) *Function {
	f := &Function{Name: name, Modifiers: mods, Position: pos, ReturnType: NewUnknown()}
	f.init(parent)
	f.fn = f
	return f
}

// AddParameter appends v to the parameter list.
func (f *Function) AddParameter(v *Variable) {
	v.Category = Parameter
	f.Parameters = append(f.Parameters, v)
}

// ParameterTypes returns the parameter types in order.
func (f *Function) ParameterTypes() []*Type {
	out := make([]*Type, len(f.Parameters))
	for i, p := range f.Parameters {
		out[i] = p.Type
	}
	return out
}

// Owner returns the type the function belongs to, or nil for a global.
func (f *Function) Owner() *Type {
	if f.parent == nil {
		return nil
	}
	return f.parent.typ
}

// IsMember reports whether the function receives an object pointer.
func (f *Function) IsMember() bool { return f.Owner() != nil }

// IsExternal reports whether the function is provided by another object file.
func (f *Function) IsExternal() bool { return f.Modifiers.Has(token.External) }

// IsConstructor reports whether the function initializes objects.
func (f *Function) IsConstructor() bool { return f.constructor }

// IsDefault reports whether this is the implicit empty constructor.
func (f *Function) IsDefault() bool { return f.isDefault }

// FullName is the assembly label of the function.
func (f *Function) FullName() string {
	name := "function_" + f.Name
	if owner := f.Owner(); owner != nil {
		if f.constructor {
			name = owner.Identifier() + "constructor"
		} else {
			name = owner.Identifier() + name
		}
	}
	if f.Index > 0 {
		name = fmt.Sprintf("%s_%d", name, f.Index)
	}
	return name
}

// Locals returns the local variables of the body, including those of
// nested blocks, in declaration order.
func (f *Function) Locals() []*Variable {
	var out []*Variable
	var collect func(*Context)
	collect = func(c *Context) {
		for _, v := range c.variables {
			if v.Category == Local {
				out = append(out, v)
			}
		}
		for _, child := range c.children {
			if child.typ == nil && child.fn == nil {
				collect(child)
			}
		}
	}
	collect(&f.Context)
	return out
}

// LocalMemory is the stack space the locals need.
func (f *Function) LocalMemory() int {
	size := 0
	for _, v := range f.Locals() {
		size += v.Size()
	}
	return size
}

func (f *Function) String() string {
	return f.FullName()
}

// Functions is an overload set.
type Functions struct {
	Name      string
	Overloads []*Function
}

// Add appends f and assigns its index.
func (fs *Functions) Add(f *Function) {
	f.Index = len(fs.Overloads)
	fs.Overloads = append(fs.Overloads, f)
}

// Contains reports whether f is part of the set.
func (fs *Functions) Contains(f *Function) bool {
	for _, o := range fs.Overloads {
		if o == f {
			return true
		}
	}
	return false
}

// Select picks the overload for the given argument types: arity must match,
// every argument must share a type with its parameter, and the candidate
// needing the fewest conversions wins. Equal candidates go to the first
// registered one and are reported as ambiguous.
func (fs *Functions) Select(args []*Type) (best *Function, ambiguous bool) {
	fewest := -1
	for _, f := range fs.Overloads {
		if len(f.Parameters) != len(args) {
			continue
		}
		casts, ok := 0, true
		for i, p := range f.Parameters {
			if Shared(args[i], p.Type) == nil {
				ok = false
				break
			}
			if args[i] != p.Type {
				casts++
			}
		}
		switch {
		case !ok:
		case fewest < 0 || casts < fewest:
			best, fewest, ambiguous = f, casts, false
		case casts == fewest:
			ambiguous = true
		}
	}
	return best, ambiguous
}
