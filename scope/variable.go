package scope

import "github.com/deepnoodle-ai/zigzag/internal/token"

// Category tells where a variable lives.
type Category uint8

const (
	Global Category = iota
	Local
	Parameter
	Member
)

func (c Category) String() string {
	return [...]string{"global", "local", "parameter", "member"}[c]
}

// Variable is a named storage location.
type Variable struct {
	Name      string
	Type      *Type
	Category  Category
	Modifiers token.Modifier
	Context   *Context
	Position  token.Position

	// Alignment is the byte offset assigned by the layout pass.
	Alignment int
}

// NewVariable returns an undeclared variable.
func NewVariable(name string, t *Type, category Category, mods token.Modifier, pos token.Position) *Variable {
	return &Variable{Name: name, Type: t, Category: category, Modifiers: mods, Position: pos}
}

// Size is the number of bytes the variable occupies.
func (v *Variable) Size() int {
	if v.Type == nil {
		return ReferenceSize
	}
	return v.Type.ReferenceSize()
}

// FullName is the assembly label of a global variable.
func (v *Variable) FullName() string {
	return "global_" + v.Name
}

func (v *Variable) String() string {
	return v.Name
}
