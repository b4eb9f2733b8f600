package asm

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// Mode tells how an operand is going to be used.
type Mode uint8

const (
	// Read accepts any operand form.
	Read Mode = iota
	// Write requires a memory location.
	Write
	// InRegister requires the operand to be held in a register.
	InRegister
)

func (m Mode) String() string {
	return [...]string{"read", "write", "register"}[m]
}

// reference returns the operand for a node in the requested mode.
func (u *Unit) reference(id ast.ID, mode Mode) (*Instructions, error) {
	t := u.tree
	switch n := t.Node(id).(type) {
	case *ast.Var:
		return u.variable(n.Variable, mode)
	case *ast.Number:
		return u.number(n, mode)
	case *ast.String:
		return u.string(n, mode)
	case *ast.Content:
		return u.reference(t.First(id), mode)
	case *ast.Link:
		return u.link(id, mode)
	case *ast.Offset:
		return u.offset(id, mode)
	case *ast.Cast:
		in, err := u.reference(t.First(id), mode)
		if err != nil {
			return nil, err
		}
		if in.Ref != nil && in.Ref.Complex() {
			in.Ref = sized(in.Ref, operandSize(n.Type.ReferenceSize()))
		}
		return in, nil
	}
	if mode == Write {
		return nil, errors.New(errors.UnsupportedConstruct, t.Pos(id), "expression can't be assigned to")
	}
	in, err := u.assemble(id)
	if err != nil {
		return nil, err
	}
	if in.Ref == nil {
		return nil, errors.New(errors.UnsupportedConstruct, t.Pos(id), "expression has no value")
	}
	if mode == InRegister {
		return u.load(in)
	}
	return in, nil
}

// load makes sure the result of in is held in a register.
func (u *Unit) load(in *Instructions) (*Instructions, error) {
	if _, ok := in.Ref.(*Value); ok {
		return in, nil
	}
	loaded, err := u.toRegister(in.Ref, newValue(Operation, Dword))
	if err != nil {
		return nil, err
	}
	in.Take(loaded)
	return in, nil
}

// memory returns where a variable is stored. Members need the object
// pointer in a register first.
func (u *Unit) memory(v *scope.Variable, mode Mode) (*Instructions, Reference, error) {
	in := &Instructions{}
	size := operandSize(v.Size())
	switch v.Category {
	case scope.Global:
		return in, &LabelRef{Name: v.FullName(), Size: size}, nil
	case scope.Parameter:
		return in, &MemoryRef{Base: EBP, Offset: v.Alignment + 8, Size: size}, nil
	case scope.Member:
		load, reg, err := u.objectPointer(mode)
		if err != nil {
			return nil, nil, err
		}
		in.Append(load)
		return in, &MemoryRef{Base: reg, Offset: v.Alignment, Size: size}, nil
	}
	return in, &MemoryRef{Base: EBP, Offset: -(v.Alignment + v.Size()), Size: size}, nil
}

func (u *Unit) variable(v *scope.Variable, mode Mode) (*Instructions, error) {
	if mode == Write {
		u.forget(v)
	} else if cached := u.cached(v); cached != nil {
		cached.Critical = true
		return &Instructions{Ref: cached}, nil
	}
	in, ref, err := u.memory(v, mode)
	if err != nil {
		return nil, err
	}
	in.Ref = ref
	if mode != InRegister {
		return in, nil
	}
	value := newValue(VariableKind, Dword)
	value.Variable = v
	loaded, err := u.toRegister(ref, value)
	if err != nil {
		return nil, err
	}
	in.Take(loaded)
	return in, nil
}

func (u *Unit) number(n *ast.Number, mode Mode) (*Instructions, error) {
	size := Dword
	if n.Type != nil {
		size = operandSize(n.Type.ReferenceSize())
	}
	in := &Instructions{Ref: &NumberRef{Value: n.Value, Size: size}}
	if mode == InRegister {
		loaded, err := u.toRegister(in.Ref, newValue(Number, size))
		if err != nil {
			return nil, err
		}
		in.Take(loaded)
	}
	return in, nil
}

func (u *Unit) string(n *ast.String, mode Mode) (*Instructions, error) {
	in := &Instructions{Ref: &LabelRef{Name: n.Label, Size: Dword, Address: true}}
	if mode == InRegister {
		loaded, err := u.toRegister(in.Ref, newValue(String, Dword))
		if err != nil {
			return nil, err
		}
		in.Take(loaded)
	}
	return in, nil
}
