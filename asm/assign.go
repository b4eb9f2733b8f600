package asm

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/internal/token"
)

// assign stores a value. Compound assignments apply their base operator to
// the current value first. When the target is a variable the register
// keeps caching it afterwards.
func (u *Unit) assign(id ast.ID, op *token.OperatorInfo) (*Instructions, error) {
	t := u.tree
	left, right := t.First(id), t.Last(id)

	var in *Instructions
	var err error
	switch {
	case op.Base != nil:
		in, err = u.binary(id, op.Base, left, right)
	case isImmediate(t, right):
		in, err = u.reference(right, Read)
	default:
		in, err = u.reference(right, InRegister)
	}
	if err != nil {
		return nil, err
	}
	value := in.Ref
	if v, ok := value.(*Value); ok {
		v.Critical = true
	}

	target, err := u.reference(left, Write)
	if err != nil {
		return nil, err
	}
	dst := in.Take(target)
	moved, err := u.byteSource(value, dst)
	if err != nil {
		return nil, err
	}
	in.Append(moved)
	in.Emit("mov", dst.Width(), dst, value)

	if v, ok := value.(*Value); ok {
		if n, isVar := t.Node(left).(*ast.Var); isVar && n.Variable.Size() >= Dword.Bytes() {
			v.Kind = VariableKind
			v.Variable = n.Variable
			v.Disposable = false
			v.Floating = true
			u.attach(v.reg, v)
		}
		v.Critical = false
	}
	in.Ref = value
	return in, nil
}

// byteSource moves a value out of esi or edi before a byte store, since
// those registers have no byte form.
func (u *Unit) byteSource(value, dst Reference) (*Instructions, error) {
	v, ok := value.(*Value)
	if !ok || dst.Width() != Byte || v.reg.HasByte() {
		return nil, nil
	}
	except := []Reg{ESI, EDI}
	if m, ok := dst.(*MemoryRef); ok {
		except = append(except, m.Base)
	}
	return u.relocate(v, except...)
}

func isImmediate(t *ast.Tree, id ast.ID) bool {
	switch t.Node(id).(type) {
	case *ast.Number, *ast.String:
		return true
	}
	return false
}
