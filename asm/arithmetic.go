package asm

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
)

var mnemonics = map[string]string{
	"Add":        "add",
	"Subtract":   "sub",
	"Multiply":   "imul",
	"BitwiseAnd": "and",
	"BitwiseXor": "xor",
	"BitwiseOr":  "or",
	"ShiftLeft":  "sal",
	"ShiftRight": "sar",
}

func (u *Unit) operator(id ast.ID, n *ast.Operator) (*Instructions, error) {
	t := u.tree
	switch n.Op.Category {
	case token.Action:
		return u.assign(id, n.Op)
	case token.Comparison, token.Logic:
		return u.boolean(id)
	}
	return u.binary(id, n.Op, t.First(id), t.Last(id))
}

// operands evaluates the two sides of a binary operation. The left side
// ends up in a register. Complex sides are evaluated before primitive ones
// so that evaluating one side can't clobber the other.
func (u *Unit) operands(left, right ast.ID) (*Instructions, *Value, Reference, error) {
	t := u.tree
	in := &Instructions{}
	var l, r Reference
	if !ast.IsPrimitive(t, right) {
		mode := Read
		if !ast.IsPrimitive(t, left) {
			mode = InRegister
		}
		out, err := u.reference(right, mode)
		if err != nil {
			return nil, nil, nil, err
		}
		r = in.Take(out)
		if v, ok := r.(*Value); ok {
			v.Critical = true
		}
	}
	out, err := u.reference(left, InRegister)
	if err != nil {
		return nil, nil, nil, err
	}
	l = in.Take(out)
	if r == nil {
		out, err := u.reference(right, Read)
		if err != nil {
			return nil, nil, nil, err
		}
		r = in.Take(out)
	}
	fitted, r, err := u.fit(r)
	if err != nil {
		return nil, nil, nil, err
	}
	in.Append(fitted)
	in.Ref = nil
	return in, l.(*Value), r, nil
}

// binary applies a classic operator to left and right.
func (u *Unit) binary(id ast.ID, op *token.OperatorInfo, left, right ast.ID) (*Instructions, error) {
	switch op.Name {
	case "Divide", "Modulus":
		return u.divide(id, op, left, right)
	case "Power":
		return u.callRaw("function_integer_power", []ast.ID{left, right})
	}
	mnemonic, ok := mnemonics[op.Name]
	if !ok {
		return nil, errors.New(errors.UnsupportedConstruct, u.tree.Pos(id), "operator '%s' can't be assembled", op.Symbol)
	}
	in, l, r, err := u.operands(left, right)
	if err != nil {
		return nil, err
	}
	if mnemonic == "sal" || mnemonic == "sar" {
		if _, ok := r.(*NumberRef); !ok {
			return nil, errors.New(errors.UnsupportedConstruct, u.tree.Pos(id), "shift amount must be a constant")
		}
	}
	reg := l.reg
	in.Emit(mnemonic, Dword, l, r)
	result := newValue(Operation, Dword)
	u.attach(reg, result)
	in.Ref = result
	return in, nil
}

// divide emits idiv, which takes the dividend in edx:eax and leaves the
// quotient in eax and the remainder in edx.
func (u *Unit) divide(id ast.ID, op *token.OperatorInfo, left, right ast.ID) (*Instructions, error) {
	in, l, r, err := u.operands(left, right)
	if err != nil {
		return nil, err
	}

	if rv, ok := r.(*Value); ok && rv.reg == EAX && l.reg != EAX {
		in.Append(u.exchange(EAX, l.reg))
	} else if l.reg != EAX {
		moved, err := u.move(l, EAX)
		if err != nil {
			return nil, err
		}
		in.Append(moved)
	}
	l.Critical = true

	// idiv can't take an immediate, and edx is about to be overwritten.
	rv, inRegister := r.(*Value)
	if (!inRegister && !r.Complex()) || (inRegister && rv.reg == EDX) {
		loaded, err := u.toRegister(r, newValue(Operation, Dword), EAX, EDX)
		if err != nil {
			return nil, err
		}
		r = in.Take(loaded)
		r.(*Value).Critical = true
	}

	modulus := op.Name == "Modulus"
	var saved *Value
	if v := u.slots[EDX]; v != nil && v != r {
		switch {
		case !v.Critical:
			u.release(v)
		case modulus:
			moved, err := u.relocate(v, EAX, regOf(r))
			if err != nil {
				return nil, err
			}
			in.Append(moved)
		default:
			in.Raw("push edx")
			u.release(v)
			saved = v
		}
	}

	signed := true
	if typ := ast.TypeOf(u.tree, left); typ != nil && typ.Primitive() != nil {
		signed = typ.Primitive().Signed
	}
	if signed {
		in.Raw("cdq")
		in.Emit("idiv", Dword, r)
	} else {
		in.Raw("xor edx, edx")
		in.Emit("div", Dword, r)
	}

	u.release(l)
	result := newValue(Operation, Dword)
	if modulus {
		u.attach(EDX, result)
	} else {
		u.attach(EAX, result)
		if saved != nil {
			in.Raw("pop edx")
			u.attach(EDX, saved)
		}
	}
	in.Ref = result
	return in, nil
}

func regOf(ref Reference) Reg {
	if r, ok := ref.Register(); ok {
		return r
	}
	return EBP
}

func (u *Unit) negate(id ast.ID) (*Instructions, error) {
	in, err := u.reference(u.tree.First(id), InRegister)
	if err != nil {
		return nil, err
	}
	v := in.Ref.(*Value)
	reg := v.reg
	in.Emit("neg", Dword, v)
	result := newValue(Operation, Dword)
	u.attach(reg, result)
	in.Ref = result
	return in, nil
}
