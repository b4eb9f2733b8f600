package asm

import (
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
)

// relocate moves a critical value out of its register so the register can
// be reused.
func (u *Unit) relocate(v *Value, except ...Reg) (*Instructions, error) {
	in := &Instructions{}
	to, ok := u.free(append(except, v.reg)...)
	if !ok {
		return nil, errors.New(errors.E3002, token.NoPos,
			"expression is too complex: no register is left to relocate %s", v.reg)
	}
	if old := u.slots[to]; old != nil {
		u.release(old)
	}
	in.Raw("mov %s, %s", to, v.reg)
	u.release(v)
	u.attach(to, v)
	return in, nil
}

// clear makes a register available, relocating a critical value first.
// With zero the register is also set to zero.
func (u *Unit) clear(r Reg, zero bool, except ...Reg) (*Instructions, error) {
	in := &Instructions{}
	if v := u.slots[r]; v != nil {
		if v.Critical {
			moved, err := u.relocate(v, except...)
			if err != nil {
				return nil, err
			}
			in.Append(moved)
		} else {
			u.release(v)
		}
	}
	if zero {
		in.Raw("xor %s, %s", r, r)
	}
	return in, nil
}

// move places a register value into a specific register.
func (u *Unit) move(v *Value, to Reg) (*Instructions, error) {
	in := &Instructions{}
	if v.reg == to {
		return in, nil
	}
	cleared, err := u.clear(to, false, v.reg)
	if err != nil {
		return nil, err
	}
	in.Append(cleared)
	in.Raw("mov %s, %s", to, v.reg)
	u.release(v)
	u.attach(to, v)
	return in, nil
}

// exchange swaps the contents of two registers.
func (u *Unit) exchange(a, b Reg) *Instructions {
	in := &Instructions{}
	in.Raw("xchg %s, %s", a, b)
	va, vb := u.slots[a], u.slots[b]
	u.slots[a], u.slots[b] = nil, nil
	if va != nil {
		u.attach(b, va)
	}
	if vb != nil {
		u.attach(a, vb)
	}
	return in
}

// toRegister loads an operand into a register and tags the register with
// value. Operands narrower than a dword are sign extended.
func (u *Unit) toRegister(ref Reference, value *Value, except ...Reg) (*Instructions, error) {
	in := &Instructions{}
	if v, ok := ref.(*Value); ok && !skipped(v.reg, except) {
		in.Ref = v
		return in, nil
	}
	to, ok := u.free(except...)
	if !ok {
		return nil, errors.New(errors.E3002, token.NoPos, "expression is too complex: every register is in use")
	}
	if held := u.slots[to]; held != nil {
		u.release(held)
	}
	size := ref.Width()
	switch {
	case ref.Complex() && size < Dword:
		in.Raw("movsx %s, %s %s", to, size, ref.Use(size))
	case ref.Complex():
		in.Raw("mov %s, %s %s", to, Dword, ref.Use(Dword))
	default:
		in.Raw("mov %s, %s", to, ref.Use(Dword))
	}
	value.Size = Dword
	u.attach(to, value)
	in.Ref = value
	return in, nil
}

func skipped(r Reg, except []Reg) bool {
	for _, e := range except {
		if e == r {
			return true
		}
	}
	return false
}

// fit makes an operand usable as the source of a dword instruction:
// narrow memory operands are widened into a register.
func (u *Unit) fit(ref Reference) (*Instructions, Reference, error) {
	if ref.Complex() && ref.Width() != Dword {
		in, err := u.toRegister(ref, newValue(Operation, Dword))
		if err != nil {
			return nil, nil, err
		}
		return in, in.Ref, nil
	}
	return &Instructions{}, ref, nil
}

// objectPointer returns the register holding the object a member function
// was called on, loading it from the first stack argument when needed.
func (u *Unit) objectPointer(mode Mode) (*Instructions, Reg, error) {
	in := &Instructions{}
	if v := u.objectPointerValue(); v != nil {
		return in, v.reg, nil
	}
	preferred := ESI
	if mode == Write {
		preferred = EDI
	}
	to := preferred
	if u.IsCritical(to) {
		to = u.next()
	}
	cleared, err := u.clear(to, false)
	if err != nil {
		return nil, 0, err
	}
	in.Append(cleared)
	in.Raw("mov %s, [ebp+8]", to)
	v := newValue(ObjectPointer, Dword)
	u.attach(to, v)
	return in, to, nil
}

// Evacuation saves the critical registers on the stack around a call.
type Evacuation struct {
	values []*Value
}

// evacuate pushes every critical value and frees its register.
func (u *Unit) evacuate() (*Instructions, *Evacuation) {
	in := &Instructions{}
	e := &Evacuation{values: u.Critical()}
	for _, v := range e.values {
		in.Raw("push %s", v.reg)
		u.release(v)
	}
	return in, e
}

// Restore pops the saved values back, in reverse order. A value returns to
// its original register unless that register is taken by a critical
// value, such as the call result.
func (e *Evacuation) Restore(u *Unit) (*Instructions, error) {
	in := &Instructions{}
	for i := len(e.values) - 1; i >= 0; i-- {
		v := e.values[i]
		to := v.reg
		if u.slots[to] != nil {
			if u.slots[to].Critical {
				var ok bool
				if to, ok = u.free(); !ok {
					return nil, errors.New(errors.E3002, token.NoPos, "no register is left to restore %s", v.reg)
				}
			}
			if held := u.slots[to]; held != nil {
				u.release(held)
			}
		}
		in.Raw("pop %s", to)
		u.attach(to, v)
	}
	return in, nil
}

// Size returns the number of bytes pushed.
func (e *Evacuation) Size() int { return len(e.values) * 4 }
