package asm

import (
	"fmt"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/scope"
	"github.com/rs/zerolog"
)

// Unit is the per-function code generation state: the register bank and a
// label counter. Branches assemble on clones so their register state does
// not leak into sibling branches. Clones share the label counter.
type Unit struct {
	tree     *ast.Tree
	function *scope.Function
	prefix   string
	labels   *int
	slots    [bankSize]*Value
	logger   zerolog.Logger
}

func newUnit(tree *ast.Tree, f *scope.Function, prefix string, logger zerolog.Logger) *Unit {
	return &Unit{tree: tree, function: f, prefix: prefix, labels: new(int), logger: logger}
}

// Clone copies the register state. Values are copied so that changes in
// the clone stay there.
func (u *Unit) Clone() *Unit {
	c := *u
	for i, v := range u.slots {
		if v != nil {
			cp := *v
			cp.unit = &c
			c.slots[i] = &cp
		}
	}
	return &c
}

// Label returns a new label unique within the function.
func (u *Unit) Label() string {
	*u.labels++
	return fmt.Sprintf("%s_L%d", u.prefix, *u.labels)
}

// Step ends a statement: nothing held in registers is needed anymore, but
// cached variables stay usable.
func (u *Unit) Step() {
	for _, v := range u.slots {
		if v != nil {
			v.Critical = false
		}
	}
}

// Reset forgets every register. It is used at join points and after calls.
func (u *Unit) Reset() {
	u.slots = [bankSize]*Value{}
}

// Value returns the value held in a register.
func (u *Unit) Value(r Reg) *Value {
	if r >= bankSize {
		return nil
	}
	return u.slots[r]
}

// IsAvailable reports whether a register holds nothing.
func (u *Unit) IsAvailable(r Reg) bool { return u.slots[r] == nil }

// IsCritical reports whether a register holds a value still needed.
func (u *Unit) IsCritical(r Reg) bool { return u.slots[r] != nil && u.slots[r].Critical }

func (u *Unit) attach(r Reg, v *Value) {
	v.reg = r
	v.unit = u
	u.slots[r] = v
}

func (u *Unit) release(v *Value) {
	if v.reg < bankSize && u.slots[v.reg] == v {
		u.slots[v.reg] = nil
	}
}

// next returns the register to use for a new value: the first empty one,
// else the first one holding an uncritical value, else eax, which the
// caller has to evacuate first.
func (u *Unit) next(except ...Reg) Reg {
	if r, ok := u.free(except...); ok {
		return r
	}
	return EAX
}

func (u *Unit) free(except ...Reg) (Reg, bool) {
	skip := func(r Reg) bool {
		for _, e := range except {
			if e == r {
				return true
			}
		}
		return false
	}
	for r := Reg(0); r < bankSize; r++ {
		if !skip(r) && u.slots[r] == nil {
			return r, true
		}
	}
	for r := Reg(0); r < bankSize; r++ {
		if !skip(r) && !u.slots[r].Critical {
			return r, true
		}
	}
	return 0, false
}

// cached returns the register value caching v.
func (u *Unit) cached(v *scope.Variable) *Value {
	for _, value := range u.slots {
		if value != nil && value.Kind == VariableKind && value.Variable == v {
			return value
		}
	}
	return nil
}

// forget drops the cache of v after it has been written to memory.
func (u *Unit) forget(v *scope.Variable) {
	for r, value := range u.slots {
		if value != nil && value.Kind == VariableKind && value.Variable == v {
			if value.Critical {
				value.Kind, value.Variable = Operation, nil
				continue
			}
			u.slots[r] = nil
		}
	}
}

// forgetMembers drops every cached member variable.
func (u *Unit) forgetMembers() {
	for _, value := range u.slots {
		if value != nil && value.Variable != nil && value.Variable.Category == scope.Member {
			u.forget(value.Variable)
		}
	}
}

func (u *Unit) objectPointerValue() *Value {
	for _, value := range u.slots {
		if value != nil && value.Kind == ObjectPointer {
			return value
		}
	}
	return nil
}

// Critical returns the values that must survive a call, in bank order.
func (u *Unit) Critical() []*Value {
	var out []*Value
	for _, v := range u.slots {
		if v != nil && v.Critical {
			out = append(out, v)
		}
	}
	return out
}
