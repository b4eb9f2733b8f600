package asm

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// push pushes an operand as a dword.
func (u *Unit) push(ref Reference) (*Instructions, error) {
	in, ref, err := u.fit(ref)
	if err != nil {
		return nil, err
	}
	in.Emit("push", Dword, ref)
	return in, nil
}

// arguments evaluates and pushes args from right to left, so the first
// argument ends up closest to the return address.
func (u *Unit) arguments(args []ast.ID) (*Instructions, int, error) {
	in := &Instructions{}
	bytes := 0
	for i := len(args) - 1; i >= 0; i-- {
		arg, err := u.reference(args[i], Read)
		if err != nil {
			return nil, 0, err
		}
		pushed, err := u.push(in.Take(arg))
		if err != nil {
			return nil, 0, err
		}
		in.Append(pushed)
		bytes += 4
	}
	in.Ref = nil
	return in, bytes, nil
}

// invoke emits the call itself and cleans up after it. The result of every
// call is an operation value in eax.
func (u *Unit) invoke(in *Instructions, label string, bytes int, e *Evacuation) error {
	in.Raw("call %s", label)
	u.Reset()
	result := newValue(Operation, Dword)
	u.attach(EAX, result)
	if bytes > 0 {
		in.Raw("add esp, %d", bytes)
	}
	restored, err := e.Restore(u)
	if err != nil {
		return err
	}
	in.Append(restored)
	in.Ref = result
	return nil
}

// call assembles a call to f. Member functions receive the object pointer
// as the last pushed argument: the value of object, or the object the
// current function was called on when object is None.
func (u *Unit) call(f *scope.Function, args []ast.ID, object ast.ID) (*Instructions, error) {
	in, e := u.evacuate()
	pushed, bytes, err := u.arguments(args)
	if err != nil {
		return nil, err
	}
	in.Append(pushed)
	if f.IsMember() {
		if object == ast.None {
			if u.function == nil || !u.function.IsMember() {
				return nil, errors.New(errors.UnsupportedConstruct, f.Position,
					"member function '%s' needs an object", f.Name)
			}
			in.Raw("push dword [ebp+8]")
		} else {
			obj, err := u.reference(object, Read)
			if err != nil {
				return nil, err
			}
			p, err := u.push(in.Take(obj))
			if err != nil {
				return nil, err
			}
			in.Append(p)
		}
		bytes += 4
	}
	if err := u.invoke(in, f.FullName(), bytes, e); err != nil {
		return nil, err
	}
	return in, nil
}

// callRaw calls a runtime helper by label.
func (u *Unit) callRaw(label string, args []ast.ID) (*Instructions, error) {
	in, e := u.evacuate()
	pushed, bytes, err := u.arguments(args)
	if err != nil {
		return nil, err
	}
	in.Append(pushed)
	if err := u.invoke(in, label, bytes, e); err != nil {
		return nil, err
	}
	return in, nil
}

// construction allocates the object's memory and runs the constructor on
// it. Constructors return the object they initialized.
func (u *Unit) construction(id ast.ID) (*Instructions, error) {
	t := u.tree
	callID := t.First(id)
	n, ok := t.Node(callID).(*ast.Call)
	if !ok {
		return nil, errors.New(errors.E3003, t.Pos(id), "constructor was never resolved")
	}
	ctor := n.Function
	typ := ctor.Owner()
	if typ == nil {
		return nil, errors.New(errors.UnsupportedConstruct, t.Pos(id), "'%s' is not a constructor", ctor.Name)
	}

	in, e := u.evacuate()
	args := t.Children(callID)
	pushed, bytes, err := u.arguments(args)
	if err != nil {
		return nil, err
	}
	in.Append(pushed)

	size := typ.ContentSize()
	if size == 0 {
		size = scope.ReferenceSize
	}
	in.Raw("push %d", size)
	in.Raw("call function_allocate")
	in.Raw("add esp, 4")
	if ctor.IsDefault() {
		u.Reset()
		u.attach(EAX, newValue(Operation, Dword))
		if bytes > 0 {
			in.Raw("add esp, %d", bytes)
		}
		restored, err := e.Restore(u)
		if err != nil {
			return nil, err
		}
		in.Append(restored)
		in.Ref = u.slots[EAX]
		return in, nil
	}
	in.Raw("push eax")
	if err := u.invoke(in, ctor.FullName(), bytes+4, e); err != nil {
		return nil, err
	}
	return in, nil
}

// link accesses a member of an object: a field or a member function call.
func (u *Unit) link(id ast.ID, mode Mode) (*Instructions, error) {
	t := u.tree
	left, right := t.First(id), t.Last(id)
	switch n := t.Node(right).(type) {
	case *ast.Call:
		if mode == Write {
			return nil, errors.New(errors.UnsupportedConstruct, t.Pos(id), "a call can't be assigned to")
		}
		return u.call(n.Function, t.Children(right), left)
	case *ast.Var:
		v := n.Variable
		if v.Category != scope.Member {
			return nil, errors.New(errors.UnsupportedConstruct, t.Pos(right), "'%s' is not a member", v.Name)
		}
		in, err := u.reference(left, InRegister)
		if err != nil {
			return nil, err
		}
		object := in.Ref.(*Value)
		object.Critical = true
		if mode == Write {
			u.forget(v)
		}
		in.Ref = &MemoryRef{Base: object.reg, Offset: v.Alignment, Size: operandSize(v.Size())}
		if mode == InRegister {
			loaded, err := u.toRegister(in.Ref, newValue(Operation, Dword))
			if err != nil {
				return nil, err
			}
			in.Take(loaded)
		}
		return in, nil
	case *ast.UnresolvedIdent, *ast.UnresolvedCall:
		return nil, errors.New(errors.E3003, t.Pos(right), "member was never resolved")
	}
	return nil, errors.New(errors.UnsupportedConstruct, t.Pos(id), "member access can't be assembled")
}

// offset addresses an element: [object+index*stride].
func (u *Unit) offset(id ast.ID, mode Mode) (*Instructions, error) {
	t := u.tree
	stride := Byte
	if typ := ast.TypeOf(t, id); typ != nil {
		stride = operandSize(typ.ReferenceSize())
	}
	in, err := u.reference(t.First(id), InRegister)
	if err != nil {
		return nil, err
	}
	object := in.Ref.(*Value)
	object.Critical = true

	index := t.Last(id)
	if n, ok := t.Node(index).(*ast.Number); ok {
		in.Ref = &MemoryRef{Base: object.reg, Offset: int(n.Value) * stride.Bytes(), Size: stride}
	} else {
		out, err := u.reference(index, InRegister)
		if err != nil {
			return nil, err
		}
		idx := in.Take(out).(*Value)
		to, ok := u.free(object.reg, idx.reg)
		if !ok {
			to = idx.reg
		}
		address := &MemoryRef{Base: object.reg, Size: Dword}
		in.Raw("lea %s, [%s+%s*%d]", to, address.Address(), idx.Use(Dword), stride.Bytes())
		if held := u.slots[to]; held != nil {
			u.release(held)
		}
		u.attach(to, newValue(Operation, Dword))
		in.Ref = &MemoryRef{Base: to, Size: stride}
	}
	if mode == InRegister {
		loaded, err := u.toRegister(in.Ref, newValue(Operation, Dword))
		if err != nil {
			return nil, err
		}
		in.Take(loaded)
	}
	return in, nil
}
