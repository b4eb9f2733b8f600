package asm

import (
	"strings"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
)

var jumps = map[string]string{
	"Greater":        "jg",
	"GreaterOrEqual": "jge",
	"Less":           "jl",
	"LessOrEqual":    "jle",
	"Equals":         "je",
	"NotEquals":      "jne",
}

// condition unwraps parentheses around a condition.
func (u *Unit) condition(id ast.ID) ast.ID {
	for {
		if _, ok := u.tree.Node(id).(*ast.Content); !ok {
			return id
		}
		id = u.tree.First(id)
	}
}

func (u *Unit) comparison(id ast.ID) (*token.OperatorInfo, bool) {
	n, ok := u.tree.Node(id).(*ast.Operator)
	if !ok || n.Op.Category == token.Classic || n.Op.Category == token.Action {
		return nil, false
	}
	return n.Op, true
}

// compare emits cmp for a comparison operator.
func (u *Unit) compare(id ast.ID) (*Instructions, error) {
	in, l, r, err := u.operands(u.tree.First(id), u.tree.Last(id))
	if err != nil {
		return nil, err
	}
	in.Emit("cmp", Dword, l, r)
	return in, nil
}

// jump emits a jump to label taken when the condition is true, or when
// it is false if inverted.
func (u *Unit) jump(cond ast.ID, label string, inverted bool) (*Instructions, error) {
	t := u.tree
	cond = u.condition(cond)
	op, ok := u.comparison(cond)
	if !ok {
		in, err := u.reference(cond, InRegister)
		if err != nil {
			return nil, err
		}
		in.Emit("cmp", Dword, in.Ref, &NumberRef{Value: 0, Size: Dword})
		if inverted {
			in.Raw("je %s", label)
		} else {
			in.Raw("jne %s", label)
		}
		in.Ref = nil
		return in, nil
	}

	if op.Category == token.Comparison {
		in, err := u.compare(cond)
		if err != nil {
			return nil, err
		}
		if inverted {
			op = op.Counterpart
		}
		in.Raw("%s %s", jumps[op.Name], label)
		return in, nil
	}

	// Logic operators short circuit. Jumping on 'a & b' being false, or on
	// 'a | b' being true, only needs the sides to jump to the same label.
	in := &Instructions{}
	left, right := t.First(cond), t.Last(cond)
	and := op.Name == "And"
	if and == inverted {
		for _, side := range []ast.ID{left, right} {
			out, err := u.jump(side, label, inverted)
			if err != nil {
				return nil, err
			}
			in.Append(out)
			u.Step()
		}
		return in, nil
	}
	skip := u.Label()
	out, err := u.jump(left, skip, !inverted)
	if err != nil {
		return nil, err
	}
	in.Append(out)
	u.Step()
	out, err = u.jump(right, label, inverted)
	if err != nil {
		return nil, err
	}
	in.Append(out)
	in.Label(skip)
	return in, nil
}

// boolean materializes a comparison or logic operator as 0 or 1.
func (u *Unit) boolean(id ast.ID) (*Instructions, error) {
	op, _ := u.comparison(id)
	if op.Category == token.Comparison {
		in, err := u.compare(id)
		if err != nil {
			return nil, err
		}
		// setcc needs a byte register; mov doesn't touch the flags.
		to, ok := u.free(ESI, EDI)
		if !ok {
			return nil, errors.New(errors.E3002, u.tree.Pos(id), "expression is too complex: no byte register is left")
		}
		cleared, err := u.clear(to, false, ESI, EDI)
		if err != nil {
			return nil, err
		}
		in.Append(cleared)
		in.Raw("%s %s", strings.Replace(jumps[op.Name], "j", "set", 1), to.Name(Byte))
		in.Raw("movzx %s, %s", to, to.Name(Byte))
		result := newValue(Operation, Dword)
		u.attach(to, result)
		in.Ref = result
		return in, nil
	}

	falseLabel, end := u.Label(), u.Label()
	in, err := u.jump(id, falseLabel, true)
	if err != nil {
		return nil, err
	}
	to, ok := u.free()
	if !ok {
		return nil, errors.New(errors.E3002, u.tree.Pos(id), "expression is too complex: every register is in use")
	}
	if held := u.slots[to]; held != nil {
		u.release(held)
	}
	in.Raw("mov %s, 1", to)
	in.Raw("jmp %s", end)
	in.Label(falseLabel)
	in.Raw("mov %s, 0", to)
	in.Label(end)
	result := newValue(Operation, Dword)
	u.attach(to, result)
	in.Ref = result
	return in, nil
}

// conditional assembles an if chain. Every branch jumps to the next one
// when its condition fails and to the shared end label when its body is
// done.
func (u *Unit) conditional(id ast.ID) (*Instructions, error) {
	end := u.Label()
	in, err := u.branch(id, end)
	if err != nil {
		return nil, err
	}
	in.Label(end)
	u.Reset()
	return in, nil
}

func (u *Unit) branch(id ast.ID, end string) (*Instructions, error) {
	t := u.tree
	if _, ok := t.Node(id).(*ast.Else); ok {
		return u.Clone().block(t.First(id))
	}
	cond, body, successor := t.Child(id, 0), t.Child(id, 1), t.Child(id, 2)
	next := end
	if successor != ast.None {
		next = u.Label()
	}
	in, err := u.jump(cond, next, true)
	if err != nil {
		return nil, err
	}
	u.Step()
	out, err := u.Clone().block(body)
	if err != nil {
		return nil, err
	}
	in.Append(out)
	if successor == ast.None {
		return in, nil
	}
	in.Raw("jmp %s", end)
	in.Label(next)
	out, err = u.branch(successor, end)
	if err != nil {
		return nil, err
	}
	in.Append(out)
	return in, nil
}

// loop assembles a loop. The condition is checked before every iteration
// and the step block runs after the body.
func (u *Unit) loop(id ast.ID) (*Instructions, error) {
	t := u.tree
	n := t.Node(id).(*ast.Loop)
	init, cond, step, body := t.Child(id, 0), t.Child(id, 1), t.Child(id, 2), t.Child(id, 3)

	in, err := u.block(init)
	if err != nil {
		return nil, err
	}
	u.Reset()
	start := u.Label()
	in.Label(start)

	var end string
	if !n.Forever {
		end = u.Label()
		out, err := u.jump(cond, end, true)
		if err != nil {
			return nil, err
		}
		in.Append(out)
		u.Step()
	}
	for _, part := range []ast.ID{body, step} {
		out, err := u.block(part)
		if err != nil {
			return nil, err
		}
		in.Append(out)
	}
	in.Raw("jmp %s", start)
	if !n.Forever {
		in.Label(end)
	}
	u.Reset()
	return in, nil
}

// ret moves the value into eax and leaves the function.
func (u *Unit) ret(id ast.ID) (*Instructions, error) {
	in := &Instructions{}
	if value := u.tree.First(id); value != ast.None {
		out, err := u.reference(value, Read)
		if err != nil {
			return nil, err
		}
		ref := in.Take(out)
		switch {
		case ref.Complex() && ref.Width() < Dword:
			in.Raw("movsx eax, %s %s", ref.Width(), ref.Use(ref.Width()))
		case ref.Complex():
			in.Emit("mov", Dword, &RegisterRef{Reg: EAX, Size: Dword}, ref)
		default:
			if r, ok := ref.Register(); !ok || r != EAX {
				in.Raw("mov eax, %s", ref.Use(Dword))
			}
		}
	}
	u.epilogue(in)
	u.Reset()
	result := newValue(Operation, Dword)
	u.attach(EAX, result)
	in.Ref = result
	return in, nil
}

// epilogue restores the caller's frame and returns. Constructors return
// the object they were called on.
func (u *Unit) epilogue(in *Instructions) {
	if u.function != nil && u.function.IsConstructor() {
		in.Raw("mov eax, [ebp+8]")
	}
	in.Raw("mov esp, ebp")
	in.Raw("pop ebp")
	in.Raw("ret")
}

func (u *Unit) label(name string) string {
	return u.prefix + "_" + name
}
