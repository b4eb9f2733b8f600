package ast

import (
	"fmt"
	"strings"
)

// Format renders the subtree at id on one line, e.g.
// Assign(a, Add(3, Multiply(5, 7))).
func Format(t *Tree, id ID) string {
	var b strings.Builder
	format(&b, t, id)
	return b.String()
}

// Dump renders every child of root on its own line.
func Dump(t *Tree, root ID) string {
	var b strings.Builder
	for _, c := range t.Children(root) {
		format(&b, t, c)
		b.WriteString("\n")
	}
	return b.String()
}

func format(b *strings.Builder, t *Tree, id ID) {
	list := func(ids []ID, sep string) {
		for i, c := range ids {
			if i > 0 {
				b.WriteString(sep)
			}
			format(b, t, c)
		}
	}
	call := func(name string) {
		b.WriteString(name)
		b.WriteString("(")
		list(t.Children(id), ", ")
		b.WriteString(")")
	}
	block := func(id ID) {
		b.WriteString("{")
		list(t.Children(id), "; ")
		b.WriteString("}")
	}

	switch n := t.Node(id).(type) {
	case *Block:
		block(id)
	case *Content:
		call("")
	case *Operator:
		call(n.Op.Name)
	case *Negate:
		call("Negate")
	case *Number:
		fmt.Fprintf(b, "%d", n.Value)
	case *String:
		fmt.Fprintf(b, "'%s'", n.Value)
	case *Var:
		b.WriteString(n.Variable.Name)
	case *TypeRef:
		b.WriteString(n.Type.Name)
	case *TypeDecl:
		fmt.Fprintf(b, "Type %s ", n.Type.Name)
		block(id)
	case *FuncDecl:
		if n.Function.IsConstructor() {
			b.WriteString("Constructor ")
		} else {
			fmt.Fprintf(b, "Function %s ", n.Function.Name)
		}
		block(id)
	case *Call:
		call(n.Function.Name)
	case *UnresolvedCall:
		call("?" + n.Name)
	case *UnresolvedIdent:
		b.WriteString("?" + n.Name)
	case *If:
		b.WriteString("If(")
		format(b, t, t.Child(id, 0))
		b.WriteString(") ")
		block(t.Child(id, 1))
		if next := t.Child(id, 2); next != None {
			b.WriteString(" Else")
			if _, ok := t.Node(next).(*If); ok {
				b.WriteString(" ")
				format(b, t, next)
			} else {
				b.WriteString(" ")
				block(t.First(next))
			}
		}
	case *Else:
		b.WriteString("Else ")
		block(t.First(id))
	case *Loop:
		b.WriteString("Loop(")
		list(t.Children(id)[:3], "; ")
		b.WriteString(") ")
		block(t.Child(id, 3))
	case *Construction:
		call("New")
	case *Link:
		call("Link")
	case *Cast:
		b.WriteString("Cast(")
		format(b, t, t.First(id))
		fmt.Fprintf(b, ", %s)", n.Type.Name)
	case *Offset:
		call("Offset")
	case *Return:
		if t.First(id) == None {
			b.WriteString("Return")
		} else {
			call("Return")
		}
	case *Label:
		fmt.Fprintf(b, "Label %s", n.Label.Name)
	case *Jump:
		fmt.Fprintf(b, "Jump %s", n.Name)
	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}
