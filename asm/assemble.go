package asm

import (
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
)

// assemble lowers one node.
func (u *Unit) assemble(id ast.ID) (*Instructions, error) {
	t := u.tree
	switch n := t.Node(id).(type) {
	case *ast.Block:
		return u.block(id)
	case *ast.Operator:
		return u.operator(id, n)
	case *ast.Negate:
		return u.negate(id)
	case *ast.Call:
		return u.call(n.Function, t.Children(id), ast.None)
	case *ast.Construction:
		return u.construction(id)
	case *ast.If:
		return u.conditional(id)
	case *ast.Loop:
		return u.loop(id)
	case *ast.Return:
		return u.ret(id)
	case *ast.Label:
		in := &Instructions{}
		u.Reset()
		in.Label(u.label(n.Label.Name))
		return in, nil
	case *ast.Jump:
		in := &Instructions{}
		in.Raw("jmp %s", u.label(n.Name))
		return in, nil
	case *ast.Var:
		if n.Declaration {
			return &Instructions{}, nil
		}
		return u.reference(id, Read)
	case *ast.Number, *ast.String, *ast.Link, *ast.Offset, *ast.Cast, *ast.Content:
		return u.reference(id, Read)
	case *ast.TypeDecl, *ast.FuncDecl, *ast.TypeRef:
		return &Instructions{}, nil
	case *ast.UnresolvedIdent, *ast.UnresolvedCall:
		return nil, errors.New(errors.E3003, t.Pos(id), "node was never resolved")
	}
	return nil, errors.New(errors.UnsupportedConstruct, t.Pos(id), "node can't be assembled")
}

// block assembles a statement list. Registers are released between
// statements.
func (u *Unit) block(id ast.ID) (*Instructions, error) {
	in := &Instructions{}
	for _, c := range u.tree.Children(id) {
		out, err := u.assemble(c)
		if err != nil {
			return nil, err
		}
		in.Append(out)
		u.Step()
	}
	return in, nil
}
