package ast

import (
	"slices"
	"testing"

	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
	"github.com/stretchr/testify/require"
)

func number(t *Tree, v int64) ID {
	return t.New(&Number{Value: v, Type: t.Builtins().Normal()}, token.NoPos)
}

func values(t *Tree, parent ID) []int64 {
	var out []int64
	for _, c := range t.Children(parent) {
		out = append(out, t.Node(c).(*Number).Value)
	}
	return out
}

func TestAppendAndInsert(t *testing.T) {
	tree := NewTree(scope.NewBuiltins())
	root := tree.New(&Block{}, token.NoPos)
	one, two, three := number(tree, 1), number(tree, 2), number(tree, 3)
	tree.Append(root, two)
	tree.InsertBefore(two, one)
	tree.Append(root, three)
	require.Equal(t, []int64{1, 2, 3}, values(tree, root))
	require.Equal(t, one, tree.First(root))
	require.Equal(t, three, tree.Last(root))
	require.Equal(t, root, tree.Parent(two))
	require.Equal(t, 3, tree.Count(root))
	require.Equal(t, two, tree.Child(root, 1))
	require.Equal(t, None, tree.Child(root, 3))

	require.Panics(t, func() { tree.Append(root, two) })
}

func TestReplaceWith(t *testing.T) {
	tests := []struct {
		name    string
		replace int
		want    []int64
	}{
		{"head", 0, []int64{9, 2, 3}},
		{"middle", 1, []int64{1, 9, 3}},
		{"tail", 2, []int64{1, 2, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree(scope.NewBuiltins())
			root := tree.New(&Block{}, token.NoPos)
			for _, v := range []int64{1, 2, 3} {
				tree.Append(root, number(tree, v))
			}
			old := tree.Child(root, tt.replace)
			nine := number(tree, 9)
			tree.ReplaceWith(old, nine)
			require.Equal(t, tt.want, values(tree, root))
			require.Equal(t, None, tree.Parent(old))
			require.Equal(t, None, tree.Next(old))
			require.Equal(t, None, tree.Prev(old))

			// Walking backwards agrees with walking forwards.
			var back []int64
			for c := tree.Last(root); c != None; c = tree.Prev(c) {
				back = append(back, tree.Node(c).(*Number).Value)
			}
			slices.Reverse(back)
			require.Equal(t, tt.want, back)
		})
	}
}

func TestReplaceOnlyChild(t *testing.T) {
	tree := NewTree(scope.NewBuiltins())
	root := tree.New(&Block{}, token.NoPos)
	one := number(tree, 1)
	tree.Append(root, one)
	two := number(tree, 2)
	tree.ReplaceWith(one, two)
	require.Equal(t, two, tree.First(root))
	require.Equal(t, two, tree.Last(root))
}

func TestRemove(t *testing.T) {
	tree := NewTree(scope.NewBuiltins())
	root := tree.New(&Block{}, token.NoPos)
	for _, v := range []int64{1, 2, 3} {
		tree.Append(root, number(tree, v))
	}
	tree.Remove(tree.Child(root, 1))
	require.Equal(t, []int64{1, 3}, values(tree, root))
	tree.Remove(tree.First(root))
	tree.Remove(tree.First(root))
	require.Equal(t, None, tree.First(root))
	require.Equal(t, None, tree.Last(root))
}

func TestGraftAndPreorder(t *testing.T) {
	b := scope.NewBuiltins()
	other := NewTree(b)
	add := other.New(&Operator{Op: token.NewTables().Operator("+")}, token.NoPos)
	other.Append(add, number(other, 1))
	other.Append(add, number(other, 2))

	tree := NewTree(b)
	root := tree.New(&Block{}, token.NoPos)
	copied := tree.Graft(root, other, add)
	require.Equal(t, "Add(1, 2)", Format(tree, copied))

	var kinds []string
	for id := range tree.Preorder(root) {
		kinds = append(kinds, Format(tree, id))
	}
	require.Equal(t, []string{"{Add(1, 2)}", "Add(1, 2)", "1", "2"}, kinds)
}

func TestTypeOf(t *testing.T) {
	b := scope.NewBuiltins()
	tables := token.NewTables()
	tree := NewTree(b)
	root := b.Root()

	tiny := scope.NewVariable("b", b.Lookup("tiny"), scope.Local, 0, token.NoPos)
	require.NoError(t, root.DeclareVariable(tiny))

	binary := func(symbol string, left, right ID) ID {
		id := tree.New(&Operator{Op: tables.Operator(symbol)}, token.NoPos)
		tree.Append(id, left)
		tree.Append(id, right)
		return id
	}
	varNode := func() ID { return tree.New(&Var{Variable: tiny}, token.NoPos) }

	require.Same(t, b.Normal(), TypeOf(tree, binary("+", varNode(), number(tree, 1))))
	require.Same(t, b.Bool(), TypeOf(tree, binary(">", varNode(), number(tree, 1))))
	require.Same(t, b.Lookup("tiny"), TypeOf(tree, binary("=", varNode(), number(tree, 1))))
	require.Same(t, b.Link(), TypeOf(tree, tree.New(&String{Value: "x"}, token.NoPos)))

	unknown := tree.New(&UnresolvedIdent{Name: "x"}, token.NoPos)
	require.Nil(t, TypeOf(tree, unknown))
	require.Nil(t, TypeOf(tree, binary("+", tree.New(&UnresolvedIdent{Name: "y"}, token.NoPos), number(tree, 1))))
}
