package scope

import (
	"testing"

	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/stretchr/testify/require"
)

func TestDuplicateDeclaration(t *testing.T) {
	b := NewBuiltins()
	root := b.Root()
	require.NoError(t, root.DeclareVariable(NewVariable("a", b.Normal(), Global, 0, token.NoPos)))
	err := root.DeclareVariable(NewVariable("a", b.Normal(), Global, 0, token.NoPos))
	require.True(t, errors.HasCode(err, errors.DuplicateDeclaration))
	require.Contains(t, err.Error(), "variable 'a' already exists in this context")

	// The same name in a nested scope is fine.
	inner := NewContext(root)
	require.NoError(t, inner.DeclareVariable(NewVariable("a", b.Normal(), Local, 0, token.NoPos)))

	spoon := NewType(root, "spoon", token.Public, token.NoPos)
	require.NoError(t, root.DeclareType(spoon))
	require.Error(t, root.DeclareType(NewType(root, "spoon", 0, token.NoPos)))
	require.Error(t, root.DeclareType(NewType(root, "num", 0, token.NoPos)))
}

func TestShadowing(t *testing.T) {
	b := NewBuiltins()
	root := b.Root()
	outer := NewVariable("x", b.Normal(), Global, 0, token.NoPos)
	require.NoError(t, root.DeclareVariable(outer))

	first := NewContext(root)
	inner := NewVariable("x", b.Lookup("tiny"), Local, 0, token.NoPos)
	require.NoError(t, first.DeclareVariable(inner))
	second := NewContext(root)

	require.Same(t, inner, NewContext(first).LookupVariable("x"))
	require.Same(t, outer, second.LookupVariable("x"))
	require.Nil(t, second.LookupVariable("y"))
}

func TestBuiltins(t *testing.T) {
	b := NewBuiltins()
	root := b.Root()
	require.Same(t, root.LookupType("normal"), root.LookupType("num"))
	require.Same(t, root.LookupType("small"), root.LookupType("short"))
	require.Equal(t, 8, root.LookupType("long").ReferenceSize())
	require.Equal(t, 1, root.LookupType("byte").ReferenceSize())
	require.Len(t, root.Types(), 10)

	alloc := root.LookupFunctions("allocate")
	require.NotNil(t, alloc)
	require.Equal(t, "function_allocate", alloc.Overloads[0].FullName())
	require.True(t, alloc.Overloads[0].IsExternal())
	require.Same(t, b.Link(), alloc.Overloads[0].ReturnType)
	require.Same(t, b.Lookup("large"), b.ForNumber(1<<40))
	require.Same(t, b.Normal(), b.ForNumber(-777))
}

func TestTypeMembers(t *testing.T) {
	b := NewBuiltins()
	root := b.Root()
	spoon := NewType(root, "spoon", token.Public, token.NoPos)
	require.NoError(t, root.DeclareType(spoon))
	require.NoError(t, spoon.DeclareVariable(NewVariable("a", b.Normal(), Member, token.Public, token.NoPos)))
	require.NoError(t, spoon.DeclareVariable(NewVariable("b", b.Lookup("tiny"), Member, token.Private, token.NoPos)))

	require.Equal(t, 5, spoon.ContentSize())
	require.Equal(t, 4, spoon.ReferenceSize())
	require.Equal(t, "type_spoon_", spoon.Identifier())

	getSum := NewFunction(&spoon.Context, "getSum", token.Public, token.NoPos)
	spoon.DeclareFunction(getSum)
	require.Equal(t, "type_spoon_function_getSum", getSum.FullName())
	require.True(t, getSum.IsMember())
	require.Same(t, spoon.LocalVariable("a"), getSum.LookupVariable("a"))
	require.True(t, getSum.ReturnType.IsUnknown())

	handle := NewType(&spoon.Context, "handle", 0, token.NoPos)
	require.NoError(t, spoon.DeclareType(handle))
	require.Equal(t, "type_spoon_type_handle_", handle.Identifier())
	require.Same(t, handle, root.ResolvePath([]string{"spoon", "handle"}))
	require.Nil(t, root.ResolvePath([]string{"spoon", "blade"}))
}

func TestConstructors(t *testing.T) {
	b := NewBuiltins()
	root := b.Root()
	spoon := NewType(root, "spoon", 0, token.NoPos)
	require.Len(t, spoon.Constructors.Overloads, 1)
	require.True(t, spoon.Constructors.Overloads[0].IsDefault())

	init := NewFunction(&spoon.Context, "init", token.Public, token.NoPos)
	spoon.AddConstructor(init)
	require.Len(t, spoon.Constructors.Overloads, 1)
	require.Same(t, init, spoon.Constructors.Overloads[0])
	require.Equal(t, "type_spoon_constructor", init.FullName())
	require.Same(t, spoon, init.ReturnType)
}

func TestInheritance(t *testing.T) {
	b := NewBuiltins()
	root := b.Root()
	animal := NewType(root, "animal", 0, token.NoPos)
	require.NoError(t, animal.DeclareVariable(NewVariable("legs", b.Normal(), Member, 0, token.NoPos)))
	walk := NewFunction(&animal.Context, "walk", 0, token.NoPos)
	animal.DeclareFunction(walk)

	dog := NewType(root, "dog", 0, token.NoPos)
	dog.Supertypes = []*Type{animal}
	require.NoError(t, dog.DeclareVariable(NewVariable("tail", b.Normal(), Member, 0, token.NoPos)))

	require.NotNil(t, dog.LocalVariable("legs"))
	require.Same(t, walk, dog.LocalFunctions("walk").Overloads[0])
	require.Equal(t, 8, dog.ContentSize())
	require.Same(t, animal, Shared(dog, animal))
	require.Same(t, animal, Shared(animal, dog))
	require.Nil(t, Shared(dog, b.Normal()))
	require.Same(t, b.Link(), Shared(b.Link(), dog))
}

func TestSharedNumbers(t *testing.T) {
	b := NewBuiltins()
	tiny, normal, large := b.Lookup("tiny"), b.Normal(), b.Lookup("large")
	require.Same(t, normal, Shared(normal, tiny))
	require.Same(t, normal, Shared(tiny, normal))
	require.Same(t, large, Shared(normal, large))
	require.Same(t, normal, Shared(normal, b.Lookup("u32")))
	require.Nil(t, Shared(b.Bool(), normal))
	require.Nil(t, Shared(NewUnknown(), normal))
	require.Nil(t, Shared(Unresolved(token.NoPos, "x"), normal))
}

func TestOverloadSelection(t *testing.T) {
	b := NewBuiltins()
	root := b.Root()
	tiny, normal := b.Lookup("tiny"), b.Normal()

	declare := func(params ...*Type) *Function {
		f := NewFunction(root, "add", 0, token.NoPos)
		for i, p := range params {
			v := NewVariable(string(rune('a'+i)), p, Parameter, 0, token.NoPos)
			require.NoError(t, f.DeclareVariable(v))
			f.AddParameter(v)
		}
		root.DeclareFunction(f)
		return f
	}
	wide := declare(normal, normal)
	narrow := declare(tiny, tiny)
	single := declare(normal)
	set := root.LookupFunctions("add")
	require.Equal(t, "function_add_1", narrow.FullName())

	f, ambiguous := set.Select([]*Type{tiny, tiny})
	require.Same(t, narrow, f)
	require.False(t, ambiguous)

	f, _ = set.Select([]*Type{normal, tiny})
	require.Same(t, wide, f)

	f, _ = set.Select([]*Type{normal})
	require.Same(t, single, f)

	f, _ = set.Select([]*Type{b.Bool()})
	require.Nil(t, f)

	// A second identical candidate ties with the first; the first wins.
	declare(tiny, tiny)
	f, ambiguous = set.Select([]*Type{tiny, tiny})
	require.Same(t, narrow, f)
	require.True(t, ambiguous)
}

func TestLocalsAndMerge(t *testing.T) {
	b := NewBuiltins()
	root := b.Root()
	run := NewFunction(root, "run", 0, token.NoPos)
	root.DeclareFunction(run)
	require.NoError(t, run.DeclareVariable(NewVariable("a", b.Normal(), Local, 0, token.NoPos)))
	block := NewContext(&run.Context)
	require.NoError(t, block.DeclareVariable(NewVariable("b", b.Lookup("tiny"), Local, 0, token.NoPos)))
	require.Len(t, run.Locals(), 2)
	require.Equal(t, 5, run.LocalMemory())
	require.Same(t, run, block.FunctionParent())

	other := b.Root()
	helper := NewFunction(other, "helper", 0, token.NoPos)
	other.DeclareFunction(helper)
	require.NoError(t, other.DeclareVariable(NewVariable("g", b.Normal(), Global, 0, token.NoPos)))

	require.NoError(t, root.Merge(other))
	require.Same(t, helper, root.LookupFunctions("helper").Overloads[0])
	require.Same(t, root, helper.Parent())
	require.NotNil(t, root.LookupVariable("g"))
	require.Len(t, root.LookupFunctions("allocate").Overloads, 1)

	clash := b.Root()
	require.NoError(t, clash.DeclareVariable(NewVariable("g", b.Normal(), Global, 0, token.NoPos)))
	require.True(t, errors.HasCode(root.Merge(clash), errors.DuplicateDeclaration))
}

func TestLabels(t *testing.T) {
	b := NewBuiltins()
	run := NewFunction(b.Root(), "run", 0, token.NoPos)
	require.NoError(t, run.DeclareLabel(NewLabel("top", token.NoPos)))
	require.Error(t, run.DeclareLabel(NewLabel("top", token.NoPos)))
	require.NotNil(t, NewContext(&run.Context).LookupLabel("top"))
	require.Nil(t, run.LookupLabel("bottom"))
}
