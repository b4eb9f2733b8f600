package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/lexer"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/parser"
	"github.com/deepnoodle-ai/zigzag/scope"
)

var grammar = parser.NewGrammar(token.NewTables())

type program struct {
	tree *ast.Tree
	root ast.ID
	ctx  *scope.Context
	r    *Resolver
}

func resolve(t *testing.T, input string) (program, error) {
	t.Helper()
	tokens, err := lexer.Tokenize(input, lexer.WithFile("test.zz"), lexer.WithTables(grammar.Tables()))
	require.NoError(t, err)
	builtins := scope.NewBuiltins()
	tree := ast.NewTree(builtins)
	ctx := builtins.Root()
	root, err := parser.New(grammar, tree).File(ctx, tokens)
	require.NoError(t, err)
	r := New(tree)
	err = r.Resolve(root, ctx)
	return program{tree: tree, root: root, ctx: ctx, r: r}, err
}

func mustResolve(t *testing.T, input string) program {
	t.Helper()
	p, err := resolve(t, input)
	require.NoError(t, err)
	return p
}

func function(p program, name string) *scope.Function {
	return p.ctx.LookupFunctions(name).Overloads[0]
}

func TestMemberScopeAndInference(t *testing.T) {
	p := mustResolve(t, `
type spoon {
	num a
	tiny b
	func getSum() {
		return a + b
	}
}
`)
	getSum := p.ctx.LookupType("spoon").LocalFunctions("getSum").Overloads[0]
	require.Equal(t, "normal", getSum.ReturnType.Name)
	require.True(t, getSum.Inferred)
}

func TestForwardReferences(t *testing.T) {
	p := mustResolve(t, `
func run() {
	spoon s = new spoon()
	num total = s.sum(2)
	s.count = total
	point q = new point(s.count)
	goto end
	end:
}
type spoon {
	num count
	func sum(num x) {
		return count + helper(x)
	}
	num helper(num y) {
		return y * 2
	}
}
type point {
	large x
	init(num v) {
		x = v
	}
}
`)
	require.Equal(t,
		"Function run {"+
			"Assign(s, New(init())); "+
			"Assign(total, Link(s, sum(2))); "+
			"Assign(Link(s, count), total); "+
			"Assign(q, New(init(Link(s, count)))); "+
			"Jump end; Label end}",
		ast.Format(p.tree, p.tree.First(p.root)))
	sum := p.ctx.LookupType("spoon").LocalFunctions("sum").Overloads[0]
	require.Equal(t, "normal", sum.ReturnType.Name)
	require.Greater(t, p.r.Passes(), 1)
}

func TestChainedInference(t *testing.T) {
	p := mustResolve(t, `
func first() {
	return second() + 1
}
func second() {
	return third()
}
func third() {
	large value = 5
	return value
}
`)
	require.Equal(t, "large", function(p, "first").ReturnType.Name)
	require.Equal(t, "large", function(p, "second").ReturnType.Name)
}

func TestVarInference(t *testing.T) {
	p := mustResolve(t, "func run() {\nvar a = 5\nvar b = a + 1\n}")
	run := function(p, "run")
	require.Equal(t, "normal", run.LocalVariable("a").Type.Name)
	require.Equal(t, "normal", run.LocalVariable("b").Type.Name)
}

func TestUnknownNameReportedOnce(t *testing.T) {
	p, err := resolve(t, "func run() {\nnum a = 1\nmissing = a\n}")
	require.Error(t, err)
	errs := errors.Collect(err)
	require.Equal(t, 1, errs.Count())
	require.Equal(t, errors.UnknownName, errs.Errors[0].Code)
	require.Contains(t, errs.Errors[0].Message, "missing")
	// The walk stops once a pass makes no progress.
	require.LessOrEqual(t, p.r.Passes(), 3)
}

func TestUnknownNameSuggestions(t *testing.T) {
	_, err := resolve(t, "func run() {\nnum length = 1\nlenght = 2\n}")
	errs := errors.Collect(err)
	require.Equal(t, 1, errs.Count())
	require.NotEmpty(t, errs.Errors[0].Suggestions)
	require.Equal(t, "length", errs.Errors[0].Suggestions[0].Value)
}

func TestUnknownType(t *testing.T) {
	_, err := resolve(t, "func run() {\nwidget w\n}")
	require.True(t, errors.HasCode(err, errors.E2008))
}

func TestNoMatchingOverload(t *testing.T) {
	_, err := resolve(t, `
type spoon {
}
num add(num a, num b) {
	return a + b
}
func run() {
	spoon s = new spoon()
	num c = add(s, 1)
}
`)
	require.True(t, errors.HasCode(err, errors.NoMatchingOverload))
}

func TestIncompatibleReturn(t *testing.T) {
	_, err := resolve(t, `
type spoon {
}
num value() {
	spoon s = new spoon()
	return s
}
`)
	require.True(t, errors.HasCode(err, errors.IncompatibleTypes))
}

func TestUnknownLabel(t *testing.T) {
	_, err := resolve(t, "func run() {\ngoto nowhere\n}")
	require.True(t, errors.HasCode(err, errors.UnknownName))
}

func TestSupertypes(t *testing.T) {
	p := mustResolve(t, `
type animal {
	num legs
}
type dog : animal {
	num tail
}
func run() {
	dog d = new dog()
	d.legs = 4
}
`)
	dog := p.ctx.LookupType("dog")
	require.Same(t, p.ctx.LookupType("animal"), dog.Supertypes[0])
	require.Equal(t, 8, dog.ContentSize())
}

func TestAlign(t *testing.T) {
	p := mustResolve(t, `
type animal {
	num legs
}
type dog : animal {
	tiny age
	num tail
	func wag(num times, small speed) {
		num a = times
		tiny b = 1
		num c = 2
	}
}
num add(num x, num y) {
	return x + y
}
`)
	Align(p.ctx)
	dog := p.ctx.LookupType("dog")
	members := dog.Members()
	require.Equal(t, 4, members[0].Alignment)
	require.Equal(t, 5, members[1].Alignment)

	wag := dog.LocalFunctions("wag").Overloads[0]
	require.Equal(t, 4, wag.Parameters[0].Alignment)
	require.Equal(t, 8, wag.Parameters[1].Alignment)
	locals := wag.Locals()
	require.Equal(t, []int{0, 4, 5}, []int{locals[0].Alignment, locals[1].Alignment, locals[2].Alignment})
	require.Equal(t, 9, wag.LocalMemory())

	add := function(p, "add")
	require.Equal(t, 0, add.Parameters[0].Alignment)
	require.Equal(t, 4, add.Parameters[1].Alignment)
}
