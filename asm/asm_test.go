package asm

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/lexer"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/parser"
	"github.com/deepnoodle-ai/zigzag/resolver"
	"github.com/deepnoodle-ai/zigzag/scope"
)

var grammar = parser.NewGrammar(token.NewTables())

func assemble(t *testing.T, input string) (string, error) {
	t.Helper()
	tokens, err := lexer.Tokenize(input, lexer.WithFile("test.zz"), lexer.WithTables(grammar.Tables()))
	require.NoError(t, err)
	builtins := scope.NewBuiltins()
	tree := ast.NewTree(builtins)
	ctx := builtins.Root()
	root, err := parser.New(grammar, tree).File(ctx, tokens)
	require.NoError(t, err)
	require.NoError(t, resolver.New(tree).Resolve(root, ctx))
	resolver.Align(ctx)
	return New(tree).Assemble(root, ctx)
}

func mustAssemble(t *testing.T, input string) string {
	t.Helper()
	out, err := assemble(t, input)
	require.NoError(t, err)
	return out
}

// body returns the lines of a function between its prologue and its
// final epilogue.
func body(t *testing.T, doc, label string) []string {
	t.Helper()
	lines := strings.Split(doc, "\n")
	start := -1
	for i, line := range lines {
		if line == label+":" {
			start = i + 1
			break
		}
	}
	require.NotEqual(t, -1, start, "function %s not found", label)
	var out []string
	for _, line := range lines[start:] {
		if line == "" {
			break
		}
		out = append(out, line)
	}
	require.GreaterOrEqual(t, len(out), 5)
	// Drop "push ebp", "mov ebp, esp" and the three epilogue lines.
	out = out[2 : len(out)-3]
	if len(out) > 0 && strings.HasPrefix(out[0], "sub esp,") {
		out = out[1:]
	}
	return out
}

func TestEmit(t *testing.T) {
	local := &MemoryRef{Base: EBP, Offset: -4, Size: Dword}
	member := &MemoryRef{Base: EBX, Offset: 4, Size: Byte}
	eax := &RegisterRef{Reg: EAX, Size: Dword}

	in := &Instructions{}
	in.Emit("mov", Dword, local, eax)
	in.Emit("add", Dword, eax, local)
	in.Emit("mov", Byte, member, eax)
	in.Emit("push", Dword, local)
	in.Emit("push", Dword, &NumberRef{Value: 7})
	in.Emit("cmp", Dword, eax, &NumberRef{Value: -1})
	in.Emit("push", Dword, &LabelRef{Name: "S1", Address: true})
	in.Emit("mov", Word, &LabelRef{Name: "global_a", Size: Word}, eax)
	require.Equal(t, []string{
		"mov dword [ebp-4], eax",
		"add eax, dword [ebp-4]",
		"mov byte [ebx+4], al",
		"push dword [ebp-4]",
		"push 7",
		"cmp eax, -1",
		"push S1",
		"mov word [global_a], ax",
	}, in.Lines())
}

func TestSizes(t *testing.T) {
	tests := []struct {
		bytes int
		size  Size
		name  string
		data  string
	}{
		{1, Byte, "byte", "db"},
		{2, Word, "word", "dw"},
		{4, Dword, "dword", "dd"},
		{8, Qword, "qword", "dq"},
		{3, Dword, "dword", "dd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SizeOf(tt.bytes)
			require.Equal(t, tt.size, s)
			require.Equal(t, tt.name, s.String())
			require.Equal(t, tt.data, s.Data())
		})
	}
	require.Equal(t, Dword, operandSize(8))
	require.Equal(t, "si", ESI.Name(Word))
	require.Equal(t, "esi", ESI.Name(Byte))
	require.Equal(t, "dl", EDX.Name(Byte))
	require.True(t, EDX.HasByte())
	require.False(t, EDI.HasByte())
}

func TestUnitAllocation(t *testing.T) {
	u := newUnit(nil, nil, "test", nullLogger)
	op := newValue(Operation, Dword)
	u.attach(EAX, op)
	require.Equal(t, EBX, u.next())

	// A critical value is relocated, keeping its identity.
	in, err := u.clear(EAX, true)
	require.NoError(t, err)
	require.Equal(t, []string{"mov ebx, eax", "xor eax, eax"}, in.Lines())
	require.Equal(t, EBX, op.Reg())
	require.Same(t, op, u.Value(EBX))
	require.True(t, u.IsAvailable(EAX))

	// Reading a disposable value frees its register.
	require.Equal(t, "ebx", op.Use(Dword))
	require.True(t, u.IsAvailable(EBX))

	// Floating values stay cached but stop being critical.
	num := newValue(Number, Dword)
	u.attach(ECX, num)
	require.True(t, u.IsCritical(ECX))
	num.Use(Dword)
	require.False(t, u.IsCritical(ECX))
	require.Same(t, num, u.Value(ECX))

	u.Reset()
	for r := Reg(0); r < bankSize; r++ {
		require.True(t, u.IsAvailable(r))
	}
}

func TestByteStoreLeavesIndexRegisters(t *testing.T) {
	u := newUnit(nil, nil, "f", nullLogger)
	u.attach(EAX, newValue(Operation, Dword))
	u.attach(EBX, newValue(Operation, Dword))
	stale := newValue(Number, Dword)
	u.attach(ECX, stale)
	stale.Use(Dword)
	value := newValue(Operation, Dword)
	u.attach(ESI, value)
	dst := &MemoryRef{Base: EDX, Offset: 4, Size: Byte}

	in, err := u.byteSource(value, dst)
	require.NoError(t, err)
	require.Equal(t, []string{"mov ecx, esi"}, in.Lines())
	require.Equal(t, ECX, value.Reg())
	require.True(t, u.IsAvailable(ESI))

	in.Emit("mov", dst.Width(), dst, value)
	require.Equal(t, "mov byte [edx+4], cl", in.Lines()[1])

	// Dword stores and byte registers need no move.
	other := newValue(Operation, Dword)
	u.attach(EDI, other)
	moved, err := u.byteSource(other, &MemoryRef{Base: EBP, Offset: -4, Size: Dword})
	require.NoError(t, err)
	require.Nil(t, moved)
	moved, err = u.byteSource(u.Value(EAX), dst)
	require.NoError(t, err)
	require.Nil(t, moved)
}

func TestCloneIsolatesBranches(t *testing.T) {
	u := newUnit(nil, nil, "f", nullLogger)
	v := newValue(VariableKind, Dword)
	u.attach(EAX, v)
	c := u.Clone()
	c.Reset()
	require.Same(t, v, u.Value(EAX))
	require.Equal(t, "f_L1", c.Label())
	require.Equal(t, "f_L2", u.Label())
	require.Equal(t, "f_L3", c.Clone().Label())
}

func TestEvacuationRestoresValues(t *testing.T) {
	u := newUnit(nil, nil, "f", nullLogger)
	a, b := newValue(Operation, Dword), newValue(Operation, Dword)
	u.attach(EAX, a)
	u.attach(ECX, b)
	in, e := u.evacuate()
	require.Equal(t, []string{"push eax", "push ecx"}, in.Lines())
	require.Equal(t, 8, e.Size())

	u.Reset()
	u.attach(EAX, newValue(Operation, Dword))
	out, err := e.Restore(u)
	require.NoError(t, err)
	require.Equal(t, []string{"pop ecx", "pop ebx"}, out.Lines())
	require.Equal(t, EBX, a.Reg())
	require.Same(t, a, u.Value(EBX))
	require.Same(t, b, u.Value(ECX))
}

func TestNestedCallEvacuation(t *testing.T) {
	doc := mustAssemble(t, `
func add(num a, num b) {
	return a + b
}
func run() {
	num r = add(1, 2) * add(3, 4)
}
`)
	require.Equal(t, []string{
		"push 4",
		"push 3",
		"call function_add",
		"add esp, 8",
		"push eax",
		"push 2",
		"push 1",
		"call function_add",
		"add esp, 8",
		"pop ebx",
		"imul eax, ebx",
		"mov dword [ebp-4], eax",
	}, body(t, doc, "function_run"))

	require.Equal(t, []string{
		"mov eax, dword [ebp+8]",
		"add eax, dword [ebp+12]",
	}, body(t, doc, "function_add"))
}

var conditionalJump = regexp.MustCompile(`^j(g|ge|l|le|e|ne) `)

func TestIfChain(t *testing.T) {
	doc := mustAssemble(t, `
func run() {
	num a = 1
	num b = 0
	if (a > 2) {
		b = 1
	} else if (a < 0) {
		b = 2
	} else {
		b = 3
	}
}
`)
	lines := body(t, doc, "function_run")
	require.Equal(t, []string{
		"mov dword [ebp-4], 1",
		"mov dword [ebp-8], 0",
		"mov eax, dword [ebp-4]",
		"cmp eax, 2",
		"jle function_run_L2",
		"mov dword [ebp-8], 1",
		"jmp function_run_L1",
		"function_run_L2:",
		"cmp eax, 0",
		"jge function_run_L3",
		"mov dword [ebp-8], 2",
		"jmp function_run_L1",
		"function_run_L3:",
		"mov dword [ebp-8], 3",
		"function_run_L1:",
	}, lines)

	var jumps, exits, ends int
	for _, line := range lines {
		switch {
		case conditionalJump.MatchString(line):
			jumps++
		case line == "jmp function_run_L1":
			exits++
		case line == "function_run_L1:":
			ends++
		}
	}
	require.Equal(t, 2, jumps)
	require.Equal(t, 2, exits)
	require.Equal(t, 1, ends)
}

func TestLoops(t *testing.T) {
	doc := mustAssemble(t, `
func run() {
	num s = 0
	loop (num i = 0, i < 10, i += 1) {
		s += i
	}
	loop {
		goto done
	}
	done:
}
`)
	require.Equal(t, []string{
		"mov dword [ebp-4], 0",
		"mov dword [ebp-8], 0",
		"function_run_L1:",
		"mov eax, dword [ebp-8]",
		"cmp eax, 10",
		"jge function_run_L2",
		"mov ebx, dword [ebp-4]",
		"add ebx, eax",
		"mov dword [ebp-4], ebx",
		"add eax, 1",
		"mov dword [ebp-8], eax",
		"jmp function_run_L1",
		"function_run_L2:",
		"function_run_L3:",
		"jmp function_run_done",
		"jmp function_run_L3",
		"function_run_done:",
	}, body(t, doc, "function_run"))
}

// depth follows the stack pointer through a function body.
func depth(t *testing.T, lines []string) {
	t.Helper()
	level := 0
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "push "):
			level += 4
		case line == "pop ebp":
			// restores the caller's frame at a return
		case strings.HasPrefix(line, "pop "):
			level -= 4
		case strings.HasPrefix(line, "add esp, "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "add esp, "))
			require.NoError(t, err)
			level -= n
		case line == "mov esp, ebp":
			require.Equal(t, 0, level, "stack is unbalanced at a return")
		}
		require.GreaterOrEqual(t, level, 0, line)
	}
	require.Equal(t, 0, level)
}

func TestStackBalance(t *testing.T) {
	doc := mustAssemble(t, `
type point {
	num x
	num y
	init(num a, num b) {
		x = a
		y = b
	}
	func sum(num extra) {
		return x + y + extra
	}
}
func twice(num v) {
	return v * 2
}
func run() {
	point p = new point(1, 2)
	num a = twice(p.sum(twice(3)) + twice(4)) - twice(5)
	num b = a ^ 3
	num c = b / twice(a) % 7
	if (a > b & (b < c | c == 0)) {
		return twice(a) + twice(b)
	}
	return c
}
`)
	for _, label := range []string{"function_run", "function_twice", "type_point_function_sum", "type_point_constructor"} {
		depth(t, body(t, doc, label))
	}
}

func TestTrailingReturnEndsFunction(t *testing.T) {
	doc := mustAssemble(t, "func twice(num v) {\nreturn v * 2\n}\nfunc run() {\nnum a = twice(3)\n}")
	require.Contains(t, doc, "function_twice:\npush ebp\nmov ebp, esp\n"+
		"mov eax, dword [ebp+8]\nimul eax, 2\nmov esp, ebp\npop ebp\nret\n\n")
	require.Contains(t, doc, "call function_twice\nadd esp, 4\nmov dword [ebp-4], eax\nmov esp, ebp\npop ebp\nret\n")
	require.Equal(t, 2, strings.Count(doc, "\nret\n"))
}

func TestMembers(t *testing.T) {
	doc := mustAssemble(t, `
type counter {
	num count
	tiny step
	func bump() {
		count += step
		return count
	}
}
func run() {
	counter c = new counter()
	c.count = 5
	num n = c.bump()
}
`)
	require.Equal(t, []string{
		"mov esi, [ebp+8]",
		"mov eax, dword [esi]",
		"movsx ebx, byte [esi+4]",
		"add eax, ebx",
		"mov dword [esi], eax",
	}, body(t, doc, "type_counter_function_bump"))

	require.Equal(t, []string{
		"push 5",
		"call function_allocate",
		"add esp, 4",
		"mov dword [ebp-4], eax",
		"mov dword [eax], 5",
		"push eax",
		"call type_counter_function_bump",
		"add esp, 4",
		"mov dword [ebp-8], eax",
	}, body(t, doc, "function_run"))
}

func TestDocument(t *testing.T) {
	doc := mustAssemble(t, `
import func print(link text)
num total = 2 + 3
func run() {
	print('hi')
	print('bye')
}
`)
	require.True(t, strings.HasPrefix(doc, "section .text\nglobal _start\n_start:\ncall global_init\ncall function_run\nmov eax, 1\nmov ebx, 0\nint 80h\n"))
	require.Contains(t, doc, "extern function_allocate\nextern function_integer_power\nextern function_print\n")
	require.Contains(t, doc, "\nsection .data\nglobal_total dd 0\nS1 db 'hi', 0\nS2 db 'bye', 0\n")
	require.Equal(t, []string{
		"mov eax, 2",
		"add eax, 3",
		"mov dword [global_total], eax",
	}, body(t, doc, "global_init"))
	require.Equal(t, []string{"push S1", "call function_print", "add esp, 4"}, body(t, doc, "function_run")[:3])
}

func TestQuote(t *testing.T) {
	require.Equal(t, "'hi'", quote("hi"))
	require.Equal(t, "'it', 39, 's'", quote("it's"))
	require.Equal(t, "39", quote("'"))
}

func TestDivision(t *testing.T) {
	doc := mustAssemble(t, `
func run() {
	num a = 7
	num q = a / 2
	num m = a % 3
}
`)
	require.Equal(t, []string{
		"mov dword [ebp-4], 7",
		"mov eax, dword [ebp-4]",
		"mov ebx, 2",
		"cdq",
		"idiv ebx",
		"mov dword [ebp-8], eax",
		"mov ebx, dword [ebp-4]",
		"mov eax, ebx",
	}, body(t, doc, "function_run")[:8])
}

func TestMissingEntry(t *testing.T) {
	_, err := assemble(t, "func main() {\n}")
	require.True(t, errors.HasCode(err, errors.E2007))
}
