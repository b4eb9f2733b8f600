package asm

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// DefaultEntry is the function the program starts in.
const DefaultEntry = "run"

// InitLabel is the function holding the top-level statements.
const InitLabel = "global_init"

// Assembler produces the assembly document of a resolved and aligned
// program.
type Assembler struct {
	tree   *ast.Tree
	logger zerolog.Logger
	entry  string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for per-function debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithEntry sets the name of the entry function.
func WithEntry(name string) Option {
	return func(a *Assembler) {
		a.entry = name
	}
}

// New returns an Assembler for the nodes of tree.
func New(tree *ast.Tree, opts ...Option) *Assembler {
	a := &Assembler{tree: tree, logger: zerolog.Nop(), entry: DefaultEntry}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Entry returns the entry function declared in ctx: a global function of
// the entry name without parameters.
func Entry(ctx *scope.Context, name string) (*scope.Function, error) {
	if fs := ctx.LocalFunctions(name); fs != nil {
		for _, f := range fs.Overloads {
			if len(f.Parameters) == 0 && !f.IsExternal() {
				return f, nil
			}
		}
	}
	return nil, errors.New(errors.E2007, token.NoPos, "there is no entry function '%s'", name).
		WithNote(fmt.Sprintf("declare it with 'func %s() { ... }'", name))
}

// Assemble lowers the program rooted at root, whose global scope is ctx.
func (a *Assembler) Assemble(root ast.ID, ctx *scope.Context) (string, error) {
	t := a.tree
	entry, err := Entry(ctx, a.entry)
	if err != nil {
		return "", err
	}
	strs := a.literals(root)

	var result *multierror.Error
	var text, externs strings.Builder
	var initBody []ast.ID
	for _, c := range t.Children(root) {
		switch n := t.Node(c).(type) {
		case *ast.TypeDecl, *ast.FuncDecl:
		case *ast.Var:
			if !n.Declaration {
				initBody = append(initBody, c)
			}
		default:
			initBody = append(initBody, c)
		}
	}

	for id := range t.Preorder(root) {
		decl, ok := t.Node(id).(*ast.FuncDecl)
		if !ok {
			continue
		}
		f := decl.Function
		if f.IsExternal() {
			fmt.Fprintf(&externs, "extern %s\n", f.FullName())
			continue
		}
		in, err := a.function(id, f)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		text.WriteString("\n")
		text.WriteString(in.String())
	}
	if len(initBody) > 0 {
		in, err := a.body(newUnit(t, nil, InitLabel, a.logger), initBody)
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			text.WriteString("\n")
			text.WriteString(frame(InitLabel, "Top-level statements", 0, in, nil, false).String())
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return "", err
	}

	var doc strings.Builder
	doc.WriteString("section .text\n")
	doc.WriteString("global _start\n")
	doc.WriteString("_start:\n")
	if len(initBody) > 0 {
		fmt.Fprintf(&doc, "call %s\n", InitLabel)
	}
	fmt.Fprintf(&doc, "call %s\n", entry.FullName())
	doc.WriteString("mov eax, 1\n")
	doc.WriteString("mov ebx, 0\n")
	doc.WriteString("int 80h\n\n")
	for _, f := range t.Builtins().Runtime() {
		fmt.Fprintf(&doc, "extern %s\n", f.FullName())
	}
	doc.WriteString(externs.String())
	doc.WriteString(text.String())
	doc.WriteString("\nsection .data\n")
	for _, v := range ctx.Variables() {
		if v.Category != scope.Global {
			continue
		}
		fmt.Fprintf(&doc, "%s %s 0\n", v.FullName(), SizeOf(v.Size()).Data())
	}
	for _, s := range strs {
		if s.Value == "" {
			fmt.Fprintf(&doc, "%s db 0\n", s.Label)
			continue
		}
		fmt.Fprintf(&doc, "%s db %s, 0\n", s.Label, quote(s.Value))
	}
	return doc.String(), nil
}

// literals gives every string literal a data label, in source order.
func (a *Assembler) literals(root ast.ID) []*ast.String {
	var out []*ast.String
	for id := range a.tree.Preorder(root) {
		if s, ok := a.tree.Node(id).(*ast.String); ok {
			s.Label = fmt.Sprintf("S%d", len(out)+1)
			out = append(out, s)
		}
	}
	return out
}

// quote renders a string for a db directive. Quotes can't be escaped
// inside a NASM string, so they are emitted as character codes.
func quote(s string) string {
	var parts []string
	for _, chunk := range strings.Split(s, "'") {
		if chunk != "" {
			parts = append(parts, "'"+chunk+"'")
		}
		parts = append(parts, "39")
	}
	return strings.Join(parts[:len(parts)-1], ", ")
}

func (a *Assembler) function(id ast.ID, f *scope.Function) (*Instructions, error) {
	u := newUnit(a.tree, f, f.FullName(), a.logger)
	body, err := a.body(u, a.tree.Children(id))
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("function", f.FullName()).
		Int("locals", f.LocalMemory()).
		Int("lines", body.Len()).
		Msg("assembled function")
	returns := false
	if last := a.tree.Last(id); last != ast.None {
		_, returns = a.tree.Node(last).(*ast.Return)
	}
	return frame(f.FullName(), describe(f), f.LocalMemory(), body, u, returns), nil
}

func (a *Assembler) body(u *Unit, statements []ast.ID) (*Instructions, error) {
	in := &Instructions{}
	var result *multierror.Error
	for _, id := range statements {
		out, err := u.assemble(id)
		if err != nil {
			result = multierror.Append(result, err)
			u.Reset()
			continue
		}
		in.Append(out)
		u.Step()
	}
	return in, result.ErrorOrNil()
}

// frame wraps a body into a function with the standard prologue and
// epilogue. A body that ends in a return already carries its epilogue.
func frame(label, comment string, locals int, body *Instructions, u *Unit, returns bool) *Instructions {
	in := &Instructions{}
	in.Comment(comment)
	in.Label(label)
	in.Raw("push ebp")
	in.Raw("mov ebp, esp")
	if locals > 0 {
		in.Raw("sub esp, %d", locals)
	}
	in.Append(body)
	if returns {
		return in
	}
	if u == nil {
		u = &Unit{}
	}
	u.epilogue(in)
	return in
}

func describe(f *scope.Function) string {
	owner := f.Owner()
	switch {
	case f.IsConstructor():
		return fmt.Sprintf("Constructor of type '%s'", owner.Name)
	case owner != nil:
		return fmt.Sprintf("Member function '%s' of type '%s'", f.Name, owner.Name)
	}
	return fmt.Sprintf("Represents global function '%s'", f.Name)
}
