// Package compiler drives a compilation: it tokenizes and parses every
// source file, merges them into one program, resolves it, lays out its
// memory and assembles it.
package compiler

import (
	"context"
	"runtime"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/deepnoodle-ai/zigzag/asm"
	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/internal/lexer"
	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/parser"
	"github.com/deepnoodle-ai/zigzag/resolver"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// Config configures a Compiler.
type Config struct {
	// Logger receives phase timings at debug level.
	Logger zerolog.Logger
	// Entry is the function the program starts in. Defaults to "run".
	Entry string
	// Workers limits how many files are parsed at once. Defaults to the
	// number of CPUs.
	Workers int
}

// Source is one source file.
type Source struct {
	Name string
	Text string
}

// Program is a parsed program: the merged tree of every file and the
// global scope.
type Program struct {
	Tree    *ast.Tree
	Root    ast.ID
	Context *scope.Context
	// Passes is the number of resolver passes, once resolved.
	Passes int
}

// Compiler compiles programs. It is safe for concurrent use.
type Compiler struct {
	cfg     Config
	tables  *token.Tables
	grammar *parser.Grammar
}

// New returns a Compiler.
func New(cfg Config) *Compiler {
	if cfg.Entry == "" {
		cfg.Entry = asm.DefaultEntry
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	tables := token.NewTables()
	return &Compiler{cfg: cfg, tables: tables, grammar: parser.NewGrammar(tables)}
}

// Tables returns the operator and keyword tables.
func (c *Compiler) Tables() *token.Tables { return c.tables }

// Tokenize lexes one source file.
func (c *Compiler) Tokenize(src Source) ([]token.Token, error) {
	return lexer.Tokenize(src.Text, lexer.WithFile(src.Name), lexer.WithTables(c.tables))
}

type parsed struct {
	tree *ast.Tree
	root ast.ID
	ctx  *scope.Context
	err  error
}

// Parse parses the sources concurrently, one tree and one global scope per
// file, and merges them in the order given.
func (c *Compiler) Parse(ctx context.Context, sources ...Source) (*Program, error) {
	start := time.Now()
	builtins := scope.NewBuiltins()
	results := make([]parsed, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.parseFile(builtins, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result *multierror.Error
	for _, r := range results {
		if r.err != nil {
			result = multierror.Append(result, r.err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	tree := ast.NewTree(builtins)
	program := &Program{Tree: tree, Root: tree.New(&ast.Block{}, token.NoPos), Context: builtins.Root()}
	for _, r := range results {
		if err := program.Context.Merge(r.ctx); err != nil {
			return nil, err
		}
		for _, child := range r.tree.Children(r.root) {
			tree.Graft(program.Root, r.tree, child)
		}
	}
	c.cfg.Logger.Debug().
		Int("files", len(sources)).
		Int("nodes", tree.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("parsed")
	return program, nil
}

func (c *Compiler) parseFile(builtins *scope.Builtins, src Source) parsed {
	tokens, err := c.Tokenize(src)
	if err != nil {
		return parsed{err: err}
	}
	tree := ast.NewTree(builtins)
	ctx := builtins.Root()
	p := parser.New(c.grammar, tree, parser.WithLogger(c.cfg.Logger.With().Str("file", src.Name).Logger()))
	root, err := p.File(ctx, tokens)
	return parsed{tree: tree, root: root, ctx: ctx, err: err}
}

// Resolve resolves every placeholder of the program and assigns the
// memory layout.
func (c *Compiler) Resolve(ctx context.Context, program *Program) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	r := resolver.New(program.Tree, resolver.WithLogger(c.cfg.Logger))
	err := r.Resolve(program.Root, program.Context)
	program.Passes = r.Passes()
	if err != nil {
		return err
	}
	resolver.Align(program.Context)
	c.cfg.Logger.Debug().
		Int("passes", program.Passes).
		Dur("elapsed", time.Since(start)).
		Msg("resolved")
	return nil
}

// Assemble produces the assembly document of a resolved program.
func (c *Compiler) Assemble(ctx context.Context, program *Program) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	a := asm.New(program.Tree, asm.WithLogger(c.cfg.Logger), asm.WithEntry(c.cfg.Entry))
	out, err := a.Assemble(program.Root, program.Context)
	if err != nil {
		return "", err
	}
	c.cfg.Logger.Debug().
		Int("bytes", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("assembled")
	return out, nil
}

// Compile runs every phase and returns the assembly document.
func (c *Compiler) Compile(ctx context.Context, sources ...Source) (string, error) {
	program, err := c.Parse(ctx, sources...)
	if err != nil {
		return "", err
	}
	if _, err := asm.Entry(program.Context, c.cfg.Entry); err != nil {
		return "", err
	}
	if err := c.Resolve(ctx, program); err != nil {
		return "", err
	}
	return c.Assemble(ctx, program)
}
