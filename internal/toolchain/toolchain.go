// Package toolchain drives the external assembler and linker that turn the
// generated assembly into an i386 ELF executable.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultAssembler = "yasm"
	DefaultLinker    = "ld"
	DefaultRuntime   = "libz.o"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Toolchain holds the commands used to assemble and link one program.
type Toolchain struct {
	assembler string
	linker    string
	runtime   string
	debug     bool
	run       Runner
	logger    zerolog.Logger
}

type Option func(*Toolchain)

func WithAssembler(name string) Option { return func(t *Toolchain) { t.assembler = name } }
func WithLinker(name string) Option    { return func(t *Toolchain) { t.linker = name } }

// WithRuntime sets the object file linked next to the program. An empty path
// links the program alone.
func WithRuntime(path string) Option { return func(t *Toolchain) { t.runtime = path } }

// WithDebug makes the assembler emit DWARF debug information.
func WithDebug(debug bool) Option { return func(t *Toolchain) { t.debug = debug } }

func WithRunner(r Runner) Option { return func(t *Toolchain) { t.run = r } }

func WithLogger(l zerolog.Logger) Option { return func(t *Toolchain) { t.logger = l } }

func New(opts ...Option) *Toolchain {
	t := &Toolchain{
		assembler: DefaultAssembler,
		linker:    DefaultLinker,
		runtime:   DefaultRuntime,
		run:       execRunner,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AssembleArgs returns the assembler arguments for turning source into object.
func (t *Toolchain) AssembleArgs(source, object string) []string {
	args := []string{"-f", "elf32"}
	if t.debug {
		args = append(args, "-g", "dwarf2")
	}
	return append(args, "-o", object, source)
}

// LinkArgs returns the linker arguments for turning object into output.
func (t *Toolchain) LinkArgs(object, output string) []string {
	args := []string{"-m", "elf_i386", "-o", output, object}
	if t.runtime != "" {
		args = append(args, t.runtime)
	}
	return args
}

// Build assembles source into output.o and links it into output.
func (t *Toolchain) Build(ctx context.Context, source, output string) error {
	object := output + ".o"
	if err := t.exec(ctx, t.assembler, t.AssembleArgs(source, object)); err != nil {
		return err
	}
	return t.exec(ctx, t.linker, t.LinkArgs(object, output))
}

func (t *Toolchain) exec(ctx context.Context, name string, args []string) error {
	start := time.Now()
	out, err := t.run(ctx, name, args...)
	t.logger.Debug().
		Str("command", name).
		Strs("args", args).
		Dur("elapsed", time.Since(start)).
		Msg("toolchain")
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s failed: %w\n%s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
