package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/zigzag/internal/toolchain"
	"github.com/deepnoodle-ai/zigzag/internal/watch"
)

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <files...>",
		Short: "Compile source files into an executable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.v.GetBool("watch") {
				return a.build(cmd.Context(), args)
			}
			return a.watch(cmd.Context(), args)
		},
	}
	flags := cmd.Flags()
	flags.StringP("output", "o", "out", "output executable; the assembly goes to <output>.asm")
	flags.Bool("emit-asm-only", false, "stop after writing the assembly")
	flags.Bool("debug", false, "include debug information")
	flags.Bool("watch", false, "rebuild whenever a source file changes")
	flags.String("runtime", toolchain.DefaultRuntime, "runtime object file to link with")
	flags.String("assembler", toolchain.DefaultAssembler, "assembler command")
	flags.String("linker", toolchain.DefaultLinker, "linker command")
	return cmd
}

func (a *app) build(ctx context.Context, files []string) error {
	start := time.Now()
	sources, err := a.readSources(files)
	if err != nil {
		return err
	}
	text, err := a.compiler().Compile(ctx, sources...)
	if err != nil {
		return err
	}
	output := a.v.GetString("output")
	source := output + ".asm"
	if err := os.WriteFile(source, []byte(text), 0o644); err != nil {
		return err
	}
	if !a.v.GetBool("emit-asm-only") {
		tc := toolchain.New(
			toolchain.WithAssembler(a.v.GetString("assembler")),
			toolchain.WithLinker(a.v.GetString("linker")),
			toolchain.WithRuntime(a.v.GetString("runtime")),
			toolchain.WithDebug(a.v.GetBool("debug")),
			toolchain.WithLogger(a.logger),
		)
		if err := tc.Build(ctx, source, output); err != nil {
			return err
		}
	}
	a.logger.Info().
		Int("files", len(files)).
		Str("output", output).
		Dur("elapsed", time.Since(start)).
		Msg("built")
	return nil
}

func (a *app) watch(ctx context.Context, files []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	w, err := watch.New(files, watch.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer w.Close()

	rebuild := func(ctx context.Context) error {
		if err := a.build(ctx, files); err != nil {
			a.report(err)
			return nil
		}
		fmt.Fprintf(a.stdout, "built %s\n", a.v.GetString("output"))
		return nil
	}
	_ = rebuild(ctx)
	if err := w.Run(ctx, rebuild); err != nil && !goerrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
