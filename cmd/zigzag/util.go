package main

import (
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/zigzag/compiler"
	"github.com/deepnoodle-ai/zigzag/errors"
)

var red = color.New(color.FgRed).SprintFunc()

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (a *app) useColor(w io.Writer) bool {
	return !a.v.GetBool("no-color") && isTerminal(w)
}

func newLogger(w io.Writer, level string, noColor bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %s", level)
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// readSources loads the named files and remembers their text for
// diagnostics.
func (a *app) readSources(paths []string) ([]compiler.Source, error) {
	sources := make([]compiler.Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		a.sources[path] = string(data)
		sources = append(sources, compiler.Source{Name: path, Text: string(data)})
	}
	return sources, nil
}

func (a *app) sourceLine(file string, line int) string {
	text, ok := a.sources[file]
	if !ok || line < 1 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

func isCompileError(err error) bool {
	var one *errors.CompileError
	var many *errors.CompileErrors
	var multi *multierror.Error
	return goerrors.As(err, &one) || goerrors.As(err, &many) || goerrors.As(err, &multi)
}

// report prints err to stderr. Compile errors are rendered with their source
// lines; anything else is printed as a single line.
func (a *app) report(err error) {
	if !isCompileError(err) {
		fmt.Fprintln(a.stderr, red(err.Error()))
		return
	}
	all := errors.Collect(err)
	all.Sort()
	for _, e := range all.Errors {
		if e.SourceLine == "" {
			e.SourceLine = a.sourceLine(e.Filename, e.Line)
		}
	}
	fmt.Fprint(a.stderr, all.Format(errors.NewFormatter(a.useColor(a.stderr))))
}
