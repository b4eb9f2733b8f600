package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/zigzag/ast"
	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/golden"
)

func messages(err error) string {
	var out []string
	for _, e := range errors.Collect(err).Errors {
		out = append(out, e.Error())
	}
	return strings.Join(out, "\n")
}

func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.md")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	c := New(Config{})
	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".md"), func(t *testing.T) {
			content, err := os.ReadFile(file)
			require.NoError(t, err)
			cases, err := golden.Parse(content)
			require.NoError(t, err)

			for _, tc := range cases {
				t.Run(tc.Name, func(t *testing.T) {
					ctx := context.Background()
					src := Source{Name: "test.zz", Text: tc.Source}
					out, err := c.Compile(ctx, src)
					for _, a := range tc.Assertions {
						switch a.Kind {
						case golden.Error:
							require.Error(t, err)
							require.Contains(t, messages(err), a.Content)
						case golden.Assembly:
							require.NoError(t, err)
							missing := golden.Subsequence(strings.Split(out, "\n"), a.Lines())
							require.Empty(t, missing, "line %d: %q not found in order in:\n%s", a.Line, missing, out)
						case golden.Tree:
							program, err := c.Parse(ctx, src)
							require.NoError(t, err)
							require.NoError(t, c.Resolve(ctx, program))
							require.Equal(t, strings.TrimSpace(a.Content)+"\n", ast.Dump(program.Tree, program.Root))
						}
					}
				})
			}
		})
	}
}

func TestMultipleFiles(t *testing.T) {
	c := New(Config{Workers: 2})
	out, err := c.Compile(context.Background(),
		Source{Name: "main.zz", Text: "func run() {\n\tpoint p = new point()\n\tp.x = twice(4)\n}\n"},
		Source{Name: "point.zz", Text: "type point {\n\tnum x\n}\n"},
		Source{Name: "math.zz", Text: "func twice(num v) {\n\treturn v * 2\n}\n"},
	)
	require.NoError(t, err)
	require.Contains(t, out, "call function_twice\n")
	require.Contains(t, out, "function_twice:\n")
	require.Contains(t, out, "push 4\ncall function_allocate\n")
}

func TestErrorsFromEveryFile(t *testing.T) {
	c := New(Config{})
	_, err := c.Compile(context.Background(),
		Source{Name: "a.zz", Text: "func run() {\n\tnum x = [\n}\n"},
		Source{Name: "b.zz", Text: "num y = 1.5\n"},
	)
	require.Error(t, err)
	all := errors.Collect(err)
	require.Equal(t, 2, all.Count())
	require.Equal(t, "a.zz", all.Errors[0].Filename)
	require.Equal(t, "b.zz", all.Errors[1].Filename)
}

func TestDuplicateAcrossFiles(t *testing.T) {
	c := New(Config{})
	_, err := c.Compile(context.Background(),
		Source{Name: "a.zz", Text: "num shared = 1\nfunc run() {\n}\n"},
		Source{Name: "b.zz", Text: "num shared = 2\n"},
	)
	require.True(t, errors.HasCode(err, errors.E2001))
}

func TestEntry(t *testing.T) {
	c := New(Config{Entry: "main"})
	out, err := c.Compile(context.Background(), Source{Name: "a.zz", Text: "func main() {\n}\n"})
	require.NoError(t, err)
	require.Contains(t, out, "call function_main\n")

	_, err = New(Config{}).Compile(context.Background(), Source{Name: "a.zz", Text: "func main() {\n}\n"})
	require.True(t, errors.HasCode(err, errors.E2007))
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{}).Compile(ctx, Source{Name: "a.zz", Text: "func run() {\n}\n"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPasses(t *testing.T) {
	c := New(Config{})
	ctx := context.Background()
	program, err := c.Parse(ctx, Source{Name: "a.zz", Text: "func run() {\n\tnum a = later()\n}\nfunc later() {\n\treturn 1\n}\n"})
	require.NoError(t, err)
	require.NoError(t, c.Resolve(ctx, program))
	require.GreaterOrEqual(t, program.Passes, 1)
	require.Equal(t, "Function run {Assign(a, later())}\nFunction later {Return(1)}\n", ast.Dump(program.Tree, program.Root))
}
