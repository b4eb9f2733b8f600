package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func TestCompileErrorLocation(t *testing.T) {
	err := New(UnknownName, token.Position{Line: 2, Column: 4, File: "main.zz"}, "unknown name '%s'", "foo")
	require.Equal(t, "main.zz:3:5: unknown name 'foo'", err.Error())
	require.Equal(t, "main.zz:3:5", err.Location().String())
	require.False(t, err.IsFatal())

	dup := New(DuplicateDeclaration, token.Position{}, "variable 'a' already exists in this context")
	require.True(t, dup.IsFatal())
	require.Equal(t, "1:1: variable 'a' already exists in this context", dup.Error())
}

func TestFriendlyMessage(t *testing.T) {
	err := New(UnknownName, token.Position{Line: 0, Column: 9}, "unknown name 'cout'")
	err.SourceLine = "num a = cout + 1"
	err.WithSuggestions(Similar("cout", []string{"count", "amount", "c"}))

	msg := err.FriendlyErrorMessage()
	require.Contains(t, msg, "resolve error[E2002]: unknown name 'cout'")
	require.Contains(t, msg, "--> 1:10")
	require.Contains(t, msg, " 1 | num a = cout + 1")
	require.Contains(t, msg, "         ^")
	require.Contains(t, msg, "hint: did you mean 'count'?")
}

func TestFormatMultiple(t *testing.T) {
	errs := &CompileErrors{}
	errs.Add(New(E1001, token.Position{Line: 4}, "second"))
	errs.Add(New(E1001, token.Position{Line: 1}, "first"))
	errs.Sort()
	require.Equal(t, "first", errs.Errors[0].Message)

	out := errs.FriendlyErrorMessage()
	require.Contains(t, out, "[1/2 E1001]: first")
	require.Contains(t, out, "[2/2 E1001]: second")
	require.True(t, strings.HasSuffix(out, "found 2 errors\n"))
	require.Equal(t, "2:1: first (and 1 more errors)", errs.Error())
}

func TestCollect(t *testing.T) {
	var merr *multierror.Error
	merr = multierror.Append(merr, New(E2002, token.NoPos, "a"))
	merr = multierror.Append(merr, fmt.Errorf("wrapped: %w", New(E2004, token.NoPos, "b")))
	merr = multierror.Append(merr, fmt.Errorf("plain"))

	errs := Collect(merr)
	require.Equal(t, 3, errs.Count())
	require.Equal(t, E2004, errs.Errors[1].Code)
	require.Equal(t, E3003, errs.Errors[2].Code)
	require.True(t, HasCode(merr, E2002))
	require.False(t, HasCode(merr, E2001))
	require.Nil(t, Collect(nil).ToError())
}

func TestSimilar(t *testing.T) {
	tests := []struct {
		target     string
		candidates []string
		want       []string
	}{
		{"lenght", []string{"length", "len", "height"}, []string{"length", "height", "len"}},
		{"ab", []string{"abc", "xyz"}, []string{"abc"}},
		{"spoon", []string{"spoon", "Spoon"}, nil},
		{"getSun", []string{"getSum", "getSum", "setSum"}, []string{"getSum", "setSum"}},
	}
	for _, tt := range tests {
		var got []string
		for _, s := range Similar(tt.target, tt.candidates) {
			got = append(got, s.Value)
		}
		require.Equal(t, tt.want, got, tt.target)
	}
	require.Equal(t, "did you mean 'a'?", Hint([]Suggestion{{Value: "a"}}))
	require.Equal(t, "did you mean 'a', 'b' or 'c'?", Hint([]Suggestion{{Value: "a"}, {Value: "b"}, {Value: "c"}}))
	require.Empty(t, Hint(nil))
}
