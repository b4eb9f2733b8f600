package golden

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const document = "# Cases\n\nSome prose.\n\n" +
	"## Test: addition\n\n" +
	"```zz\nfunc run() {\n\tnum a = 1 + 2\n}\n```\n\n" +
	"```asm\nmov eax, 1\n\nadd eax, 2\n```\n\n" +
	"## Test: failure\n\n" +
	"```zz\nfunc run() {\n\tb = 1\n}\n```\n\n" +
	"```error\nunknown\n```\n"

func TestParse(t *testing.T) {
	cases, err := Parse([]byte(document))
	require.NoError(t, err)
	require.Len(t, cases, 2)

	require.Equal(t, "addition", cases[0].Name)
	require.Equal(t, "func run() {\n\tnum a = 1 + 2\n}\n", cases[0].Source)
	require.Len(t, cases[0].Assertions, 1)
	require.Equal(t, Assembly, cases[0].Assertions[0].Kind)
	require.Equal(t, []string{"mov eax, 1", "add eax, 2"}, cases[0].Assertions[0].Lines())

	require.Equal(t, "failure", cases[1].Name)
	require.Equal(t, Error, cases[1].Assertions[0].Kind)
	require.Equal(t, "unknown", cases[1].Assertions[0].Content)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		message  string
	}{
		{"no source", "## Test: a\n\n```asm\nret\n```\n", "has no zz fence"},
		{"no assertion", "## Test: a\n\n```zz\nx\n```\n", "has no assertions"},
		{"outside", "```zz\nx\n```\n", "outside of a test"},
		{"unknown fence", "## Test: a\n\n```zz\nx\n```\n\n```wat\ny\n```\n", "unknown fence 'wat'"},
		{"two sources", "## Test: a\n\n```zz\nx\n```\n\n```zz\ny\n```\n", "more than one zz fence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.markdown))
			require.ErrorContains(t, err, tt.message)
		})
	}
}

func TestSubsequence(t *testing.T) {
	lines := []string{"push ebp", "mov ebp, esp", "mov eax, 1", "add eax, 2", "ret"}
	require.Equal(t, "", Subsequence(lines, []string{"mov eax, 1", "ret"}))
	require.Equal(t, "mov eax, 1", Subsequence(lines, []string{"add eax, 2", "mov eax, 1"}))
	require.Equal(t, "", Subsequence(lines, nil))
}
