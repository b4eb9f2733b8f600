package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tables := NewTables()
	for _, kw := range tables.Keywords() {
		require.Same(t, kw, tables.Keyword(kw.Name))
		// Keywords are case sensitive.
		require.Nil(t, tables.Keyword(strings.ToUpper(kw.Name)))
	}
	require.True(t, tables.Keyword("public").IsModifier())
	require.False(t, tables.Keyword("return").IsModifier())
}

func TestPosition(t *testing.T) {
	tok := Token{
		Kind:          Identifier,
		Literal:       "foo",
		StartPosition: Position{Line: 2, Column: 0},
	}
	// Switches to 1-indexed
	require.Equal(t, 3, tok.StartPosition.LineNumber())
	require.Equal(t, 1, tok.StartPosition.ColumnNumber())
	require.Equal(t, "a.zz:3:1", Position{Line: 2, File: "a.zz"}.String())
}

func TestOperatorTable(t *testing.T) {
	tables := NewTables()
	tests := []struct {
		symbol   string
		priority int
		category Category
	}{
		{"^", 15, Classic},
		{"*", 12, Classic},
		{"+", 11, Classic},
		{"<<", 10, Classic},
		{">", 9, Comparison},
		{"==", 8, Comparison},
		{"and", 7, Classic},
		{"&", 4, Logic},
		{"|", 3, Logic},
		{"=", 1, Action},
		{"+=", 1, Action},
		{"->", -1, Independent},
	}
	for _, tt := range tests {
		op := tables.Operator(tt.symbol)
		require.NotNil(t, op, tt.symbol)
		require.Equal(t, tt.priority, op.Priority, tt.symbol)
		require.Equal(t, tt.category, op.Category, tt.symbol)
	}
	require.Equal(t, "<=", tables.Operator(">").Counterpart.Symbol)
	require.Equal(t, ">=", tables.Operator("<").Counterpart.Symbol)
	require.Equal(t, "!=", tables.Operator("==").Counterpart.Symbol)
	require.Equal(t, "+", tables.Operator("+=").Base.Symbol)
	require.Equal(t, 3, tables.LongestSymbol())
}

func TestKindBits(t *testing.T) {
	k := Identifier | Number | Optional
	require.True(t, k.Has(Number))
	require.False(t, k.Has(Content))
	require.Equal(t, []Kind{Identifier, Number, Optional}, k.Bits())
	require.Equal(t, "identifier|number|optional", k.String())
	require.Equal(t, Dynamic, Processed)
}
