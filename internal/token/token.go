// Package token defines the token kinds, operators and keywords produced by
// the lexer and consumed by the pattern parser.
package token

import (
	"fmt"
	"strings"
)

// Position points to a particular location in an input string.
type Position struct {
	Line   int    // 0-indexed line number
	Column int    // 0-indexed column number
	File   string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n characters on the same line.
func (p Position) Advance(n int) Position {
	return Position{Line: p.Line, Column: p.Column + n, File: p.File}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.LineNumber(), p.ColumnNumber())
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.LineNumber(), p.ColumnNumber())
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Kind is a bit set describing the type of a token. Pattern slots combine
// several kinds with a bitwise or.
type Kind uint16

const (
	Identifier Kind = 1 << iota
	Number
	Operator
	Content
	Keyword
	Function
	String
	Dynamic
	End
	// Optional marks a pattern slot that may be absent. It never appears on
	// a lexed token.
	Optional
)

// Processed tokens wrap nodes built by a reduction. They share the Dynamic
// bit, so a slot accepting one accepts the other.
const Processed = Dynamic

// Any matches every real token kind.
const Any = Identifier | Number | Operator | Content | Keyword | Function | String | Dynamic | End

var kindNames = []string{
	"identifier", "number", "operator", "content", "keyword",
	"function", "string", "dynamic", "end", "optional",
}

func (k Kind) String() string {
	var names []string
	for i, name := range kindNames {
		if k&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Has reports whether k shares at least one bit with other.
func (k Kind) Has(other Kind) bool {
	return k&other != 0
}

// Bits returns each single kind set in k, lowest bit first.
func (k Kind) Bits() []Kind {
	var out []Kind
	for i := range kindNames {
		if bit := Kind(1 << i); k&bit != 0 {
			out = append(out, bit)
		}
	}
	return out
}

// Paren identifies the bracket pair that delimits a content token.
type Paren byte

const (
	NoParen Paren = iota
	Parenthesis
	Brackets
	Braces
)

func (p Paren) Open() string {
	return [...]string{"", "(", "[", "{"}[p]
}

func (p Paren) Close() string {
	return [...]string{"", ")", "]", "}"}[p]
}

// Token represents one token lexed from the input source code.
type Token struct {
	Kind     Kind
	Literal  string
	Operator *OperatorInfo // set on Operator tokens
	Keyword  *KeywordInfo  // set on Keyword tokens
	Number   int64     // set on Number tokens
	Paren    Paren     // set on Content and Function tokens
	Sections [][]Token // comma separated sections of Content and Function tokens
	Node     int32     // set on Dynamic tokens, a handle into the syntax tree

	StartPosition Position
	EndPosition   Position
}

// IsEmpty reports whether a content token holds nothing but line breaks.
func (t Token) IsEmpty() bool {
	for _, section := range t.Sections {
		for _, tok := range section {
			if tok.Kind != End {
				return false
			}
		}
	}
	return true
}

// Flatten returns all tokens of the sections, dropping the separators.
func (t Token) Flatten() []Token {
	var out []Token
	for _, section := range t.Sections {
		out = append(out, section...)
	}
	return out
}

func (t Token) String() string {
	switch t.Kind {
	case Content:
		return t.Paren.Open() + "..." + t.Paren.Close()
	case Function:
		return t.Literal + "(...)"
	case End:
		return "\\n"
	case Dynamic:
		return fmt.Sprintf("<node %d>", t.Node)
	}
	return t.Literal
}
