// Package lexer turns source text into the nested token stream consumed by
// the pattern parser.
package lexer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/deepnoodle-ai/zigzag/errors"
	"github.com/deepnoodle-ai/zigzag/internal/token"
)

const operatorChars = "!$%&*+,-./:;<=>?@^|~"

// Lexer tokenizes one source file.
type Lexer struct {
	input  []rune
	pos    int
	line   int
	column int
	file   string
	tables *token.Tables
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFile sets the filename recorded on token positions.
func WithFile(name string) Option {
	return func(l *Lexer) { l.file = name }
}

// WithTables shares operator and keyword tables built elsewhere.
func WithTables(t *token.Tables) Option {
	return func(l *Lexer) { l.tables = t }
}

// New returns a lexer for the given input.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{input: []rune(input)}
	for _, opt := range opts {
		opt(l)
	}
	if l.tables == nil {
		l.tables = token.NewTables()
	}
	return l
}

// Tokenize is shorthand for New(input, opts...).Tokens().
func Tokenize(input string, opts ...Option) ([]token.Token, error) {
	return New(input, opts...).Tokens()
}

// Tokens reads the remaining input. Content groups are tokenized
// recursively and identifiers followed by a parenthesis group are folded
// into function tokens.
func (l *Lexer) Tokens() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.Operator && tok.Literal == "," {
			return nil, errors.New(errors.UnexpectedToken, tok.StartPosition, "unexpected ',' outside of a group")
		}
		tokens = append(tokens, tok)
	}
	return fold(tokens)
}

// Next returns the next token, or io.EOF once the input is exhausted.
func (l *Lexer) Next() (token.Token, error) {
	l.skipBlanks()
	if l.pos >= len(l.input) {
		return token.Token{}, io.EOF
	}
	start := l.position()
	ch := l.input[l.pos]
	switch {
	case ch == '\n':
		l.advance()
		for {
			l.skipBlanks()
			if l.peek() != '\n' {
				break
			}
			l.advance()
		}
		return l.finish(token.Token{Kind: token.End, Literal: "\n"}, start), nil
	case ch == '\'':
		return l.readString(start)
	case ch == '(' || ch == '[' || ch == '{':
		return l.readGroup(start)
	case ch == ')' || ch == ']' || ch == '}':
		return token.Token{}, errors.New(errors.UnexpectedToken, start, "unexpected '%c'", ch)
	case isLetter(ch):
		return l.readWord(start), nil
	case unicode.IsDigit(ch):
		return l.readNumber(start)
	case strings.ContainsRune(operatorChars, ch):
		return l.readOperator(start)
	}
	return token.Token{}, errors.New(errors.UnexpectedToken, start, "unexpected character '%c'", ch)
}

func (l *Lexer) skipBlanks() {
	for l.pos < len(l.input) {
		switch ch := l.input[l.pos]; {
		case ch == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}
		case ch != '\n' && unicode.IsSpace(ch):
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.column, File: l.file}
}

func (l *Lexer) finish(tok token.Token, start token.Position) token.Token {
	tok.StartPosition = start
	tok.EndPosition = l.position()
	return tok
}

func (l *Lexer) readWord(start token.Position) token.Token {
	from := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || unicode.IsDigit(l.input[l.pos])) {
		l.advance()
	}
	word := string(l.input[from:l.pos])
	tok := token.Token{Kind: token.Identifier, Literal: word}
	if op := l.tables.Operator(word); op != nil {
		tok.Kind, tok.Operator = token.Operator, op
	} else if kw := l.tables.Keyword(word); kw != nil {
		tok.Kind, tok.Keyword = token.Keyword, kw
	}
	return l.finish(tok, start)
}

func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	from := l.pos
	for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
		l.advance()
	}
	text := string(l.input[from:l.pos])
	if l.peek() == '.' {
		return token.Token{}, errors.New(errors.E1005, start, "decimal number '%s.' is not supported", text)
	}
	if isLetter(l.peek()) {
		return token.Token{}, errors.New(errors.E1005, start, "invalid number '%s%c'", text, l.peek())
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token.Token{}, errors.New(errors.E1005, start, "number '%s' is out of range", text)
	}
	return l.finish(token.Token{Kind: token.Number, Literal: text, Number: value}, start), nil
}

func (l *Lexer) readOperator(start token.Position) (token.Token, error) {
	from := l.pos
	end := from
	for end < len(l.input) && strings.ContainsRune(operatorChars, l.input[end]) {
		end++
	}
	run := string(l.input[from:end])
	for n := min(len(run), l.tables.LongestSymbol()); n > 0; n-- {
		if op := l.tables.Operator(run[:n]); op != nil {
			for i := 0; i < n; i++ {
				l.advance()
			}
			return l.finish(token.Token{Kind: token.Operator, Literal: op.Symbol, Operator: op}, start), nil
		}
	}
	return token.Token{}, errors.New(errors.E1002, start, "unknown operator '%s'", run)
}

func (l *Lexer) readString(start token.Position) (token.Token, error) {
	l.advance()
	from := l.pos
	for {
		if l.pos >= len(l.input) || l.input[l.pos] == '\n' {
			return token.Token{}, errors.New(errors.E1003, start, "unterminated string")
		}
		if l.input[l.pos] == '\'' {
			break
		}
		l.advance()
	}
	text := string(l.input[from:l.pos])
	l.advance()
	return l.finish(token.Token{Kind: token.String, Literal: text}, start), nil
}

// readGroup reads a bracketed group, splitting its contents into sections
// at top-level commas.
func (l *Lexer) readGroup(start token.Position) (token.Token, error) {
	open := l.input[l.pos]
	paren, closer := token.Parenthesis, ')'
	switch open {
	case '[':
		paren, closer = token.Brackets, ']'
	case '{':
		paren, closer = token.Braces, '}'
	}
	l.advance()

	sections := [][]token.Token{nil}
	for {
		l.skipBlanks()
		if l.pos >= len(l.input) {
			return token.Token{}, errors.New(errors.MalformedContent, start, "couldn't find closing parenthesis for '%c'", open)
		}
		if l.input[l.pos] == closer {
			l.advance()
			break
		}
		tok, err := l.Next()
		if err != nil {
			return token.Token{}, err
		}
		if tok.Kind == token.Operator && tok.Literal == "," {
			sections = append(sections, nil)
			continue
		}
		last := len(sections) - 1
		sections[last] = append(sections[last], tok)
	}

	for i, section := range sections {
		folded, err := fold(section)
		if err != nil {
			return token.Token{}, err
		}
		sections[i] = folded
	}
	if len(sections) == 1 && len(sections[0]) == 0 {
		sections = nil
	}
	literal := paren.Open() + paren.Close()
	return l.finish(token.Token{Kind: token.Content, Literal: literal, Paren: paren, Sections: sections}, start), nil
}

// fold merges identifiers with a following parenthesis group into function
// tokens.
func fold(tokens []token.Token) ([]token.Token, error) {
	out := tokens[:0:0]
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if i+1 < len(tokens) {
			next := tokens[i+1]
			if next.Kind == token.Content && next.Paren == token.Parenthesis {
				switch tok.Kind {
				case token.Identifier:
					tok.Kind = token.Function
					tok.Paren = token.Parenthesis
					tok.Sections = next.Sections
					tok.EndPosition = next.EndPosition
					i++
				case token.Number:
					return nil, errors.New(errors.UnexpectedToken, next.StartPosition, "missing operator between number and parenthesis")
				}
			}
		}
		out = append(out, tok)
	}
	return out, nil
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

// Dump renders tokens one per line, indenting the sections of groups.
func Dump(w io.Writer, tokens []token.Token) {
	dump(w, tokens, 0)
}

func dump(w io.Writer, tokens []token.Token, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, tok := range tokens {
		fmt.Fprintf(w, "%s%s %s %q\n", indent, tok.StartPosition, tok.Kind, tok.Literal)
		for i, section := range tok.Sections {
			if i > 0 {
				fmt.Fprintf(w, "%s  ,\n", indent)
			}
			dump(w, section, depth+1)
		}
	}
}
