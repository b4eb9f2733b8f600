package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/hashicorp/go-multierror"
)

// CompileError represents a compilation error with rich context.
type CompileError struct {
	Code        ErrorCode
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int
	SourceLine  string
	Suggestions []Suggestion
	Note        string
}

// New creates an error at the given token position.
func New(code ErrorCode, pos token.Position, format string, args ...any) *CompileError {
	return &CompileError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Filename: pos.File,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
	}
}

// WithSuggestions attaches "did you mean" suggestions.
func (e *CompileError) WithSuggestions(s []Suggestion) *CompileError {
	e.Suggestions = s
	return e
}

// WithNote attaches a note.
func (e *CompileError) WithNote(note string) *CompileError {
	e.Note = note
	return e
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Filename != "" {
		b.WriteString(e.Filename)
		b.WriteString(":")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", e.Line, e.Column)
	} else if e.Filename != "" {
		b.WriteString(" ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// IsFatal reports whether another resolution pass cannot fix the error.
func (e *CompileError) IsFatal() bool {
	return !e.Code.Recoverable()
}

// Location returns the error's source location.
func (e *CompileError) Location() SourceLocation {
	return SourceLocation{Filename: e.Filename, Line: e.Line, Column: e.Column, Source: e.SourceLine}
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	formatted := e.ToFormatted()
	formatter := NewFormatter(false)
	return formatter.Format(formatted)
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     e.Code,
		Kind:     e.Code.Category() + " error",
		Message:  e.Message,
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Note:     e.Note,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	if len(e.Suggestions) > 0 {
		fe.Hint = Hint(e.Suggestions)
	}
	return fe
}

// CompileErrors holds multiple compile errors.
type CompileErrors struct {
	Errors []*CompileError
}

// Error implements the error interface.
func (e *CompileErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

// FriendlyErrorMessage returns a human-friendly error message for all errors.
func (e *CompileErrors) FriendlyErrorMessage() string {
	return e.Format(NewFormatter(false))
}

// Format renders every error with the given formatter.
func (e *CompileErrors) Format(f *Formatter) string {
	var formatted []*FormattedError
	for _, err := range e.Errors {
		formatted = append(formatted, err.ToFormatted())
	}
	return f.FormatMultiple(formatted)
}

// Add adds a compile error to the collection.
func (e *CompileErrors) Add(err *CompileError) {
	e.Errors = append(e.Errors, err)
}

// Count returns the number of errors.
func (e *CompileErrors) Count() int {
	return len(e.Errors)
}

// HasErrors returns true if there are any errors.
func (e *CompileErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Sort orders the errors by file and position.
func (e *CompileErrors) Sort() {
	sort.SliceStable(e.Errors, func(i, j int) bool {
		a, b := e.Errors[i], e.Errors[j]
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// ToError returns the errors as a single error, or nil if empty.
func (e *CompileErrors) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}

// Collect flattens err into compile errors. Multierror values and nested
// CompileErrors are expanded; foreign errors are wrapped without a position.
func Collect(err error) *CompileErrors {
	out := &CompileErrors{}
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		var multi *multierror.Error
		var many *CompileErrors
		var one *CompileError
		switch {
		case stderrors.As(err, &multi):
			for _, e := range multi.Errors {
				walk(e)
			}
		case stderrors.As(err, &many):
			out.Errors = append(out.Errors, many.Errors...)
		case stderrors.As(err, &one):
			out.Add(one)
		default:
			out.Add(&CompileError{Code: E3003, Message: err.Error()})
		}
	}
	walk(err)
	return out
}

// HasCode reports whether err holds a compile error with the given code.
func HasCode(err error, code ErrorCode) bool {
	for _, e := range Collect(err).Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}
