package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors with optional colors.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError     = color.New(color.FgRed)
	colorErrorBold = color.New(color.FgHiRed, color.Bold)
	colorCode      = color.New(color.FgHiBlack)
	colorLocation  = color.New(color.FgCyan)
	colorGutter    = color.New(color.FgHiBlack)
	colorSource    = color.New(color.FgWhite)
	colorCaret     = color.New(color.FgHiRed)
	colorHint      = color.New(color.FgHiYellow)
	colorNote      = color.New(color.FgHiBlue)
)

// FormattedError represents an error ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "error", "parse error", "resolve error", etc.
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int               // For multi-character underlines
	SourceLines []SourceLineEntry // Multiple lines for context
	Hint        string            // "Did you mean?" suggestion
	Note        string
}

// SourceLineEntry represents a line of source code with its number.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool // True if this is the line with the error
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Format formats the error as a string.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix formats the error with an optional prefix like "1/5".
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder

	width := 2
	if err.Line >= 100 {
		width = len(fmt.Sprintf("%d", err.Line))
	}
	gutter := strings.Repeat(" ", width)

	// error[E2002]: message
	label := "error"
	if err.Kind != "" {
		label = err.Kind
	}
	b.WriteString(f.paint(colorErrorBold, label))
	switch {
	case prefix != "" && err.Code != "":
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s %s]", prefix, err.Code)))
	case err.Code != "":
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", err.Code)))
	case prefix != "":
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", prefix)))
	}
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")

	//   --> file.zz:10:5
	if err.Line > 0 || err.Filename != "" {
		loc := err.Filename
		if err.Line > 0 {
			if loc != "" {
				loc += ":"
			}
			loc += fmt.Sprintf("%d:%d", err.Line, err.Column)
		}
		b.WriteString(gutter)
		b.WriteString(f.paint(colorLocation, "--> "+loc))
		b.WriteString("\n")
	}

	if len(err.SourceLines) > 0 {
		b.WriteString(gutter)
		b.WriteString(f.paint(colorGutter, " |\n"))
		for _, line := range err.SourceLines {
			b.WriteString(f.paint(colorGutter, fmt.Sprintf("%*d | ", width, line.Number)))
			b.WriteString(f.paint(colorSource, line.Text))
			b.WriteString("\n")
			if !line.IsMain || err.Column <= 0 {
				continue
			}
			carets := 1
			if err.EndColumn > err.Column {
				carets = err.EndColumn - err.Column + 1
			}
			b.WriteString(gutter)
			b.WriteString(f.paint(colorGutter, " | "))
			b.WriteString(strings.Repeat(" ", err.Column-1))
			b.WriteString(f.paint(colorCaret, strings.Repeat("^", carets)))
			b.WriteString("\n")
		}
	}

	if err.Hint != "" {
		b.WriteString(gutter)
		b.WriteString(f.paint(colorGutter, " = "))
		b.WriteString(f.paint(colorHint, "hint: "))
		b.WriteString(err.Hint)
		b.WriteString("\n")
	}
	if err.Note != "" {
		b.WriteString(gutter)
		b.WriteString(f.paint(colorGutter, " = "))
		b.WriteString(f.paint(colorNote, "note: "))
		b.WriteString(err.Note)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatMultiple formats multiple errors followed by a summary line.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return f.Format(errs[0])
	}
	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, len(errs))))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorErrorBold, fmt.Sprintf("found %d errors", len(errs))))
	b.WriteString("\n")
	return b.String()
}
