package asm

import (
	"fmt"
	"strings"
)

// Instructions is a run of assembly lines together with the operand that
// holds the result, if the lines compute one.
type Instructions struct {
	lines []string
	Ref   Reference
}

// Raw appends a formatted line as is.
func (in *Instructions) Raw(format string, args ...any) {
	in.lines = append(in.lines, fmt.Sprintf(format, args...))
}

// Comment appends a comment line.
func (in *Instructions) Comment(text string) {
	in.lines = append(in.lines, "; "+text)
}

// Label appends a label definition.
func (in *Instructions) Label(name string) {
	in.lines = append(in.lines, name+":")
}

// Emit appends an instruction. The size prefix is attached to the memory
// operand, so "mov dword [ebp-4], eax" and "add eax, dword [ebx+4]" come
// out as NASM expects.
func (in *Instructions) Emit(cmd string, size Size, operands ...Reference) {
	switch len(operands) {
	case 0:
		in.lines = append(in.lines, cmd)
	case 1:
		op := operands[0]
		if op.Complex() {
			in.Raw("%s %s %s", cmd, size, op.Use(size))
		} else {
			in.Raw("%s %s", cmd, op.Use(size))
		}
	default:
		left, right := operands[0], operands[1]
		l, r := left.Use(size), right.Use(size)
		switch {
		case left.Complex():
			in.Raw("%s %s %s, %s", cmd, size, l, r)
		case right.Complex():
			in.Raw("%s %s, %s %s", cmd, l, size, r)
		default:
			in.Raw("%s %s, %s", cmd, l, r)
		}
	}
}

// Append adds the lines of other, keeping the current result.
func (in *Instructions) Append(other *Instructions) {
	if other != nil {
		in.lines = append(in.lines, other.lines...)
	}
}

// Take adds the lines of other and adopts its result.
func (in *Instructions) Take(other *Instructions) Reference {
	in.Append(other)
	if other != nil {
		in.Ref = other.Ref
	}
	return in.Ref
}

// Lines returns the assembly lines.
func (in *Instructions) Lines() []string { return in.lines }

// Len returns the number of lines.
func (in *Instructions) Len() int { return len(in.lines) }

func (in *Instructions) String() string {
	if len(in.lines) == 0 {
		return ""
	}
	return strings.Join(in.lines, "\n") + "\n"
}
