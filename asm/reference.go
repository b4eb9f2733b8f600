package asm

import (
	"fmt"
	"strconv"
)

// Reference is an operand: a register, a memory location, an immediate or
// a label.
type Reference interface {
	// Use renders the operand for an instruction. Register values may be
	// released as a side effect.
	Use(size Size) string
	// Peek renders the operand without side effects.
	Peek(size Size) string
	// Width is the natural size of the operand.
	Width() Size
	// Complex reports whether the operand lives in memory.
	Complex() bool
	// Register returns the register the operand is held in, if any.
	Register() (Reg, bool)
}

// RegisterRef is a register that is not tracked as a value, such as ebp.
type RegisterRef struct {
	Reg  Reg
	Size Size
}

func (r *RegisterRef) Use(size Size) string  { return r.Reg.Name(size) }
func (r *RegisterRef) Peek(size Size) string { return r.Reg.Name(size) }
func (r *RegisterRef) Width() Size           { return r.Size }
func (r *RegisterRef) Complex() bool         { return false }
func (r *RegisterRef) Register() (Reg, bool) { return r.Reg, true }

// MemoryRef is a location relative to a base register, e.g. [ebp-4].
type MemoryRef struct {
	Base   Reg
	Offset int
	Size   Size
}

// Address renders the address expression without brackets.
func (m *MemoryRef) Address() string {
	switch {
	case m.Offset > 0:
		return fmt.Sprintf("%s+%d", m.Base, m.Offset)
	case m.Offset < 0:
		return fmt.Sprintf("%s%d", m.Base, m.Offset)
	}
	return m.Base.String()
}

func (m *MemoryRef) Use(Size) string       { return "[" + m.Address() + "]" }
func (m *MemoryRef) Peek(Size) string      { return "[" + m.Address() + "]" }
func (m *MemoryRef) Width() Size           { return m.Size }
func (m *MemoryRef) Complex() bool         { return true }
func (m *MemoryRef) Register() (Reg, bool) { return 0, false }

// NumberRef is an immediate.
type NumberRef struct {
	Value int64
	Size  Size
}

func (n *NumberRef) Use(Size) string       { return strconv.FormatInt(n.Value, 10) }
func (n *NumberRef) Peek(Size) string      { return strconv.FormatInt(n.Value, 10) }
func (n *NumberRef) Width() Size           { return n.Size }
func (n *NumberRef) Complex() bool         { return false }
func (n *NumberRef) Register() (Reg, bool) { return 0, false }

// LabelRef is a data label. Address references render the label itself;
// others render the memory it names.
type LabelRef struct {
	Name    string
	Size    Size
	Address bool
}

func (l *LabelRef) Use(size Size) string { return l.Peek(size) }

func (l *LabelRef) Peek(Size) string {
	if l.Address {
		return l.Name
	}
	return "[" + l.Name + "]"
}

func (l *LabelRef) Width() Size           { return l.Size }
func (l *LabelRef) Complex() bool         { return !l.Address }
func (l *LabelRef) Register() (Reg, bool) { return 0, false }

// sized returns a memory reference with a different operand size.
func sized(ref Reference, size Size) Reference {
	switch r := ref.(type) {
	case *MemoryRef:
		c := *r
		c.Size = size
		return &c
	case *LabelRef:
		c := *r
		c.Size = size
		return &c
	}
	return ref
}
