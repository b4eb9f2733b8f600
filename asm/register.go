package asm

import "github.com/deepnoodle-ai/zigzag/scope"

// Reg names a register. The first six are general purpose and make up the
// bank a Unit allocates from.
type Reg uint8

const (
	EAX Reg = iota
	EBX
	ECX
	EDX
	ESI
	EDI
	EBP
	ESP
)

const bankSize = 6

var registerNames = [...][3]string{
	EAX: {"eax", "ax", "al"},
	EBX: {"ebx", "bx", "bl"},
	ECX: {"ecx", "cx", "cl"},
	EDX: {"edx", "dx", "dl"},
	ESI: {"esi", "si", ""},
	EDI: {"edi", "di", ""},
	EBP: {"ebp", "bp", ""},
	ESP: {"esp", "sp", ""},
}

// Name returns the register name for an operand of the given size.
func (r Reg) Name(size Size) string {
	names := registerNames[r]
	switch size {
	case Word:
		return names[1]
	case Byte:
		if names[2] != "" {
			return names[2]
		}
	}
	return names[0]
}

// HasByte reports whether the low byte of r is addressable.
func (r Reg) HasByte() bool { return registerNames[r][2] != "" }

func (r Reg) String() string { return r.Name(Dword) }

// Kind classifies what a register currently holds.
type Kind uint8

const (
	Operation Kind = iota
	Number
	String
	ObjectPointer
	VariableKind
)

func (k Kind) String() string {
	return [...]string{"operation", "number", "string", "object pointer", "variable"}[k]
}

// Value is the content of a register slot. Critical values must survive
// until they are consumed; disposable values free their register when
// their operand text is read; floating values stop being critical once
// read.
//
// Floating loads become uncritical on their first read rather than when
// produced, so a freshly loaded operand survives until its instruction
// consumes it.
type Value struct {
	Kind       Kind
	Size       Size
	Variable   *scope.Variable
	Critical   bool
	Disposable bool
	Floating   bool

	reg  Reg
	unit *Unit
}

func newValue(kind Kind, size Size) *Value {
	v := &Value{Kind: kind, Size: size}
	switch kind {
	case Operation:
		v.Critical, v.Disposable = true, true
	case Number, String, VariableKind:
		v.Critical, v.Floating = true, true
	}
	return v
}

// Reg returns the register holding the value.
func (v *Value) Reg() Reg { return v.reg }

// Use renders the value as an operand and applies its lifetime flags.
func (v *Value) Use(size Size) string {
	name := v.reg.Name(size)
	if v.Disposable {
		v.unit.release(v)
	}
	if v.Floating {
		v.Critical = false
	}
	return name
}

// Peek renders the value without side effects.
func (v *Value) Peek(size Size) string { return v.reg.Name(size) }

func (v *Value) Width() Size           { return Dword }
func (v *Value) Complex() bool         { return false }
func (v *Value) Register() (Reg, bool) { return v.reg, true }
func (v *Value) String() string        { return v.Peek(Dword) }
