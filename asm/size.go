// Package asm lowers a resolved syntax tree into 32-bit x86 assembly in
// NASM syntax.
package asm

// Size is an operand size in bytes.
type Size int

const (
	Byte  Size = 1
	Word  Size = 2
	Dword Size = 4
	Qword Size = 8
)

// SizeOf returns the size matching a byte count, defaulting to Dword.
func SizeOf(bytes int) Size {
	switch bytes {
	case 1, 2, 4, 8:
		return Size(bytes)
	}
	return Dword
}

// operandSize is the size an instruction operand can have. Registers are
// 32 bits wide, so 64-bit storage is accessed through its low dword.
func operandSize(bytes int) Size {
	if s := SizeOf(bytes); s < Qword {
		return s
	}
	return Dword
}

// Bytes returns the size in bytes.
func (s Size) Bytes() int { return int(s) }

func (s Size) String() string {
	switch s {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Qword:
		return "qword"
	}
	return "dword"
}

// Data returns the data definition directive for the size.
func (s Size) Data() string {
	switch s {
	case Byte:
		return "db"
	case Word:
		return "dw"
	case Qword:
		return "dq"
	}
	return "dd"
}
