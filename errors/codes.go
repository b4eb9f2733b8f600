package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Parse errors
//   - E2xxx: Resolution errors
//   - E3xxx: Assembly errors
type ErrorCode string

const (
	// Parse errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token
	E1002 ErrorCode = "E1002" // Unknown operator
	E1003 ErrorCode = "E1003" // Unterminated string literal
	E1004 ErrorCode = "E1004" // Unclosed delimiter
	E1005 ErrorCode = "E1005" // Invalid number literal
	E1006 ErrorCode = "E1006" // Empty content
	E1007 ErrorCode = "E1007" // Misplaced declaration
	E1008 ErrorCode = "E1008" // Invalid declaration

	// Resolution errors (E2xxx)
	E2001 ErrorCode = "E2001" // Duplicate declaration
	E2002 ErrorCode = "E2002" // Unknown name
	E2003 ErrorCode = "E2003" // Ambiguous overload
	E2004 ErrorCode = "E2004" // No matching overload
	E2005 ErrorCode = "E2005" // Incompatible types
	E2006 ErrorCode = "E2006" // Unknown member context
	E2007 ErrorCode = "E2007" // Missing entry function
	E2008 ErrorCode = "E2008" // Unresolved type

	// Assembly errors (E3xxx)
	E3001 ErrorCode = "E3001" // Unsupported construct
	E3002 ErrorCode = "E3002" // Register pressure
	E3003 ErrorCode = "E3003" // Unresolved node
)

// Aliases for the error taxonomy used throughout the compiler.
const (
	UnexpectedToken      = E1001
	MalformedContent     = E1004
	EmptyContent         = E1006
	DuplicateDeclaration = E2001
	UnknownName          = E2002
	AmbiguousOverload    = E2003
	NoMatchingOverload   = E2004
	IncompatibleTypes    = E2005
	UnsupportedConstruct = E3001
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token",
	E1002: "unknown operator",
	E1003: "unterminated string literal",
	E1004: "unclosed delimiter",
	E1005: "invalid number literal",
	E1006: "empty content",
	E1007: "misplaced declaration",
	E1008: "invalid declaration",

	E2001: "duplicate declaration",
	E2002: "unknown name",
	E2003: "ambiguous overload",
	E2004: "no matching overload",
	E2005: "incompatible types",
	E2006: "unknown member context",
	E2007: "missing entry function",
	E2008: "unresolved type",

	E3001: "unsupported construct",
	E3002: "register pressure",
	E3003: "unresolved node",
}

// recoverable codes describe names that a later resolution pass may still
// bind.
var recoverable = map[ErrorCode]bool{
	E2002: true,
	E2006: true,
	E2008: true,
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Recoverable reports whether errors with this code may disappear on a
// later resolution pass.
func (c ErrorCode) Recoverable() bool {
	return recoverable[c]
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "parse"
	case '2':
		return "resolve"
	case '3':
		return "assembly"
	default:
		return "unknown"
	}
}
