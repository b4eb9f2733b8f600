package token

// Category groups operators by how they combine their operands.
type Category byte

const (
	Classic Category = iota
	Comparison
	Logic
	Action
	Independent
)

// OperatorInfo describes one entry in the operator table.
type OperatorInfo struct {
	Symbol   string
	Name     string
	Priority int
	Category Category
	// Counterpart is the logical negation of a comparison operator.
	Counterpart *OperatorInfo
	// Base is the classic operator a compound assignment applies.
	Base *OperatorInfo
}

func (o *OperatorInfo) String() string {
	return o.Symbol
}

// Modifier is a bit set of access modifiers.
type Modifier uint8

const (
	Private Modifier = 1 << iota
	Protected
	Public
	Readonly
	Static
	External
)

// Has reports whether every bit of other is set.
func (m Modifier) Has(other Modifier) bool {
	return m&other == other
}

// KeywordInfo describes a reserved word. Access modifiers carry a Modifier bit.
type KeywordInfo struct {
	Name     string
	Modifier Modifier
}

// IsModifier reports whether the keyword is an access modifier.
func (k *KeywordInfo) IsModifier() bool {
	return k != nil && k.Modifier != 0
}

// Tables holds the operator and keyword tables. Build it once with
// NewTables and share it; it is never modified afterwards.
type Tables struct {
	operators  []*OperatorInfo
	bySymbol   map[string]*OperatorInfo
	keywords   []*KeywordInfo
	byName     map[string]*KeywordInfo
	maxSymbol  int
	extender   *OperatorInfo
	assignment *OperatorInfo
}

// NewTables builds the operator and keyword tables in a fixed order.
func NewTables() *Tables {
	t := &Tables{bySymbol: map[string]*OperatorInfo{}, byName: map[string]*KeywordInfo{}}

	add := func(symbol, name string, priority int, category Category) *OperatorInfo {
		op := &OperatorInfo{Symbol: symbol, Name: name, Priority: priority, Category: category}
		t.operators = append(t.operators, op)
		t.bySymbol[symbol] = op
		if len(symbol) > t.maxSymbol {
			t.maxSymbol = len(symbol)
		}
		return op
	}

	t.extender = add(":", "Extend", 19, Classic)
	power := add("^", "Power", 15, Classic)
	multiply := add("*", "Multiply", 12, Classic)
	divide := add("/", "Divide", 12, Classic)
	modulus := add("%", "Modulus", 12, Classic)
	addition := add("+", "Add", 11, Classic)
	subtract := add("-", "Subtract", 11, Classic)
	add("<<", "ShiftLeft", 10, Classic)
	add(">>", "ShiftRight", 10, Classic)

	greater := add(">", "Greater", 9, Comparison)
	greaterOrEqual := add(">=", "GreaterOrEqual", 9, Comparison)
	less := add("<", "Less", 9, Comparison)
	lessOrEqual := add("<=", "LessOrEqual", 9, Comparison)
	equals := add("==", "Equals", 8, Comparison)
	notEquals := add("!=", "NotEquals", 8, Comparison)
	pair := func(a, b *OperatorInfo) {
		a.Counterpart, b.Counterpart = b, a
	}
	pair(greater, lessOrEqual)
	pair(greaterOrEqual, less)
	pair(equals, notEquals)

	add("and", "BitwiseAnd", 7, Classic)
	add("xor", "BitwiseXor", 6, Classic)
	add("or", "BitwiseOr", 5, Classic)
	add("&", "And", 4, Logic)
	add("|", "Or", 3, Logic)

	t.assignment = add("=", "Assign", 1, Action)
	compound := func(symbol, name string, base *OperatorInfo) {
		add(symbol, name, 1, Action).Base = base
	}
	compound("+=", "AssignAdd", addition)
	compound("-=", "AssignSubtract", subtract)
	compound("*=", "AssignMultiply", multiply)
	compound("/=", "AssignDivide", divide)
	compound("%=", "AssignModulus", modulus)
	compound("^=", "AssignPower", power)

	add(",", "Comma", -1, Independent)
	add(".", "Dot", -1, Independent)
	add("++", "Increment", -1, Independent)
	add("--", "Decrement", -1, Independent)
	add("->", "Cast", -1, Independent)

	for _, name := range []string{
		"base", "break", "case", "continue", "else", "func", "goto", "if",
		"import", "init", "lock", "loop", "new", "return", "this", "type",
		"var", "while",
	} {
		t.addKeyword(name, 0)
	}
	t.addKeyword("private", Private)
	t.addKeyword("protected", Protected)
	t.addKeyword("public", Public)
	t.addKeyword("readonly", Readonly)
	t.addKeyword("static", Static)
	t.addKeyword("external", External)
	return t
}

func (t *Tables) addKeyword(name string, modifier Modifier) {
	k := &KeywordInfo{Name: name, Modifier: modifier}
	t.keywords = append(t.keywords, k)
	t.byName[name] = k
}

// Operator returns the operator with the given symbol, or nil.
func (t *Tables) Operator(symbol string) *OperatorInfo {
	return t.bySymbol[symbol]
}

// Keyword returns the keyword with the given name, or nil.
func (t *Tables) Keyword(name string) *KeywordInfo {
	return t.byName[name]
}

// Operators returns the operator table in registration order.
func (t *Tables) Operators() []*OperatorInfo {
	return t.operators
}

// Keywords returns the keyword table in registration order.
func (t *Tables) Keywords() []*KeywordInfo {
	return t.keywords
}

// LongestSymbol is the length of the longest operator symbol.
func (t *Tables) LongestSymbol() int {
	return t.maxSymbol
}

// Extender is the ':' operator used for offsets and supertypes.
func (t *Tables) Extender() *OperatorInfo {
	return t.extender
}

// Assignment is the plain '=' operator.
func (t *Tables) Assignment() *OperatorInfo {
	return t.assignment
}
