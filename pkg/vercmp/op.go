package vercmp

// Op is a comparison operator attached to a dependency constraint,
// e.g. the ">=" in "zlib >= 1.2.11". The zero value OpAny matches
// every version and is used for unconstrained dependencies.
type Op int

const (
	OpAny Op = iota
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpEqual
	OpNotEqual
)

var opNames = map[Op]string{
	OpAny:          "",
	OpLess:         "<",
	OpGreater:      ">",
	OpLessEqual:    "<=",
	OpGreaterEqual: ">=",
	OpEqual:        "=",
	OpNotEqual:     "!=",
}

// String returns the operator's textual form, or "" for OpAny.
func (op Op) String() string { return opNames[op] }

// ParseOp maps an operator token to its Op. The second return value
// reports whether the token is a known operator.
func ParseOp(s string) (Op, bool) {
	switch s {
	case "":
		return OpAny, true
	case "<":
		return OpLess, true
	case ">":
		return OpGreater, true
	case "<=":
		return OpLessEqual, true
	case ">=":
		return OpGreaterEqual, true
	case "=", "==":
		return OpEqual, true
	case "!=":
		return OpNotEqual, true
	}
	return OpAny, false
}

// Satisfies reports whether a package carrying version have satisfies
// the constraint "op want". OpAny is satisfied by any version,
// including the empty string.
func Satisfies(op Op, have, want string) bool {
	if op == OpAny {
		return true
	}

	c := Compare(have, want)
	switch op {
	case OpLess:
		return c < 0
	case OpGreater:
		return c > 0
	case OpLessEqual:
		return c <= 0
	case OpGreaterEqual:
		return c >= 0
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	}
	return false
}
