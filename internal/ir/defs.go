// Package ir lowers a precedence-resolved program into a flat table of
// definitions keyed by identifier. Every identifier a definition mentions is
// either defined in the same table, in an enclosing function's table, or is
// a root-scope builtin or global-prefixed name.
package ir

// Kind is the discriminant of a Def, also used as the wire tag.
type Kind string

const (
	KindNumber Kind = "n"
	KindString Kind = "s"
	KindMatrix Kind = "m"
	KindBool   Kind = "b"
	KindNull   Kind = "u"
	KindList   Kind = "l"
	KindCall   Kind = "c"
	KindFunc   Kind = "f"
	KindSwitch Kind = "w"
)

// Def is one IR node.
type Def interface {
	Kind() Kind
	defNode()
}

// Defs maps identifiers to their definitions.
type Defs map[string]Def

type Number struct {
	Value float64
}

type String struct {
	Value string
}

// Matrix is a packed literal list whose values are all float64 or all bool.
type Matrix struct {
	Values []interface{}
}

type Bool struct {
	Value bool
}

type Null struct{}

// List is a list of references.
type List struct {
	Items []string
}

// Call applies F to Args. A plain reference is a call with no arguments.
type Call struct {
	F    string
	Args []string
}

// Func has its own table; the result lives under config.ResultName.
type Func struct {
	Params []string
	Body   Defs
}

// SwitchCase yields Value when Cond holds. Cond is empty for the default case.
type SwitchCase struct {
	Cond  string
	Value string
}

// IsDefault reports whether the case has no guard.
func (c SwitchCase) IsDefault() bool { return c.Cond == "" }

// Switch picks the first case whose guard holds; the last case is the
// unguarded default.
type Switch struct {
	Cases []SwitchCase
}

func (*Number) Kind() Kind { return KindNumber }
func (*String) Kind() Kind { return KindString }
func (*Matrix) Kind() Kind { return KindMatrix }
func (*Bool) Kind() Kind   { return KindBool }
func (*Null) Kind() Kind   { return KindNull }
func (*List) Kind() Kind   { return KindList }
func (*Call) Kind() Kind   { return KindCall }
func (*Func) Kind() Kind   { return KindFunc }
func (*Switch) Kind() Kind { return KindSwitch }

func (*Number) defNode() {}
func (*String) defNode() {}
func (*Matrix) defNode() {}
func (*Bool) defNode()   {}
func (*Null) defNode()   {}
func (*List) defNode()   {}
func (*Call) defNode()   {}
func (*Func) defNode()   {}
func (*Switch) defNode() {}
