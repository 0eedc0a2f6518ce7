package ast_test

import (
	"testing"

	"github.com/funvibe/asc/internal/ast"
	"github.com/funvibe/asc/internal/prettyprinter"
	"github.com/funvibe/asc/internal/token"
)

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Token: token.Token{Type: token.IDENT, Lexeme: name, Literal: name}, Value: name}
}

func num(v float64) *ast.NumberLiteral {
	return &ast.NumberLiteral{Value: v}
}

// chain builds the naive left-nested tree a grammar with plain left recursion
// produces: operands and operators alternate, "" means juxtaposition.
func chain(t *testing.T, parts ...interface{}) ast.Expression {
	t.Helper()
	if len(parts)%2 != 1 {
		t.Fatalf("chain needs an odd number of parts, got %d", len(parts))
	}
	operand := func(p interface{}) ast.Expression {
		switch v := p.(type) {
		case ast.Expression:
			return v
		case string:
			return ident(v)
		case int:
			return num(float64(v))
		}
		t.Fatalf("unsupported operand %T", p)
		return nil
	}
	expr := operand(parts[0])
	for i := 1; i < len(parts); i += 2 {
		name, ok := parts[i].(string)
		if !ok {
			t.Fatalf("operator at %d must be a string", i)
		}
		op := ast.ApplyOp
		if name != "" {
			op = ast.InfixOp(ident(name))
		}
		expr = &ast.ApplyExpression{Left: expr, Operator: op, Right: operand(parts[i+1])}
	}
	return expr
}

func TestFixPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		parts    []interface{}
		expected string
	}{
		{"mul inside add", []interface{}{2, "+", 3, "*", 4}, "(2 + (3 * 4))"},
		{"mul before add", []interface{}{2, "*", 3, "+", 4}, "((2 * 3) + 4)"},
		{"left assoc sub", []interface{}{10, "-", 3, "-", 2}, "((10 - 3) - 2)"},
		{"left assoc pow", []interface{}{2, "^", 3, "^", 2}, "((2 ^ 3) ^ 2)"},
		{"pow over mul", []interface{}{2, "*", 3, "^", 2}, "(2 * (3 ^ 2))"},
		{"application binds tightest", []interface{}{"f", "", "x", "+", 1}, "((f x) + 1)"},
		{"curried application", []interface{}{"f", "", "x", "", "y"}, "((f x) y)"},
		{"application on right", []interface{}{1, "+", "f", "", "x"}, "(1 + (f x))"},
		{"shift under add", []interface{}{1, "<<", 2, "+", 3}, "(1 << (2 + 3))"},
		{"bitand over bitor", []interface{}{"a", "|", "b", "&", "c"}, "(a | (b & c))"},
		{"comparison under shift", []interface{}{"a", "<", "b", ">>", 1}, "(a < (b >> 1))"},
		{"equality under comparison", []interface{}{"a", "==", "b", "<=", "c"}, "(a == (b <= c))"},
		{"and over or", []interface{}{"a", "||", "b", "&&", "c"}, "(a || (b && c))"},
		{"and under equality", []interface{}{"a", "&&", "b", "!=", "c"}, "(a && (b != c))"},
		{"unknown binds under application", []interface{}{"f", "", "x", "++", "g", "", "y"}, "((f x) ++ (g y))"},
		{"unknown binds over pow", []interface{}{"a", "^", "b", "++", "c"}, "(a ^ (b ++ c))"},
		{"same rank mixed", []interface{}{1, "+", 2, "-", 3, "+", 4}, "(((1 + 2) - 3) + 4)"},
		{"full ladder", []interface{}{"a", "||", "b", "&&", "c", "==", "d", "<", "e", "|", "f", "&", "g", "<<", "h", "+", "i", "*", "j", "^", "k"},
			"(a || (b && (c == (d < (e | (f & (g << (h + (i * (j ^ k))))))))))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed := ast.FixPrecedence(chain(t, tt.parts...))
			got := prettyprinter.Parenthesize(fixed)
			if got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestFixPrecedenceSingleOperand(t *testing.T) {
	x := ident("x")
	if got := ast.FixPrecedence(x); got != x {
		t.Fatalf("single operand must be returned unchanged, got %#v", got)
	}
}

func TestFixPrecedenceKeepsGroups(t *testing.T) {
	group := &ast.GroupedExpression{Inner: chain(t, 1, "+", 2)}
	fixed := ast.FixPrecedence(chain(t, group, "*", 3))
	if got := prettyprinter.Parenthesize(fixed); got != "(((1 + 2)) * 3)" {
		t.Fatalf("got %s", got)
	}
	if got := prettyprinter.Print(fixed); got != "(1 + 2) * 3" {
		t.Fatalf("got %s", got)
	}
}

func TestFixPrecedenceIsIdempotent(t *testing.T) {
	once := ast.FixPrecedence(chain(t, 1, "+", 2, "*", 3, "-", 4))
	twice := ast.FixPrecedence(once)
	if a, b := prettyprinter.Parenthesize(once), prettyprinter.Parenthesize(twice); a != b {
		t.Fatalf("second pass changed the tree: %s vs %s", a, b)
	}
}

func TestFixPrecedencePanicsOnMalformedChain(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for dangling operator")
		}
	}()
	// an operator with an operator on its left cannot be produced by a parser
	bad := &ast.ApplyExpression{
		Left:     &ast.ApplyExpression{Left: num(1), Operator: ast.InfixOp(ident("+")), Right: num(2)},
		Operator: ast.InfixOp(ident("*")),
		Right:    nil,
	}
	ast.FixPrecedence(bad)
}

func TestLevel(t *testing.T) {
	if ast.Level(ast.ApplyOp) != ast.ApplyLevel {
		t.Errorf("application level = %d", ast.Level(ast.ApplyOp))
	}
	if ast.Level(ast.InfixOp(ident("<$>"))) != ast.UnknownLevel {
		t.Errorf("unknown operator level = %d", ast.Level(ast.InfixOp(ident("<$>"))))
	}
	if ast.Level(ast.InfixOp(ident("||"))) != ast.MaxLevel {
		t.Errorf("|| level = %d", ast.Level(ast.InfixOp(ident("||"))))
	}
}
