package ir_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/funvibe/asc/internal/ast"
	"github.com/funvibe/asc/internal/ir"
)

// A tiny evaluator over the lowered table. Entries are evaluated on demand
// and memoised per frame, which is how a consumer of the table would run it.

type closure struct {
	fn  *ir.Func
	env *frame
}

type builtin func(args []interface{}) interface{}

type frame struct {
	defs   ir.Defs
	values map[string]interface{}
	parent *frame
}

func newFrame(defs ir.Defs, parent *frame) *frame {
	return &frame{defs: defs, values: make(map[string]interface{}), parent: parent}
}

func arith(op func(a, b float64) float64) builtin {
	return func(args []interface{}) interface{} {
		return op(args[0].(float64), args[1].(float64))
	}
}

func compare(op func(a, b float64) bool) builtin {
	return func(args []interface{}) interface{} {
		return op(args[0].(float64), args[1].(float64))
	}
}

var testBuiltins = map[string]builtin{
	"+":   arith(func(a, b float64) float64 { return a + b }),
	"-":   arith(func(a, b float64) float64 { return a - b }),
	"*":   arith(func(a, b float64) float64 { return a * b }),
	"/":   arith(func(a, b float64) float64 { return a / b }),
	"^":   arith(math.Pow),
	"<":   compare(func(a, b float64) bool { return a < b }),
	">":   compare(func(a, b float64) bool { return a > b }),
	"==":  compare(func(a, b float64) bool { return a == b }),
	"max": arith(math.Max),
	"sum": func(args []interface{}) interface{} {
		total := 0.0
		for _, v := range args[0].([]interface{}) {
			total += v.(float64)
		}
		return total
	},
}

func (f *frame) lookup(t *testing.T, id string) interface{} {
	t.Helper()
	for cur := f; cur != nil; cur = cur.parent {
		if v, ok := cur.values[id]; ok {
			return v
		}
		if def, ok := cur.defs[id]; ok {
			v := cur.eval(t, def)
			cur.values[id] = v
			return v
		}
	}
	if b, ok := testBuiltins[id]; ok {
		return b
	}
	t.Fatalf("evaluator: %s is not defined", id)
	return nil
}

func (f *frame) eval(t *testing.T, def ir.Def) interface{} {
	t.Helper()
	switch d := def.(type) {
	case *ir.Number:
		return d.Value
	case *ir.String:
		return d.Value
	case *ir.Bool:
		return d.Value
	case *ir.Null:
		return nil
	case *ir.Matrix:
		return append([]interface{}{}, d.Values...)
	case *ir.List:
		out := make([]interface{}, len(d.Items))
		for i, id := range d.Items {
			out[i] = f.lookup(t, id)
		}
		return out
	case *ir.Func:
		return &closure{fn: d, env: f}
	case *ir.Switch:
		for _, c := range d.Cases {
			if c.IsDefault() || f.lookup(t, c.Cond).(bool) {
				return f.lookup(t, c.Value)
			}
		}
		t.Fatalf("evaluator: switch without default")
	case *ir.Call:
		target := f.lookup(t, d.F)
		if len(d.Args) == 0 {
			return target
		}
		args := make([]interface{}, len(d.Args))
		for i, id := range d.Args {
			args[i] = f.lookup(t, id)
		}
		return apply(t, target, args)
	}
	t.Fatalf("evaluator: unexpected def %T", def)
	return nil
}

func apply(t *testing.T, target interface{}, args []interface{}) interface{} {
	t.Helper()
	switch fn := target.(type) {
	case builtin:
		return fn(args)
	case *closure:
		params := fn.fn.Params
		if len(args) < len(params) {
			t.Fatalf("evaluator: partial application is not supported")
		}
		inner := newFrame(fn.fn.Body, fn.env)
		for i, p := range params {
			inner.values[p] = args[i]
		}
		result := inner.lookup(t, "=")
		if rest := args[len(params):]; len(rest) > 0 {
			return apply(t, result, rest)
		}
		return result
	}
	t.Fatalf("evaluator: %v is not callable", target)
	return nil
}

// evalAST evaluates constant arithmetic straight from the tree.
func evalAST(t *testing.T, expr ast.Expression) float64 {
	t.Helper()
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return e.Value
	case *ast.GroupedExpression:
		return evalAST(t, e.Inner)
	case *ast.ApplyExpression:
		if e.Operator.Kind != ast.OpInfix {
			t.Fatalf("evalAST: only infix operators are supported")
		}
		op := testBuiltins[e.Operator.Name.Value]
		if op == nil {
			t.Fatalf("evalAST: unknown operator %s", e.Operator.Name.Value)
		}
		return op([]interface{}{evalAST(t, e.Left), evalAST(t, e.Right)}).(float64)
	}
	t.Fatalf("evalAST: unsupported %T", expr)
	return 0
}

func TestLoweringPreservesArithmetic(t *testing.T) {
	exprs := []string{
		"1 + 2 * 3",
		"10 - 3 - 2",
		"2 ^ 3 ^ 2",
		"(1 + 2) * 3",
		"100 / 10 / 5",
		"1 + 2 * 3 ^ 2 - 4 / 2",
		"-1 - -2 * 3",
		"0x10 + 0b101 * 0o7",
		"1.5e2 / (2 + 3)",
	}
	for _, src := range exprs {
		t.Run(src, func(t *testing.T) {
			prog := parseProgram(t, "x = "+src+";")
			want := evalAST(t, prog.Decls[0].Body)
			defs, err := ir.Compile(prog)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := newFrame(defs, nil).lookup(t, "x")
			if got != want {
				t.Errorf("IR evaluates to %v, tree to %v", got, want)
			}
		})
	}
}

func TestLoweredProgramsEvaluate(t *testing.T) {
	testCases := []struct {
		input string
		want  interface{}
	}{
		{"x = if 1 < 2 then 10 else 20;", 10.0},
		{"x = if 1 > 2 then 10 else 20;", 20.0},
		{"x = let y = 4 in y * y + 1;", 17.0},
		{"x = let y = 1 in let z = y + 10 in z;", 11.0},
		{"x = let sq v = v * v in sq 3 + sq 4;", 25.0},
		{`x = (\v -> v + 1) 41;`, 42.0},
		{"x = add 2 3; add a b = a + b;", 5.0},
		{`x = twice (\n -> n * 3) 2; twice f v = f (f v);`, 18.0},
		{"x = fact 5; fact n = if n < 1 then 1 else n * fact (n - 1);", 120.0},
		{"x = let fact n = if n < 1 then 1 else n * fact (n - 1) in fact 4;", 24.0},
		{"x = sum [1, 2, y]; y = 3;", 6.0},
		{"x = 3 `max` 9 - 1;", 8.0},
		{`x = if true then "yes" else "no";`, "yes"},
		{"_0 = 5; f v = _0 + (v * 2); x = f 3;", 11.0},
		{`x = let y = 1 in (\v -> let z = y in let y = 2 in z + v) 3;`, 4.0},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			defs := mustCompile(t, tc.input)
			got := newFrame(defs, nil).lookup(t, "x")
			if fmt.Sprint(got) != fmt.Sprint(tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
