package ir_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/funvibe/asc/internal/ast"
	"github.com/funvibe/asc/internal/ir"
	"github.com/funvibe/asc/internal/lexer"
	"github.com/funvibe/asc/internal/parser"
	"github.com/funvibe/asc/internal/pipeline"
	"github.com/funvibe/asc/internal/prettyprinter"
	"github.com/funvibe/asc/internal/scope"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if ctx.Failed() {
		t.Fatalf("parsing %q failed: %v", input, ctx.ErrorList())
	}
	return ctx.AstRoot
}

func mustCompile(t *testing.T, input string) ir.Defs {
	t.Helper()
	defs, err := ir.Compile(parseProgram(t, input))
	if err != nil {
		t.Fatalf("compiling %q failed: %v", input, err)
	}
	return defs
}

func expectCompileError(t *testing.T, input string) error {
	t.Helper()
	defs, err := ir.Compile(parseProgram(t, input))
	if err == nil {
		t.Fatalf("expected error compiling %q, got:\n%s", input, prettyprinter.PrintDefs(defs))
	}
	if defs != nil {
		t.Errorf("expected no output alongside an error")
	}
	return err
}

func num(v float64) *ir.Number { return &ir.Number{Value: v} }

func call(f string, args ...string) *ir.Call {
	if len(args) == 0 {
		return &ir.Call{F: f}
	}
	return &ir.Call{F: f, Args: args}
}

func TestLowering(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  ir.Defs
	}{
		{
			"arithmetic",
			"x = 1 + 2 * 3;",
			ir.Defs{
				"x":  call("+", "_0", "_1"),
				"_0": num(1),
				"_1": call("*", "_2", "_3"),
				"_2": num(2),
				"_3": num(3),
			},
		},
		{
			"reference",
			"x = y; y = 1;",
			ir.Defs{"x": call("y"), "y": num(1)},
		},
		{
			"global",
			"x = @now;",
			ir.Defs{"x": call("@now")},
		},
		{
			"literals",
			`s = "hi"; b = true; n = null;`,
			ir.Defs{"s": &ir.String{Value: "hi"}, "b": &ir.Bool{Value: true}, "n": &ir.Null{}},
		},
		{
			"number_matrix",
			"x = [1, 2, 3];",
			ir.Defs{"x": &ir.Matrix{Values: []interface{}{1.0, 2.0, 3.0}}},
		},
		{
			"bool_matrix",
			"x = [true, false];",
			ir.Defs{"x": &ir.Matrix{Values: []interface{}{true, false}}},
		},
		{
			"empty_list",
			"x = [];",
			ir.Defs{"x": &ir.Matrix{Values: []interface{}{}}},
		},
		{
			"mixed_list",
			"x = [1, y]; y = 2;",
			ir.Defs{"x": &ir.List{Items: []string{"_0", "y"}}, "_0": num(1), "y": num(2)},
		},
		{
			"number_and_bool",
			"x = [1, true];",
			ir.Defs{"x": &ir.List{Items: []string{"_0", "_1"}}, "_0": num(1), "_1": &ir.Bool{Value: true}},
		},
		{
			"if",
			"x = if true then 1 else 2;",
			ir.Defs{
				"x": &ir.Switch{Cases: []ir.SwitchCase{
					{Cond: "_0", Value: "_1"},
					{Value: "_2"},
				}},
				"_0": &ir.Bool{Value: true},
				"_1": num(1),
				"_2": num(2),
			},
		},
		{
			"function",
			"f a b = a + b;",
			ir.Defs{"f": &ir.Func{Params: []string{"a", "b"}, Body: ir.Defs{"=": call("+", "a", "b")}}},
		},
		{
			"curried_call",
			"x = f 1 y; f a b = a; y = 2;",
			ir.Defs{
				"x":  call("f", "_0", "y"),
				"_0": num(1),
				"f":  &ir.Func{Params: []string{"a", "b"}, Body: ir.Defs{"=": call("a")}},
				"y":  num(2),
			},
		},
		{
			"backtick_infix",
			"x = 1 `max` 2;",
			ir.Defs{"x": call("max", "_0", "_1"), "_0": num(1), "_1": num(2)},
		},
		{
			"operator_reference",
			"x = fold (+) 0 [1, 2];",
			ir.Defs{
				"x":  call("fold", "+", "_0", "_1"),
				"_0": num(0),
				"_1": &ir.Matrix{Values: []interface{}{1.0, 2.0}},
			},
		},
		{
			"lambda",
			`f = \v -> v * 2;`,
			ir.Defs{"f": &ir.Func{Params: []string{"v"}, Body: ir.Defs{"=": call("*", "v", "_0"), "_0": num(2)}}},
		},
		{
			"computed_callee",
			`x = (\v -> v) 1;`,
			ir.Defs{
				"x":  call("_0", "_1"),
				"_0": &ir.Func{Params: []string{"v"}, Body: ir.Defs{"=": call("v")}},
				"_1": num(1),
			},
		},
		{
			"let",
			"x = let y = 1 in y + y;",
			ir.Defs{"x": call("+", "_0y", "_0y"), "_0y": num(1)},
		},
		{
			"nested_let_same_name",
			"x = let y = 1 in let y = 2 in y;",
			ir.Defs{"x": call("_1y"), "_0y": num(1), "_1y": num(2)},
		},
		{
			"sibling_lets",
			"a = let t = 1 in t; b = let t = 2 in t;",
			ir.Defs{"a": call("_0t"), "_0t": num(1), "b": call("_1t"), "_1t": num(2)},
		},
		{
			"let_in_function",
			"f x = let y = x + 1 in y * y;",
			ir.Defs{"f": &ir.Func{Params: []string{"x"}, Body: ir.Defs{
				"_0y": call("+", "x", "_0"),
				"_0":  num(1),
				"=":   call("*", "_0y", "_0y"),
			}}},
		},
		{
			"let_function",
			"x = let sq v = v * v in sq 3;",
			ir.Defs{
				"_0sq": &ir.Func{Params: []string{"v"}, Body: ir.Defs{"=": call("*", "v", "v")}},
				"x":    call("_0sq", "_0"),
				"_0":   num(3),
			},
		},
		{
			"temporaries_skip_user_names",
			"_0 = 1; x = 2 + _0;",
			ir.Defs{"_0": num(1), "x": call("+", "_1", "_0"), "_1": num(2)},
		},
		{
			"function_temporaries_skip_outer_names",
			"_0 = 5; f v = _0 + (v * 2);",
			ir.Defs{
				"_0": num(5),
				"f": &ir.Func{Params: []string{"v"}, Body: ir.Defs{
					"=":  call("+", "_0", "_1"),
					"_1": call("*", "v", "_2"),
					"_2": num(2),
				}},
			},
		},
		{
			"inner_let_skips_outer_let",
			`x = let y = 1 in \v -> let z = y in let y = 2 in z + v;`,
			ir.Defs{
				"_0y": num(1),
				"x": &ir.Func{Params: []string{"v"}, Body: ir.Defs{
					"_0z": call("_0y"),
					"_1y": num(2),
					"=":   call("+", "_0z", "v"),
				}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustCompile(t, tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got:\n%s\nwant:\n%s", prettyprinter.PrintDefs(got), prettyprinter.PrintDefs(tc.want))
			}
		})
	}
}

func TestDuplicateNames(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		dup   string
	}{
		{"top_level", "x = 1; x = 2;", "x"},
		{"builtin", "map = 1;", "map"},
		{"parameters", "f a a = a;", "a"},
		{"lambda_parameters", `f = \v v -> v;`, "v"},
		{"repeated_parameter", "g b c b = b;", "b"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := expectCompileError(t, tc.input)
			var dup *scope.DuplicateNameError
			if !errors.As(err, &dup) {
				t.Fatalf("expected DuplicateNameError, got %T: %v", err, err)
			}
			if dup.Name != tc.dup {
				t.Errorf("expected duplicate %q, got %q", tc.dup, dup.Name)
			}
		})
	}
}

func TestUnresolvedNames(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		missing string
	}{
		{"plain", "x = y;", "y"},
		{"let_binding_is_local", "x = (let y = 1 in y) + y;", "y"},
		{"parameter_is_local", "f a = a; x = a;", "a"},
		{"in_list", "x = [1, nope];", "nope"},
		{"in_condition", "x = if c then 1 else 2;", "c"},
		{"let_not_visible_after_body", "x = let y = 1 in y; z = y;", "y"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := expectCompileError(t, tc.input)
			var unresolved *scope.UnresolvedNameError
			if !errors.As(err, &unresolved) {
				t.Fatalf("expected UnresolvedNameError, got %T: %v", err, err)
			}
			if unresolved.Name != tc.missing {
				t.Errorf("expected %q unresolved, got %q", tc.missing, unresolved.Name)
			}
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	err := expectCompileError(t, "a = 1;\nb = a + zz;")
	var cerr *ir.CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CompileError, got %T", err)
	}
	if cerr.Token.Line != 2 || cerr.Token.Column != 9 {
		t.Errorf("expected 2:9, got %d:%d", cerr.Token.Line, cerr.Token.Column)
	}
	if !strings.Contains(err.Error(), "zz") {
		t.Errorf("message should name the identifier: %v", err)
	}
}

// The first error in traversal order wins.
func TestFirstErrorReported(t *testing.T) {
	err := expectCompileError(t, "a = first; b = second;")
	var unresolved *scope.UnresolvedNameError
	if !errors.As(err, &unresolved) || unresolved.Name != "first" {
		t.Errorf("expected first to be reported, got %v", err)
	}
}

func TestExtraBuiltins(t *testing.T) {
	prog := parseProgram(t, "x = lookup 1;")
	if _, err := ir.Compile(prog); err == nil {
		t.Fatalf("lookup should not resolve without the extra builtin")
	}
	defs, err := ir.CompileWith(prog, ir.Options{ExtraBuiltins: []string{"lookup"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(defs["x"], call("lookup", "_0")) {
		t.Errorf("unexpected x: %s", prettyprinter.PrintDefs(defs))
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	input := `
		total xs = fold (+) 0 xs;
		avg2 a b = let s = a + b in s / 2;
		pick c = if c then [1, 2] else [x, "y"];
		x = let t = 1 in let t = t + 1 in total [t, 3];
		f = \a -> \b -> a * b ^ 2;
	`
	prog := parseProgram(t, input)
	first, err := ir.Compile(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ir.Compile(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("compilations differ:\n%s\nvs\n%s", prettyprinter.PrintDefs(first), prettyprinter.PrintDefs(second))
	}
}
