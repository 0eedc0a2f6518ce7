package ir

import (
	"fmt"

	"github.com/funvibe/asc/internal/ast"
	"github.com/funvibe/asc/internal/config"
	"github.com/funvibe/asc/internal/scope"
	"github.com/funvibe/asc/internal/token"
)

// CompileError attaches the source position to a scope error.
type CompileError struct {
	Err   error
	Token token.Token
}

func (e *CompileError) Error() string {
	if e.Token.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Err)
	}
	return e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }

// Options tunes a compilation.
type Options struct {
	// ExtraBuiltins are registered in the root scope next to config.BuiltinNames.
	ExtraBuiltins []string
}

// Compile lowers prog with the default builtin namespace.
func Compile(prog *ast.Program) (Defs, error) {
	return CompileWith(prog, Options{})
}

// CompileWith lowers prog into a flat table. Every call builds its own scope
// chain, so independent compilations may run concurrently. The first
// duplicate or unresolved identifier aborts the whole compilation.
func CompileWith(prog *ast.Program, opts Options) (Defs, error) {
	names := make([]string, 0, len(config.BuiltinNames)+len(opts.ExtraBuiltins))
	names = append(names, config.BuiltinNames...)
	names = append(names, opts.ExtraBuiltins...)
	global := scope.NewGlobal(names...)

	// Register every top-level name first so declarations can refer to each
	// other regardless of order.
	for _, decl := range prog.Decls {
		if _, err := global.Register(decl.Name.Value); err != nil {
			return nil, &CompileError{Err: err, Token: decl.Name.Token}
		}
	}

	defs := make(Defs)
	for _, decl := range prog.Decls {
		if err := lowerDecl(decl.Name.Value, decl, global, defs); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// lowerDecl emits decl under out. Constants lower in place through a
// transparent scope; functions get an owning scope and a nested table.
func lowerDecl(out string, decl *ast.Decl, sc *scope.Scope, defs Defs) error {
	if !decl.IsFunction() {
		return lowerExpr(out, decl.Body, sc.NewTransparentChild(), defs)
	}
	fn, err := lowerFunction(decl.Params, decl.Body, sc)
	if err != nil {
		return err
	}
	defs[out] = fn
	return nil
}

// Parameters keep their source names: the function owns its namespace.
func lowerFunction(params []*ast.Identifier, body ast.Expression, sc *scope.Scope) (*Func, error) {
	fnScope := sc.NewChild()
	names := make([]string, len(params))
	for i, param := range params {
		if _, err := fnScope.Register(param.Value); err != nil {
			return nil, &CompileError{Err: err, Token: param.Token}
		}
		names[i] = param.Value
	}
	bodyDefs := make(Defs)
	if err := lowerExpr(config.ResultName, body, fnScope, bodyDefs); err != nil {
		return nil, err
	}
	return &Func{Params: names, Body: bodyDefs}, nil
}

func resolve(ident *ast.Identifier, sc *scope.Scope) (string, error) {
	id, err := sc.Resolve(ident.Value)
	if err != nil {
		return "", &CompileError{Err: err, Token: ident.Token}
	}
	return id, nil
}

// operand returns an identifier holding expr's value: the resolved name for
// a bare identifier, otherwise a fresh temporary the expression is lowered into.
func operand(expr ast.Expression, sc *scope.Scope, defs Defs) (string, error) {
	if ident, ok := expr.(*ast.Identifier); ok {
		return resolve(ident, sc)
	}
	tmp := sc.Fresh("")
	if err := lowerExpr(tmp, expr, sc, defs); err != nil {
		return "", err
	}
	return tmp, nil
}

func lowerExpr(out string, expr ast.Expression, sc *scope.Scope, defs Defs) error {
	switch e := expr.(type) {
	case *ast.GroupedExpression:
		return lowerExpr(out, e.Inner, sc, defs)

	case *ast.Identifier:
		id, err := resolve(e, sc)
		if err != nil {
			return err
		}
		defs[out] = &Call{F: id}

	case *ast.LetExpression:
		letScope := sc.NewTransparentChild()
		id, err := letScope.Register(e.Decl.Name.Value)
		if err != nil {
			return &CompileError{Err: err, Token: e.Decl.Name.Token}
		}
		if err := lowerDecl(id, e.Decl, letScope, defs); err != nil {
			return err
		}
		return lowerExpr(out, e.Body, letScope, defs)

	case *ast.ApplyExpression:
		if e.Operator.Kind == ast.OpInfix {
			// a op b is (op a) b
			return lowerExpr(out, &ast.ApplyExpression{
				Token: e.Token,
				Left: &ast.ApplyExpression{
					Token:    e.Operator.Name.Token,
					Left:     e.Operator.Name,
					Operator: ast.ApplyOp,
					Right:    e.Left,
				},
				Operator: ast.ApplyOp,
				Right:    e.Right,
			}, sc, defs)
		}
		return lowerApply(out, e, sc, defs)

	case *ast.ListLiteral:
		return lowerList(out, e, sc, defs)

	case *ast.IfExpression:
		condID := sc.Fresh("")
		thenID := sc.Fresh("")
		elseID := sc.Fresh("")
		if err := lowerExpr(condID, e.Condition, sc, defs); err != nil {
			return err
		}
		if err := lowerExpr(thenID, e.Consequence, sc, defs); err != nil {
			return err
		}
		if err := lowerExpr(elseID, e.Alternative, sc, defs); err != nil {
			return err
		}
		defs[out] = &Switch{Cases: []SwitchCase{
			{Cond: condID, Value: thenID},
			{Value: elseID},
		}}

	case *ast.NumberLiteral:
		defs[out] = &Number{Value: e.Value}
	case *ast.StringLiteral:
		defs[out] = &String{Value: e.Value}
	case *ast.BooleanLiteral:
		defs[out] = &Bool{Value: e.Value}
	case *ast.NullLiteral:
		defs[out] = &Null{}

	case *ast.FunctionLiteral:
		fn, err := lowerFunction(e.Params, e.Body, sc)
		if err != nil {
			return err
		}
		defs[out] = fn

	default:
		panic(fmt.Sprintf("ir: unexpected expression %T", expr))
	}
	return nil
}

// lowerApply turns the curried chain ((f a) b) c into one call f(a, b, c).
func lowerApply(out string, app *ast.ApplyExpression, sc *scope.Scope, defs Defs) error {
	var reversed []ast.Expression
	var callee ast.Expression = app
	for {
		inner, ok := callee.(*ast.ApplyExpression)
		if !ok || inner.Operator.Kind != ast.OpApply {
			break
		}
		reversed = append(reversed, inner.Right)
		callee = inner.Left
	}

	f, err := operand(callee, sc, defs)
	if err != nil {
		return err
	}
	args := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		arg, err := operand(reversed[i], sc, defs)
		if err != nil {
			return err
		}
		args = append(args, arg)
	}
	defs[out] = &Call{F: f, Args: args}
	return nil
}

// lowerList packs all-number or all-boolean lists into one Matrix entry and
// otherwise emits a List of references.
func lowerList(out string, list *ast.ListLiteral, sc *scope.Scope, defs Defs) error {
	allNum, allBool := true, true
	for _, el := range list.Elements {
		switch el.(type) {
		case *ast.NumberLiteral:
			allBool = false
		case *ast.BooleanLiteral:
			allNum = false
		default:
			allNum, allBool = false, false
		}
	}

	if allNum || allBool {
		values := make([]interface{}, len(list.Elements))
		for i, el := range list.Elements {
			switch v := el.(type) {
			case *ast.NumberLiteral:
				values[i] = v.Value
			case *ast.BooleanLiteral:
				values[i] = v.Value
			}
		}
		defs[out] = &Matrix{Values: values}
		return nil
	}

	items := make([]string, len(list.Elements))
	for i, el := range list.Elements {
		id, err := operand(el, sc, defs)
		if err != nil {
			return err
		}
		items[i] = id
	}
	defs[out] = &List{Items: items}
	return nil
}
