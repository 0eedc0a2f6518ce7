package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/asc/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// CodePrinter renders expressions back to source syntax. Parentheses are
// inserted only where the precedence levels require them unless Explicit is
// set, in which case every binary application is wrapped.
type CodePrinter struct {
	buf      bytes.Buffer
	Explicit bool
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

// PrintProgram renders every declaration on its own line.
func PrintProgram(prog *ast.Program) string {
	return printProgram(NewCodePrinter(), prog)
}

// ParenthesizeProgram is PrintProgram with every binary application
// wrapped, as printed by `asc fmt -explicit`.
func ParenthesizeProgram(prog *ast.Program) string {
	return printProgram(&CodePrinter{Explicit: true}, prog)
}

func printProgram(p *CodePrinter, prog *ast.Program) string {
	for i, decl := range prog.Decls {
		if i > 0 {
			p.write("\n")
		}
		p.printDecl(decl)
		p.write(";")
	}
	return p.String()
}

// Print renders a single expression with minimal parentheses.
func Print(expr ast.Expression) string {
	p := NewCodePrinter()
	p.printExpr(expr, ast.MaxLevel+1, false)
	return p.String()
}

// Parenthesize renders expr with every binary application wrapped, which
// makes the resolved tree shape visible.
func Parenthesize(expr ast.Expression) string {
	p := &CodePrinter{Explicit: true}
	p.printExpr(expr, ast.MaxLevel+1, false)
	return p.String()
}

func (p *CodePrinter) printDecl(decl *ast.Decl) {
	p.write(decl.Name.Value)
	for _, param := range decl.Params {
		p.write(" " + param.Value)
	}
	p.write(" = ")
	p.printExpr(decl.Body, ast.MaxLevel+1, false)
}

// printExpr prints an expression, adding parentheses only if needed.
// Levels grow looser, so a child needs parentheses when it is looser than
// its parent, or equally loose on the right (everything is left-associative).
func (p *CodePrinter) printExpr(expr ast.Expression, parentLevel int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	app, ok := expr.(*ast.ApplyExpression)
	if !ok {
		if parentLevel <= ast.MaxLevel && isOpenEnded(expr) {
			// let/if/lambda swallow everything to their right
			p.write("(")
			expr.Accept(p)
			p.write(")")
			return
		}
		expr.Accept(p)
		return
	}

	level := ast.Level(app.Operator)
	needParens := p.Explicit || level > parentLevel || (level == parentLevel && isRight)
	if needParens {
		p.write("(")
	}
	p.printExpr(app.Left, level, false)
	switch app.Operator.Kind {
	case ast.OpApply:
		p.write(" ")
	default:
		name := app.Operator.Name.Value
		if isWord(name) {
			name = "`" + name + "`"
		}
		p.write(" " + name + " ")
	}
	p.printExpr(app.Right, level, true)
	if needParens {
		p.write(")")
	}
}

func isOpenEnded(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.LetExpression, *ast.IfExpression, *ast.FunctionLiteral:
		return true
	}
	return false
}

func isWord(name string) bool {
	name = strings.TrimPrefix(name, "@")
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func (p *CodePrinter) VisitIdentifier(i *ast.Identifier) {
	if isWord(i.Value) {
		p.write(i.Value)
		return
	}
	p.write("(" + i.Value + ")")
}

func (p *CodePrinter) VisitGroupedExpression(g *ast.GroupedExpression) {
	p.write("(")
	p.printExpr(g.Inner, ast.MaxLevel+1, false)
	p.write(")")
}

func (p *CodePrinter) VisitLetExpression(l *ast.LetExpression) {
	p.write("let ")
	p.printDecl(l.Decl)
	p.write(" in ")
	p.printExpr(l.Body, ast.MaxLevel+1, false)
}

func (p *CodePrinter) VisitApplyExpression(a *ast.ApplyExpression) {
	p.printExpr(a, ast.MaxLevel+1, false)
}

func (p *CodePrinter) VisitListLiteral(l *ast.ListLiteral) {
	p.write("[")
	for i, el := range l.Elements {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(el, ast.MaxLevel+1, false)
	}
	p.write("]")
}

func (p *CodePrinter) VisitNumberLiteral(n *ast.NumberLiteral) {
	p.write(strconv.FormatFloat(n.Value, 'g', -1, 64))
}

func (p *CodePrinter) VisitStringLiteral(s *ast.StringLiteral) {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s.Value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	p.write(b.String())
}

func (p *CodePrinter) VisitBooleanLiteral(b *ast.BooleanLiteral) {
	p.write(strconv.FormatBool(b.Value))
}

func (p *CodePrinter) VisitNullLiteral(n *ast.NullLiteral) {
	p.write("null")
}

func (p *CodePrinter) VisitIfExpression(i *ast.IfExpression) {
	p.write("if ")
	p.printExpr(i.Condition, ast.MaxLevel+1, false)
	p.write(" then ")
	p.printExpr(i.Consequence, ast.MaxLevel+1, false)
	p.write(" else ")
	p.printExpr(i.Alternative, ast.MaxLevel+1, false)
}

func (p *CodePrinter) VisitFunctionLiteral(f *ast.FunctionLiteral) {
	p.write("\\")
	for i, param := range f.Params {
		if i > 0 {
			p.write(" ")
		}
		p.write(param.Value)
	}
	p.write(" -> ")
	p.printExpr(f.Body, ast.MaxLevel+1, false)
}
