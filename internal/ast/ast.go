package ast

import (
	"github.com/funvibe/asc/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	Accept(v Visitor)
	expressionNode()
}

// Program is the root node: an ordered list of top-level declarations.
type Program struct {
	File  string // Source file path
	Decls []*Decl
}

func (p *Program) TokenLiteral() string {
	if len(p.Decls) > 0 {
		return p.Decls[0].TokenLiteral()
	}
	return ""
}

// Decl binds a name. With no params it is a constant, otherwise a function.
// f x y = x + y;
type Decl struct {
	Name   *Identifier
	Params []*Identifier
	Body   Expression
}

func (d *Decl) TokenLiteral() string  { return d.Name.TokenLiteral() }
func (d *Decl) GetToken() token.Token { return d.Name.Token }

// IsFunction reports whether the declaration takes parameters.
func (d *Decl) IsFunction() bool { return len(d.Params) > 0 }

// Identifier is a name reference. Names starting with the global prefix
// are resolved outside the program.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) Accept(v Visitor)      { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

// GroupedExpression is a parenthesised expression. It is opaque to the
// precedence resolver.
type GroupedExpression struct {
	Token token.Token // The '(' token
	Inner Expression
}

func (g *GroupedExpression) Accept(v Visitor)      { v.VisitGroupedExpression(g) }
func (g *GroupedExpression) expressionNode()       {}
func (g *GroupedExpression) TokenLiteral() string  { return g.Token.Lexeme }
func (g *GroupedExpression) GetToken() token.Token { return g.Token }

// LetExpression scopes Decl to Body only.
// let x = 1 in x + 1
type LetExpression struct {
	Token token.Token // The 'let' token
	Decl  *Decl
	Body  Expression
}

func (l *LetExpression) Accept(v Visitor)      { v.VisitLetExpression(l) }
func (l *LetExpression) expressionNode()       {}
func (l *LetExpression) TokenLiteral() string  { return l.Token.Lexeme }
func (l *LetExpression) GetToken() token.Token { return l.Token }

// OpKind distinguishes juxtaposition from named infix operators.
type OpKind int

const (
	OpApply OpKind = iota // f x
	OpInfix               // a + b, a `max` b
)

// Operator tags a binary application.
type Operator struct {
	Kind OpKind
	Name *Identifier // nil for OpApply
}

// ApplyOp is the juxtaposition operator.
var ApplyOp = Operator{Kind: OpApply}

// InfixOp builds a named infix operator.
func InfixOp(name *Identifier) Operator {
	return Operator{Kind: OpInfix, Name: name}
}

func (o Operator) String() string {
	if o.Kind == OpApply {
		return " "
	}
	return o.Name.Value
}

// ApplyExpression is a binary application: Left Op Right.
type ApplyExpression struct {
	Token    token.Token // first token of the left operand
	Left     Expression
	Operator Operator
	Right    Expression
}

func (a *ApplyExpression) Accept(v Visitor)      { v.VisitApplyExpression(a) }
func (a *ApplyExpression) expressionNode()       {}
func (a *ApplyExpression) TokenLiteral() string  { return a.Token.Lexeme }
func (a *ApplyExpression) GetToken() token.Token { return a.Token }

// ListLiteral is [a, b, c].
type ListLiteral struct {
	Token    token.Token // The '[' token
	Elements []Expression
}

func (l *ListLiteral) Accept(v Visitor)      { v.VisitListLiteral(l) }
func (l *ListLiteral) expressionNode()       {}
func (l *ListLiteral) TokenLiteral() string  { return l.Token.Lexeme }
func (l *ListLiteral) GetToken() token.Token { return l.Token }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (n *NumberLiteral) Accept(v Visitor)      { v.VisitNumberLiteral(n) }
func (n *NumberLiteral) expressionNode()       {}
func (n *NumberLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *NumberLiteral) GetToken() token.Token { return n.Token }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) Accept(v Visitor)      { v.VisitStringLiteral(s) }
func (s *StringLiteral) expressionNode()       {}
func (s *StringLiteral) TokenLiteral() string  { return s.Token.Lexeme }
func (s *StringLiteral) GetToken() token.Token { return s.Token }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) Accept(v Visitor)      { v.VisitBooleanLiteral(b) }
func (b *BooleanLiteral) expressionNode()       {}
func (b *BooleanLiteral) TokenLiteral() string  { return b.Token.Lexeme }
func (b *BooleanLiteral) GetToken() token.Token { return b.Token }

type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) Accept(v Visitor)      { v.VisitNullLiteral(n) }
func (n *NullLiteral) expressionNode()       {}
func (n *NullLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *NullLiteral) GetToken() token.Token { return n.Token }

// IfExpression is if Condition then Consequence else Alternative.
type IfExpression struct {
	Token       token.Token // The 'if' token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (i *IfExpression) Accept(v Visitor)      { v.VisitIfExpression(i) }
func (i *IfExpression) expressionNode()       {}
func (i *IfExpression) TokenLiteral() string  { return i.Token.Lexeme }
func (i *IfExpression) GetToken() token.Token { return i.Token }

// FunctionLiteral is an anonymous function: \x y -> body
type FunctionLiteral struct {
	Token  token.Token // The '\' token
	Params []*Identifier
	Body   Expression
}

func (f *FunctionLiteral) Accept(v Visitor)      { v.VisitFunctionLiteral(f) }
func (f *FunctionLiteral) expressionNode()       {}
func (f *FunctionLiteral) TokenLiteral() string  { return f.Token.Lexeme }
func (f *FunctionLiteral) GetToken() token.Token { return f.Token }

// Visitor walks expressions.
type Visitor interface {
	VisitIdentifier(*Identifier)
	VisitGroupedExpression(*GroupedExpression)
	VisitLetExpression(*LetExpression)
	VisitApplyExpression(*ApplyExpression)
	VisitListLiteral(*ListLiteral)
	VisitNumberLiteral(*NumberLiteral)
	VisitStringLiteral(*StringLiteral)
	VisitBooleanLiteral(*BooleanLiteral)
	VisitNullLiteral(*NullLiteral)
	VisitIfExpression(*IfExpression)
	VisitFunctionLiteral(*FunctionLiteral)
}
