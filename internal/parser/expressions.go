package parser

import (
	"strings"

	"github.com/funvibe/asc/internal/ast"
	"github.com/funvibe/asc/internal/diagnostics"
	"github.com/funvibe/asc/internal/token"
)

// Every parse function starts with curToken on the first token of the
// construct and returns with curToken on its last token.

func (p *Parser) parseExpression() ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.errorAt(diagnostics.ErrP001, p.curToken, "expression nested too deeply")
		return nil
	}

	switch p.curToken.Type {
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.BACKSLASH:
		return p.parseLambda()
	}
	return p.parseChain()
}

// startsOperand reports whether tok can begin the next operand of a chain.
func startsOperand(tok token.Token) bool {
	switch tok.Type {
	case token.IDENT, token.NUMBER, token.STRING, token.TRUE, token.FALSE, token.NULL,
		token.LPAREN, token.LBRACKET, token.LET, token.IF, token.BACKSLASH, token.ILLEGAL:
		return true
	}
	return false
}

// parseChain reads operands joined by juxtaposition or infix operators into
// a left-nested chain and hands it to the precedence resolver.
func (p *Parser) parseChain() ast.Expression {
	chain := p.parseOperand()
	if chain == nil {
		return nil
	}
	for {
		var op ast.Operator
		switch {
		case p.peekTokenIs(token.OPERATOR):
			p.nextToken()
			op = ast.InfixOp(&ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
			p.nextToken()
		case p.peekTokenIs(token.INFIX):
			p.nextToken()
			name, _ := p.curToken.Literal.(string)
			op = ast.InfixOp(&ast.Identifier{Token: p.curToken, Value: name})
			p.nextToken()
		case startsOperand(p.peekToken):
			p.nextToken()
			op = ast.ApplyOp
		default:
			return ast.FixPrecedence(chain)
		}

		right := p.parseOperand()
		if right == nil {
			return nil
		}
		chain = &ast.ApplyExpression{Token: chain.GetToken(), Left: chain, Operator: op, Right: right}
	}
}

// parseOperand accepts an atom, or an open-ended let/if/lambda that swallows
// the rest of the chain.
func (p *Parser) parseOperand() ast.Expression {
	switch p.curToken.Type {
	case token.LET, token.IF, token.BACKSLASH:
		return p.parseExpression()
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() ast.Expression {
	tok := p.curToken
	switch tok.Type {
	case token.IDENT:
		return &ast.Identifier{Token: tok, Value: tok.Lexeme}
	case token.NUMBER:
		v, _ := tok.Literal.(float64)
		return &ast.NumberLiteral{Token: tok, Value: v}
	case token.STRING:
		v, _ := tok.Literal.(string)
		return &ast.StringLiteral{Token: tok, Value: v}
	case token.TRUE:
		return &ast.BooleanLiteral{Token: tok, Value: true}
	case token.FALSE:
		return &ast.BooleanLiteral{Token: tok, Value: false}
	case token.NULL:
		return &ast.NullLiteral{Token: tok}
	case token.LPAREN:
		return p.parseGroup()
	case token.LBRACKET:
		return p.parseList()
	case token.OPERATOR:
		if signed := p.parseSignedNumber(); signed != nil {
			return signed
		}
	case token.ILLEGAL:
		p.illegalToken(tok)
		return nil
	}
	p.errorAt(diagnostics.ErrP001, tok, "expected an expression, got %s", describe(tok))
	return nil
}

// parseSignedNumber accepts -1 or +1 in operand position. The sign must
// touch the number.
func (p *Parser) parseSignedNumber() ast.Expression {
	sign := p.curToken
	if sign.Lexeme != "-" && sign.Lexeme != "+" {
		return nil
	}
	num := p.peekToken
	if num.Type != token.NUMBER || num.Line != sign.Line || num.Column != sign.Column+1 {
		return nil
	}
	p.nextToken()
	v, _ := num.Literal.(float64)
	if sign.Lexeme == "-" {
		v = -v
	}
	num.Lexeme = sign.Lexeme + num.Lexeme
	num.Line, num.Column = sign.Line, sign.Column
	return &ast.NumberLiteral{Token: num, Value: v}
}

func (p *Parser) illegalToken(tok token.Token) {
	msg, _ := tok.Literal.(string)
	switch {
	case strings.HasPrefix(msg, "unterminated"):
		p.errorAt(diagnostics.ErrP004, tok, msg)
	case strings.HasPrefix(tok.Lexeme, "\"") || (tok.Lexeme != "" && tok.Lexeme[0] >= '0' && tok.Lexeme[0] <= '9'):
		p.errorAt(diagnostics.ErrP002, tok, "%s: %s", tok.Lexeme, msg)
	default:
		p.errorAt(diagnostics.ErrP003, tok, msg)
	}
}

// parseGroup handles (expr) and the operator reference (op).
func (p *Parser) parseGroup() ast.Expression {
	open := p.curToken
	if p.peekTokenIs(token.OPERATOR) && p.peekTokenN(1).Type == token.RPAREN {
		p.nextToken()
		op := p.curToken
		p.nextToken()
		return &ast.Identifier{Token: op, Value: op.Lexeme}
	}

	p.nextToken()
	inner := p.parseExpression()
	if inner == nil {
		return nil
	}
	if !p.closeWith(token.RPAREN, "')'", open) {
		return nil
	}
	return &ast.GroupedExpression{Token: open, Inner: inner}
}

func (p *Parser) parseList() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return list
	}

	p.nextToken()
	for {
		el := p.parseExpression()
		if el == nil {
			return nil
		}
		list.Elements = append(list.Elements, el)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.closeWith(token.RBRACKET, "']'", list.Token) {
		return nil
	}
	return list
}

// closeWith expects the closing bracket of a group opened at open. Hitting
// EOF instead is reported as unterminated.
func (p *Parser) closeWith(t token.TokenType, what string, open token.Token) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	if p.peekTokenIs(token.EOF) {
		p.errorAt(diagnostics.ErrP004, open, "unclosed %s", open.Lexeme)
		return false
	}
	p.peekError(what)
	return false
}

// let name params = value in body
func (p *Parser) parseLet() ast.Expression {
	let := &ast.LetExpression{Token: p.curToken}
	p.nextToken()
	decl := p.parseDecl()
	if decl == nil {
		return nil
	}
	if !p.expectPeek(token.IN, "'in'") {
		return nil
	}
	p.nextToken()
	body := p.parseExpression()
	if body == nil {
		return nil
	}
	let.Decl = decl
	let.Body = body
	return let
}

// if cond then a else b
func (p *Parser) parseIf() ast.Expression {
	expr := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	if expr.Condition = p.parseExpression(); expr.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.THEN, "'then'") {
		return nil
	}
	p.nextToken()
	if expr.Consequence = p.parseExpression(); expr.Consequence == nil {
		return nil
	}
	if !p.expectPeek(token.ELSE, "'else'") {
		return nil
	}
	p.nextToken()
	if expr.Alternative = p.parseExpression(); expr.Alternative == nil {
		return nil
	}
	return expr
}

// \x y -> body
func (p *Parser) parseLambda() ast.Expression {
	fn := &ast.FunctionLiteral{Token: p.curToken}
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	if len(params) == 0 {
		p.errorAt(diagnostics.ErrP001, p.peekToken, "lambda needs at least one parameter")
		return nil
	}
	if !p.expectPeek(token.ARROW, "'->'") {
		return nil
	}
	p.nextToken()
	if fn.Body = p.parseExpression(); fn.Body == nil {
		return nil
	}
	fn.Params = params
	return fn
}
