package parser

import (
	"strings"

	"github.com/funvibe/asc/internal/ast"
	"github.com/funvibe/asc/internal/config"
	"github.com/funvibe/asc/internal/diagnostics"
	"github.com/funvibe/asc/internal/pipeline"
	"github.com/funvibe/asc/internal/token"
)

// MaxRecursionDepth bounds expression nesting.
const MaxRecursionDepth = 1000

type Parser struct {
	tokens []token.Token
	pos    int
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token

	depth int
}

func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{tokens: tokens, ctx: ctx}
	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) tokenAt(i int) token.Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		return token.Token{Type: token.EOF, Line: last.Line, Column: last.Column}
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.tokenAt(p.pos)
	p.pos++
}

// peekTokenN looks n tokens past peekToken.
func (p *Parser) peekTokenN(n int) token.Token {
	return p.tokenAt(p.pos + n - 1)
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType, what string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(what)
	return false
}

func (p *Parser) peekError(what string) {
	code := diagnostics.ErrP001
	if what == "';'" {
		code = diagnostics.ErrP005
	}
	p.errorAt(code, p.peekToken, "expected %s, got %s", what, describe(p.peekToken))
}

func (p *Parser) errorAt(code diagnostics.ErrorCode, tok token.Token, msg string, args ...interface{}) {
	p.ctx.AddError(diagnostics.NewError(code, tok, msg, args...))
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.ILLEGAL:
		return "invalid token"
	}
	return "'" + tok.Lexeme + "'"
}

// ParseProgram parses declarations until EOF. A broken declaration is
// skipped up to the next ';' so that later errors are still reported.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.ctx.FilePath}

	for !p.curTokenIs(token.EOF) {
		decl := p.parseDecl()
		if decl != nil && p.expectPeek(token.SEMICOLON, "';'") {
			program.Decls = append(program.Decls, decl)
			p.nextToken()
			continue
		}
		p.synchronize()
	}

	return program
}

func (p *Parser) synchronize() {
	for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
	if p.curTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
}

// parseBinding reads a name that is being declared (not referenced).
func (p *Parser) parseBinding() *ast.Identifier {
	if !p.curTokenIs(token.IDENT) {
		p.errorAt(diagnostics.ErrP001, p.curToken, "expected a name, got %s", describe(p.curToken))
		return nil
	}
	if strings.HasPrefix(p.curToken.Lexeme, config.GlobalPrefix) {
		p.errorAt(diagnostics.ErrP001, p.curToken, "cannot declare global name %s", p.curToken.Lexeme)
		return nil
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

// parseParams reads names while the next token is an identifier.
func (p *Parser) parseParams() ([]*ast.Identifier, bool) {
	var params []*ast.Identifier
	for p.peekTokenIs(token.IDENT) {
		p.nextToken()
		param := p.parseBinding()
		if param == nil {
			return nil, false
		}
		params = append(params, param)
	}
	return params, true
}

// parseDecl parses name params '=' expr, leaving curToken on the last token
// of the body.
func (p *Parser) parseDecl() *ast.Decl {
	name := p.parseBinding()
	if name == nil {
		return nil
	}
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	if !p.expectPeek(token.ASSIGN, "'='") {
		return nil
	}
	p.nextToken()
	body := p.parseExpression()
	if body == nil {
		return nil
	}
	return &ast.Decl{Name: name, Params: params, Body: body}
}
