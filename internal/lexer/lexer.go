package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/asc/internal/literal"
	"github.com/funvibe/asc/internal/token"
)

// operatorChars may appear in operator tokens; a maximal run forms one token.
const operatorChars = "+-*/%^<>=!&|.~?:$"

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// Tokenize reads the whole input. The last token is always EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.line, l.column)
	case '\\':
		tok = newToken(token.BACKSLASH, l.ch, l.line, l.column)
	case '"':
		return l.readString()
	case '`':
		return l.readInfixName()
	case '@':
		if !isLetter(l.peekChar()) {
			tok = l.illegal("'@' must be followed by a name")
			break
		}
		startLine, startCol := l.line, l.column
		position := l.position
		l.readChar() // @
		l.readIdentifier()
		lexeme := l.input[position:l.position]
		return token.Token{Type: token.IDENT, Lexeme: lexeme, Literal: lexeme, Line: startLine, Column: startCol}
	case 0:
		tok.Lexeme = ""
		tok.Type = token.EOF
		tok.Line = l.line
		tok.Column = l.column
	default:
		if isLetter(l.ch) {
			startLine, startCol := l.line, l.column
			lexeme := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Literal: lexeme, Line: startLine, Column: startCol}
		} else if isDigit(l.ch) {
			return l.readNumber()
		} else if isOperatorChar(l.ch) {
			return l.readOperator()
		}
		tok = l.illegal("unexpected character " + string(l.ch))
	}

	l.readChar()
	return tok
}

func (l *Lexer) illegal(msg string) token.Token {
	return token.Token{Type: token.ILLEGAL, Lexeme: string(l.ch), Literal: msg, Line: l.line, Column: l.column}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readInfixName reads `name`, a function used as an infix operator.
func (l *Lexer) readInfixName() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	l.readChar() // `
	if !isLetter(l.ch) && l.ch != '@' {
		return token.Token{Type: token.ILLEGAL, Lexeme: "`", Literal: "expected a name after '`'", Line: startLine, Column: startCol}
	}
	nameStart := l.position
	if l.ch == '@' {
		l.readChar()
	}
	l.readIdentifier()
	name := l.input[nameStart:l.position]
	if l.ch != '`' {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[position:l.position], Literal: "unterminated infix name, expected '`'", Line: startLine, Column: startCol}
	}
	l.readChar() // closing `
	return token.Token{Type: token.INFIX, Lexeme: l.input[position:l.position], Literal: name, Line: startLine, Column: startCol}
}

func (l *Lexer) readOperator() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	for isOperatorChar(l.ch) {
		l.readChar()
	}
	lexeme := l.input[position:l.position]
	switch lexeme {
	case "=":
		return token.Token{Type: token.ASSIGN, Lexeme: lexeme, Literal: lexeme, Line: startLine, Column: startCol}
	case "->":
		return token.Token{Type: token.ARROW, Lexeme: lexeme, Literal: lexeme, Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.OPERATOR, Lexeme: lexeme, Literal: lexeme, Line: startLine, Column: startCol}
}

// readString scans up to the closing quote, honouring backslash escapes, and
// decodes the body with literal.ParseString.
func (l *Lexer) readString() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	escaped := false
	for {
		l.readChar()
		if l.ch == 0 {
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[position:], Literal: "unterminated string", Line: startLine, Column: startCol}
		}
		if escaped {
			escaped = false
			continue
		}
		if l.ch == '\\' {
			escaped = true
			continue
		}
		if l.ch == '"' {
			break
		}
	}
	l.readChar() // closing "
	lexeme := l.input[position:l.position]
	val, err := literal.ParseString(lexeme)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.STRING, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
}

// readNumber consumes the longest run that can belong to a number, including
// trailing letters, so that 12abc is reported as one malformed literal.
func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position

	for isDigit(l.ch) || isLetter(l.ch) {
		exp := l.ch == 'e' || l.ch == 'E'
		l.readChar()
		if exp && (l.ch == '+' || l.ch == '-') && isDigit(l.peekChar()) && !l.isRadixLiteral(position) {
			l.readChar()
		}
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // .
		for isDigit(l.ch) || isLetter(l.ch) {
			exp := l.ch == 'e' || l.ch == 'E'
			l.readChar()
			if exp && (l.ch == '+' || l.ch == '-') && isDigit(l.peekChar()) {
				l.readChar()
			}
		}
	}

	lexeme := l.input[position:l.position]
	val, err := literal.ParseNumber(lexeme)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
}

// isRadixLiteral reports whether the number starting at start has a 0x/0b/0o
// prefix; there 'e' is a digit, not an exponent marker.
func (l *Lexer) isRadixLiteral(start int) bool {
	prefix := l.input[start:]
	return strings.HasPrefix(prefix, "0x") || strings.HasPrefix(prefix, "0b") || strings.HasPrefix(prefix, "0o")
}

func isOperatorChar(ch rune) bool {
	return ch != 0 && strings.ContainsRune(operatorChars, ch)
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		// Comments run to the end of the line
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

