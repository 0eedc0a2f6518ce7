package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string      // source text of the token
	Literal interface{} // decoded value: float64 for NUMBER, string for STRING/IDENT/OP
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT    TokenType = "IDENT"    // foo, @foo
	NUMBER   TokenType = "NUMBER"   // 12, 0x1f, 1.5e3
	STRING   TokenType = "STRING"   // "text"
	OPERATOR TokenType = "OPERATOR" // +, ==, <<, ...
	INFIX    TokenType = "INFIX"    // `max`

	ASSIGN    TokenType = "="
	ARROW     TokenType = "->"
	BACKSLASH TokenType = "\\"
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	LET   TokenType = "LET"
	IN    TokenType = "IN"
	IF    TokenType = "IF"
	THEN  TokenType = "THEN"
	ELSE  TokenType = "ELSE"
	TRUE  TokenType = "TRUE"
	FALSE TokenType = "FALSE"
	NULL  TokenType = "NULL"
)

var keywords = map[string]TokenType{
	"let":   LET,
	"in":    IN,
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
