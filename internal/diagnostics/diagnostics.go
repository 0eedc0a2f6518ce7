// Package diagnostics defines the coded, position-carrying errors reported
// by every compilation stage.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/asc/internal/token"
)

type ErrorCode string

const (
	// Lexer / parser
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // malformed literal
	ErrP003 ErrorCode = "P003" // illegal character
	ErrP004 ErrorCode = "P004" // unterminated string or group
	ErrP005 ErrorCode = "P005" // missing declaration terminator

	// Compiler
	ErrC001 ErrorCode = "C001" // duplicate identifier
	ErrC002 ErrorCode = "C002" // unresolved identifier
	ErrC003 ErrorCode = "C003" // any other lowering failure

	// Driver
	ErrD001 ErrorCode = "D001" // input/output failure
)

var codeTitles = map[ErrorCode]string{
	ErrP001: "syntax error",
	ErrP002: "invalid literal",
	ErrP003: "illegal character",
	ErrP004: "unterminated input",
	ErrP005: "syntax error",
	ErrC001: "duplicate identifier",
	ErrC002: "unresolved identifier",
	ErrC003: "compile error",
	ErrD001: "i/o error",
}

// DiagnosticError is a single reportable problem in a source file.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	Message string
	File    string
}

func (e *DiagnosticError) Error() string {
	loc := ""
	if e.File != "" {
		loc = e.File + ":"
	}
	if e.Token.Line > 0 {
		loc += fmt.Sprintf("%d:%d:", e.Token.Line, e.Token.Column)
	}
	if loc != "" {
		loc += " "
	}
	return fmt.Sprintf("%s%s [%s]: %s", loc, Title(e.Code), e.Code, e.Message)
}

// Title returns the short human-readable name of an error code.
func Title(code ErrorCode) string {
	if t, ok := codeTitles[code]; ok {
		return t
	}
	return "error"
}

// NewError builds a diagnostic. When args are given, msg is used as a format string.
func NewError(code ErrorCode, tok token.Token, msg string, args ...interface{}) *DiagnosticError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}
