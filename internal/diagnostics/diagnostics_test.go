package diagnostics

import (
	"bytes"
	"errors"
	"testing"

	"github.com/funvibe/asc/internal/token"
)

func TestErrorString(t *testing.T) {
	tok := token.Token{Type: token.IDENT, Lexeme: "y", Line: 2, Column: 9}
	tests := []struct {
		name string
		err  *DiagnosticError
		want string
	}{
		{"file and position", &DiagnosticError{Code: ErrC002, Token: tok, Message: "y is not defined", File: "main.asc"},
			"main.asc:2:9: unresolved identifier [C002]: y is not defined"},
		{"position only", NewError(ErrP001, tok, "unexpected %s", "y"),
			"2:9: syntax error [P001]: unexpected y"},
		{"no location", NewError(ErrD001, token.Token{}, "disk full"),
			"i/o error [D001]: disk full"},
		{"generic compile error", NewError(ErrC003, tok, "table too large"),
			"2:9: compile error [C003]: table too large"},
		{"unknown code", NewError("X999", token.Token{}, "odd"),
			"error [X999]: odd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewErrorKeepsPercent(t *testing.T) {
	err := NewError(ErrP003, token.Token{}, "unexpected character %")
	if err.Message != "unexpected character %" {
		t.Errorf("message rewritten: %q", err.Message)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Print([]error{
		&DiagnosticError{Code: ErrC001, Token: token.Token{Line: 1, Column: 1}, Message: "x is already defined in this scope", File: "a.asc"},
		errors.New("plain failure"),
	})
	want := "a.asc:1:1: duplicate identifier [C001]: x is already defined in this scope\n" +
		"error: plain failure\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPrinterIsPlainForBuffers(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	if p.color {
		t.Error("colour enabled for a non-terminal writer")
	}
	if got := p.paint(31, "x"); got != "x" {
		t.Errorf("paint = %q", got)
	}
}
