package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Printer writes diagnostics, coloured when the destination is a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer for w. Colour is enabled only when w is an
// *os.File attached to a terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: detectColor(w)}
}

func detectColor(w io.Writer) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func (p *Printer) paint(code int, s string) string {
	if !p.color {
		return s
	}
	return fmt.Sprintf("\033[%dm%s\033[0m", code, s)
}

// Print writes one line per error. Non-diagnostic errors are printed verbatim.
func (p *Printer) Print(errs []error) {
	for _, err := range errs {
		de, ok := err.(*DiagnosticError)
		if !ok {
			fmt.Fprintf(p.w, "%s %s\n", p.paint(31, "error:"), err)
			continue
		}
		loc := de.File
		if de.Token.Line > 0 {
			if loc != "" {
				loc += ":"
			}
			loc += fmt.Sprintf("%d:%d", de.Token.Line, de.Token.Column)
		}
		if loc != "" {
			loc = p.paint(1, loc) + ": "
		}
		fmt.Fprintf(p.w, "%s%s %s\n", loc, p.paint(31, fmt.Sprintf("%s [%s]:", Title(de.Code), de.Code)), de.Message)
	}
}
