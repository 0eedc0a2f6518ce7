package prettyprinter

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/asc/internal/ir"
)

// --- IR Printer (three-address listing) ---

// PrintDefs renders a table one entry per line, sorted by identifier, with
// function bodies indented under their entry:
//
//	f = fn(x) {
//	    = call + x _0
//	    _0 = num 1
//	}
func PrintDefs(defs ir.Defs) string {
	var buf bytes.Buffer
	printDefs(&buf, defs, 0)
	return buf.String()
}

func sortedIDs(defs ir.Defs) []string {
	ids := make([]string, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func printDefs(buf *bytes.Buffer, defs ir.Defs, indent int) {
	pad := strings.Repeat("    ", indent)
	for _, id := range sortedIDs(defs) {
		buf.WriteString(pad)
		buf.WriteString(id)
		buf.WriteString(" = ")
		switch d := defs[id].(type) {
		case *ir.Number:
			buf.WriteString("num " + strconv.FormatFloat(d.Value, 'g', -1, 64))
		case *ir.String:
			buf.WriteString("str " + strconv.Quote(d.Value))
		case *ir.Bool:
			buf.WriteString("bool " + strconv.FormatBool(d.Value))
		case *ir.Null:
			buf.WriteString("null")
		case *ir.Matrix:
			parts := make([]string, len(d.Values))
			for i, v := range d.Values {
				switch x := v.(type) {
				case float64:
					parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
				case bool:
					parts[i] = strconv.FormatBool(x)
				}
			}
			buf.WriteString("matrix [" + strings.Join(parts, ", ") + "]")
		case *ir.List:
			buf.WriteString("list [" + strings.Join(d.Items, ", ") + "]")
		case *ir.Call:
			buf.WriteString("call " + d.F)
			for _, a := range d.Args {
				buf.WriteString(" " + a)
			}
		case *ir.Switch:
			buf.WriteString("switch")
			for _, c := range d.Cases {
				if c.IsDefault() {
					buf.WriteString(" | _ -> " + c.Value)
				} else {
					buf.WriteString(" | " + c.Cond + " -> " + c.Value)
				}
			}
		case *ir.Func:
			buf.WriteString("fn(" + strings.Join(d.Params, " ") + ") {\n")
			printDefs(buf, d.Body, indent+1)
			buf.WriteString(pad + "}")
		}
		buf.WriteString("\n")
	}
}
