package ast

// Precedence levels, tightest first. Juxtaposition binds tighter than any
// named operator; operators missing from the table sit just below it.
const (
	ApplyLevel   = 1
	UnknownLevel = 2
	MaxLevel     = 12
)

var infixLevels = map[string]int{
	"^":  3,
	"*":  4,
	"/":  4,
	"%":  4,
	"+":  5,
	"-":  5,
	"<<": 6,
	">>": 6,
	"&":  7,
	"|":  8,
	">=": 9,
	"<=": 9,
	">":  9,
	"<":  9,
	"==": 10,
	"!=": 10,
	"&&": 11,
	"||": 12,
}

// Level returns the precedence level of op.
func Level(op Operator) int {
	if op.Kind == OpApply {
		return ApplyLevel
	}
	if lvl, ok := infixLevels[op.Name.Value]; ok {
		return lvl
	}
	return UnknownLevel
}

type chainItem struct {
	expr Expression
	op   Operator
	isOp bool
}

func flattenChain(expr Expression, items []chainItem) []chainItem {
	if app, ok := expr.(*ApplyExpression); ok {
		items = flattenChain(app.Left, items)
		items = append(items, chainItem{op: app.Operator, isOp: true})
		return flattenChain(app.Right, items)
	}
	return append(items, chainItem{expr: expr})
}

// FixPrecedence rebuilds a chain of binary applications so that operators
// bind by level and associate left-to-right within a level. Grouped
// expressions are operands and are not descended into.
//
// A chain that does not reduce to a single expression means the producer
// broke the alternating operand/operator shape; that is a bug, so it panics.
func FixPrecedence(expr Expression) Expression {
	items := flattenChain(expr, nil)

	for level := 0; level <= MaxLevel; level++ {
		i := 0
		for i < len(items) {
			item := items[i]
			if !item.isOp || Level(item.op) != level {
				i++
				continue
			}
			if i == 0 || i == len(items)-1 || items[i-1].isOp || items[i+1].isOp ||
				items[i-1].expr == nil || items[i+1].expr == nil {
				panic("binary operation does not have expression on either side")
			}
			left, right := items[i-1].expr, items[i+1].expr
			combined := chainItem{expr: &ApplyExpression{
				Token:    left.GetToken(),
				Left:     left,
				Operator: item.op,
				Right:    right,
			}}
			// Replace left, op, right with the combined operand and resume
			// scanning just after it.
			items[i-1] = combined
			items = append(items[:i], items[i+2:]...)
		}
	}

	if len(items) != 1 {
		panic("binary expression was not reduced to one expression")
	}
	if items[0].isOp {
		panic("binary expression was reduced to an operator")
	}
	return items[0].expr
}
