package feedcalc

import (
	"fmt"
	"regexp"

	"github.com/Knetic/govaluate"
)

// Formula rules evaluate a user-supplied arithmetic expression over a single
// variable. Expressions are parsed, never executed as code: only numbers,
// arithmetic operators, parentheses and the `weight` identifier are accepted.
var formulaCharset = regexp.MustCompile(`^[0-9a-zA-Z_+\-*/(). ]+$`)

// EvaluateFormula computes expr with the given weight bound. Any identifier
// other than weight, and any non-arithmetic token, is rejected.
func EvaluateFormula(expr string, weight float64) (float64, error) {
	if expr == "" {
		return 0, fmt.Errorf("empty formula expression")
	}
	if !formulaCharset.MatchString(expr) {
		return 0, fmt.Errorf("formula contains unsupported characters")
	}

	ev, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return 0, fmt.Errorf("invalid formula: %w", err)
	}
	for _, v := range ev.Vars() {
		if v != "weight" {
			return 0, fmt.Errorf("unknown variable %q in formula", v)
		}
	}

	result, err := ev.Evaluate(map[string]interface{}{"weight": weight})
	if err != nil {
		return 0, fmt.Errorf("formula evaluation failed: %w", err)
	}
	value, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("formula did not evaluate to a number")
	}
	return value, nil
}
