package highlight

import (
	"fmt"
	"strings"
)

// MalformedFormulaError indicates a formula string that does not contain
// exactly one top-level comparison operator, or is otherwise unparsable.
// The formula is excluded from the evaluation pass; the batch continues.
type MalformedFormulaError struct {
	Raw    string
	Reason string
}

func (e *MalformedFormulaError) Error() string {
	return fmt.Sprintf("malformed formula %q: %s", e.Raw, e.Reason)
}

// UnresolvedVariableError indicates that after substitution an expression
// still referenced variables absent from the column's variable map. This is
// the expected case for most cells and is treated as a silent non-match.
type UnresolvedVariableError struct {
	Names []string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variables: %s", strings.Join(e.Names, ", "))
}

// NonNumericResultError indicates the arithmetic produced NaN or an
// infinity (e.g. division by zero). Treated as a non-match.
type NonNumericResultError struct {
	Expression string
}

func (e *NonNumericResultError) Error() string {
	return fmt.Sprintf("expression %q did not produce a finite number", e.Expression)
}

// InvalidTableShapeError is the only fatal evaluation error: the supplied
// table has no "Variable" column.
type InvalidTableShapeError struct {
	Reason string
}

func (e *InvalidTableShapeError) Error() string {
	return "invalid table shape: " + e.Reason
}
