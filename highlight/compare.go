package highlight

import "math"

// Epsilon absorbs floating-point drift introduced by arithmetic
// substitution, so 0.1 + 0.2 == 0.3 holds.
const Epsilon = 1e-9

// Compare applies a relational operator with floating-point tolerance.
// Equality (and the equality half of >= and <=) is tested within Epsilon.
// Any NaN operand or unknown operator yields false, never an error.
func Compare(left float64, op string, right float64) bool {
	if math.IsNaN(left) || math.IsNaN(right) {
		return false
	}

	switch op {
	case OpGT:
		return left > right
	case OpLT:
		return left < right
	case OpGTE:
		return left > right || math.Abs(left-right) <= Epsilon
	case OpLTE:
		return left < right || math.Abs(left-right) <= Epsilon
	case OpEQ:
		return math.Abs(left-right) <= Epsilon
	case OpNEQ:
		return math.Abs(left-right) > Epsilon
	}
	return false
}
