package highlight

import (
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	testCases := []struct {
		name  string
		left  float64
		op    string
		right float64
		want  bool
	}{
		{"Greater true", 374, ">", 170.4, true},
		{"Greater false", 0.01, ">", 0.05, false},
		{"Less true", 0.01, "<", 0.05, true},
		{"GTE equal", 5, ">=", 5, true},
		{"LTE equal", 5, "<=", 5, true},
		{"Equal exact", 7, "==", 7, true},
		{"Not equal", 7, "!=", 7.5, true},
		{"Unknown operator", 1, "=", 1, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.left, tc.op, tc.right); got != tc.want {
				t.Errorf("Compare(%v, %q, %v) = %v, want %v", tc.left, tc.op, tc.right, got, tc.want)
			}
		})
	}
}

// Equality is epsilon-tolerant to absorb float drift from substitution.
func TestCompareTolerance(t *testing.T) {
	if !Compare(0.1+0.2, "==", 0.3) {
		t.Error("0.1 + 0.2 == 0.3 should hold under epsilon tolerance")
	}
	if Compare(0.1+0.2, "!=", 0.3) {
		t.Error("0.1 + 0.2 != 0.3 should be false under epsilon tolerance")
	}
	if !Compare(0.1+0.2, ">=", 0.3) {
		t.Error("0.1 + 0.2 >= 0.3 should hold under epsilon tolerance")
	}
	if !Compare(0.1+0.2, "<=", 0.3) {
		t.Error("0.1 + 0.2 <= 0.3 should hold under epsilon tolerance")
	}
}

// NaN operands always compare false, for every operator.
func TestCompareNaN(t *testing.T) {
	nan := math.NaN()
	for _, op := range []string{">", "<", ">=", "<=", "==", "!="} {
		if Compare(nan, op, 1) {
			t.Errorf("Compare(NaN, %q, 1) should be false", op)
		}
		if Compare(1, op, nan) {
			t.Errorf("Compare(1, %q, NaN) should be false", op)
		}
	}
}
