package highlight

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSplitsOnOperator(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		left     string
		op       string
		right    string
		varCount int
	}{
		{"Bracketed against constant", "[İletkenlik] > 320", "[İletkenlik]", ">", "320", 1},
		{"Bare variables", "İletkenlik > Alkalinite Tayini", "İletkenlik", ">", "Alkalinite Tayini", 2},
		{"Composite with parens", "([Toplam Fosfor] + [Orto Fosfat]) <= 5", "([Toplam Fosfor] + [Orto Fosfat])", "<=", "5", 2},
		{"Equality", "[pH] == 7", "[pH]", "==", "7", 1},
		{"Not equal", "[pH] != 7", "[pH]", "!=", "7", 1},
		{"Greater or equal", "[LOQ Değeri] >= 0.01", "[LOQ Değeri]", ">=", "0.01", 1},
		{"Less than", "[Nitrat] < 50", "[Nitrat]", "<", "50", 1},
		{"No spaces", "[Nitrat]<50", "[Nitrat]", "<", "50", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pf, err := Parse(tc.raw)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.raw, err)
			}
			if pf.LeftExpression != tc.left {
				t.Errorf("left = %q, want %q", pf.LeftExpression, tc.left)
			}
			if pf.Operator != tc.op {
				t.Errorf("operator = %q, want %q", pf.Operator, tc.op)
			}
			if pf.RightExpression != tc.right {
				t.Errorf("right = %q, want %q", pf.RightExpression, tc.right)
			}
			if len(pf.Variables) != tc.varCount {
				t.Errorf("variables = %v, want %d names", pf.Variables, tc.varCount)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"No operator", "[İletkenlik] + 320"},
		{"Two operators", "[a] > 1 > 2"},
		{"Mixed operators", "[a] > [b] == [c]"},
		{"Empty left", "> 320"},
		{"Empty right", "[İletkenlik] >"},
		{"Empty string", ""},
		{"Unclosed bracket", "[İletkenlik > 320"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			if err == nil {
				t.Fatalf("Parse(%q) should return error", tc.raw)
			}
			var malformed *MalformedFormulaError
			if !errors.As(err, &malformed) {
				t.Errorf("error should be *MalformedFormulaError, got %T", err)
			}
		})
	}
}

// Comparison characters inside a bracketed name must not count as
// top-level operators.
func TestParseOperatorInsideBracket(t *testing.T) {
	pf, err := Parse("[Çözünmüş O2 >saha<] >= 4")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if pf.Operator != ">=" {
		t.Errorf("operator = %q, want >=", pf.Operator)
	}
	if len(pf.Variables) != 1 || pf.Variables[0] != "Çözünmüş O2 >saha<" {
		t.Errorf("variables = %v", pf.Variables)
	}
}

func TestParseExtractsVariables(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []string
	}{
		{"Dedup bracketed and bare", "[Fosfor] + Fosfor > 1", []string{"Fosfor"}},
		{"Case-insensitive dedup", "FOSFOR + Fosfor > 1", []string{"FOSFOR"}},
		{"Numbers are not variables", "2 + [a] * 3.5 > 0.1", []string{"a"}},
		{"Keywords are not variables", "[a] > null", []string{"a"}},
		{"Trailing comma stripped", "[Fosfor,] > 1", []string{"Fosfor"}},
		{"Bare multiword names", "(İletkenlik + Toplam Fosfor) > (Orto Fosfat * 2 + Alkalinite Tayini)",
			[]string{"İletkenlik", "Toplam Fosfor", "Orto Fosfat", "Alkalinite Tayini"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pf, err := Parse(tc.raw)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.raw, err)
			}
			if len(pf.Variables) != len(tc.want) {
				t.Fatalf("variables = %v, want %v", pf.Variables, tc.want)
			}
			for i, v := range tc.want {
				if pf.Variables[i] != v {
					t.Errorf("variables[%d] = %q, want %q", i, pf.Variables[i], v)
				}
			}
		})
	}
}

// Reassembling the split parts (trim-normalized) must reproduce the
// original for the strings the formula builder emits.
func TestParseRoundTrip(t *testing.T) {
	builderStrings := []string{
		"[İletkenlik] > 320",
		"[Toplam Fosfor] <= [Orto Fosfat]",
		"[pH] == 7.4",
		"[Amonyum Azotu] != 0",
		"[Nitrat] >= 25",
		"[Sıcaklık] < 30",
	}

	for _, raw := range builderStrings {
		pf, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", raw, err)
		}
		rebuilt := pf.LeftExpression + " " + pf.Operator + " " + pf.RightExpression
		if rebuilt != strings.Join(strings.Fields(raw), " ") {
			t.Errorf("round trip of %q produced %q", raw, rebuilt)
		}
	}
}
