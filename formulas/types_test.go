package formulas

import "testing"

func TestFormulaAppliesTo(t *testing.T) {
	tableA := "table-a"

	tests := []struct {
		name    string
		tableID *string
		query   string
		want    bool
	}{
		{"workspace-wide applies everywhere", nil, "table-a", true},
		{"workspace-wide applies to empty query", nil, "", true},
		{"scoped matches its table", &tableA, "table-a", true},
		{"scoped rejects other tables", &tableA, "table-b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Formula{ID: "f-1", TableID: tt.tableID}
			if got := f.AppliesTo(tt.query); got != tt.want {
				t.Errorf("AppliesTo(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFormulaTypes(t *testing.T) {
	if TypeCellValidation != "CELL_VALIDATION" {
		t.Errorf("TypeCellValidation = %s", TypeCellValidation)
	}
	if TypeRelational != "RELATIONAL" {
		t.Errorf("TypeRelational = %s", TypeRelational)
	}
}
