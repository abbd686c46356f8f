package formulas

import "time"

// FormulaType distinguishes how a formula was authored in the UI.
// CELL_VALIDATION compares a variable against constants ("[İletkenlik] > 320"),
// RELATIONAL compares variables against each other.
type FormulaType string

const (
	TypeCellValidation FormulaType = "CELL_VALIDATION"
	TypeRelational     FormulaType = "RELATIONAL"
)

// Formula is a single comparison expression over measured variables,
// authored by a lab technician to flag cells in a measurement table.
// The engine treats it as immutable input; its lifecycle is owned by
// the CRUD layer.
type Formula struct {
	ID          string
	WorkspaceID string
	// TableID scopes the formula to one measurement table.
	// nil means the formula applies to every table in the workspace.
	TableID     *string
	Name        string
	Description string
	Expression  string
	Color       string // hex, "#rrggbb"
	Type        FormulaType
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AppliesTo reports whether the formula is in scope for the given table.
func (f *Formula) AppliesTo(tableID string) bool {
	return f.TableID == nil || *f.TableID == tableID
}
