package highlight

// VariableColumnName is the column that holds variable names.
// A DataTable without it cannot be evaluated.
const VariableColumnName = "Variable"

// DefaultMetadataColumns are columns that describe a variable rather than
// carry a measurement; they are never treated as value columns.
var DefaultMetadataColumns = map[string]bool{
	"Data Source": true,
	"Method":      true,
	"Unit":        true,
	"LOQ":         true,
}

// DataTable is a pivoted measurement table: one row per measured variable,
// one column per sampling date (plus the Variable column and metadata
// columns). Cells are string, float64 or nil, exactly as they arrive from
// JSON. The engine never mutates a table.
type DataTable struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// VariableColumnIndex returns the index of the "Variable" column, or -1.
func (t *DataTable) VariableColumnIndex() int {
	for i, c := range t.Columns {
		if c == VariableColumnName {
			return i
		}
	}
	return -1
}

// ValueColumnIndexes returns the indexes of the value columns (sampling
// dates): everything that is neither the Variable column nor metadata.
func (t *DataTable) ValueColumnIndexes() []int {
	var out []int
	for i, c := range t.Columns {
		if c == VariableColumnName || DefaultMetadataColumns[c] {
			continue
		}
		out = append(out, i)
	}
	return out
}

// ParsedFormula is the cached parse result of one formula string:
// a left expression, exactly one comparison operator, a right expression,
// and the deduplicated variable names referenced on either side.
type ParsedFormula struct {
	LeftExpression  string
	Operator        string
	RightExpression string
	Variables       []string
}

// FormulaDetail records one formula's contribution to a highlighted cell,
// including the numeric results of both sides for tooltip/report display.
type FormulaDetail struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Formula     string   `json:"formula"`
	LeftResult  *float64 `json:"leftResult,omitempty"`
	RightResult *float64 `json:"rightResult,omitempty"`
}

// HighlightedCell marks one (row, column) cell as matched by one or more
// formulas. Row keys are "row-N" with N 1-based. Color is the RGB average
// of every contributing formula's color when more than one matched.
type HighlightedCell struct {
	Row            string          `json:"row"`
	Col            string          `json:"col"`
	Color          string          `json:"color"`
	Message        string          `json:"message"`
	FormulaIDs     []string        `json:"formulaIds"`
	FormulaDetails []FormulaDetail `json:"formulaDetails"`
}

// FormulaIssue reports a formula that could not participate in an
// evaluation pass (e.g. it failed to parse). Issues never abort the batch.
type FormulaIssue struct {
	FormulaID string `json:"formulaId"`
	Name      string `json:"name"`
	Error     string `json:"error"`
}
