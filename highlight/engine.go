package highlight

import (
	"fmt"
	"strings"

	"github.com/ecetin/labportal/formulas"
)

// Engine evaluates formulas against measurement tables and produces
// highlighted cells. It holds no per-call state: aside from the shared
// parse cache, every Evaluate call is a pure function of its inputs, so
// one Engine may serve concurrent requests.
type Engine struct {
	cache *ParseCache
}

// NewEngine creates an engine around the given parse cache. A nil cache
// gets a private one.
func NewEngine(cache *ParseCache) *Engine {
	if cache == nil {
		cache = NewParseCache()
	}
	return &Engine{cache: cache}
}

// Cache exposes the engine's parse cache (for tests and lifecycle hooks).
func (e *Engine) Cache() *ParseCache {
	return e.cache
}

// compiledFormula pairs a formula with its parse and a case-folded set of
// the variables it references.
type compiledFormula struct {
	f      *formulas.Formula
	pf     *ParsedFormula
	varSet map[string]bool
}

// columnOutcome is one formula's verdict for one value column. The verdict
// is identical for every row the formula touches in that column, so it is
// computed once.
type columnOutcome struct {
	matched     bool
	left, right float64
}

// Evaluate runs every active formula against every value column of the
// table and returns the highlighted cells, plus one issue per formula that
// could not participate (malformed expression). Per-(formula, cell)
// evaluation failures are silent non-matches; the only fatal error is a
// table without a "Variable" column.
func (e *Engine) Evaluate(active []*formulas.Formula, table *DataTable) ([]*HighlightedCell, []*FormulaIssue, error) {
	variableCol := table.VariableColumnIndex()
	if variableCol < 0 {
		return nil, nil, &InvalidTableShapeError{Reason: fmt.Sprintf("no %q column", VariableColumnName)}
	}

	var entries []compiledFormula
	var issues []*FormulaIssue
	for _, f := range active {
		pf, err := e.cache.GetOrParse(f.Expression)
		if err != nil {
			issues = append(issues, &FormulaIssue{
				FormulaID: f.ID,
				Name:      f.Name,
				Error:     err.Error(),
			})
			continue
		}
		varSet := make(map[string]bool, len(pf.Variables))
		for _, v := range pf.Variables {
			varSet[strings.ToLower(v)] = true
		}
		entries = append(entries, compiledFormula{f: f, pf: pf, varSet: varSet})
	}

	type cellKey struct {
		row int
		col string
	}
	type cellAccum struct {
		cell   *HighlightedCell
		colors []string
		names  []string
		seen   map[string]bool
	}
	accum := make(map[cellKey]*cellAccum)
	var order []cellKey

	for _, colIdx := range table.ValueColumnIndexes() {
		colName := table.Columns[colIdx]
		vm := BuildVariableMap(table, variableCol, colIdx)

		outcomes := make([]columnOutcome, len(entries))
		for i := range entries {
			outcomes[i] = evaluateForColumn(entries[i].pf, vm)
		}

		for rowIdx, row := range table.Data {
			if variableCol >= len(row) {
				continue
			}
			name, _ := row[variableCol].(string)
			rowVar := strings.ToLower(NormalizeVariable(name))
			if rowVar == "" {
				continue
			}

			for i := range entries {
				if !outcomes[i].matched || !entries[i].varSet[rowVar] {
					continue
				}

				key := cellKey{rowIdx, colName}
				acc, ok := accum[key]
				if !ok {
					acc = &cellAccum{
						cell: &HighlightedCell{
							Row: fmt.Sprintf("row-%d", rowIdx+1),
							Col: colName,
						},
						seen: make(map[string]bool),
					}
					accum[key] = acc
					order = append(order, key)
				}

				f := entries[i].f
				if acc.seen[f.ID] {
					continue
				}
				acc.seen[f.ID] = true

				left, right := outcomes[i].left, outcomes[i].right
				acc.cell.FormulaIDs = append(acc.cell.FormulaIDs, f.ID)
				acc.cell.FormulaDetails = append(acc.cell.FormulaDetails, FormulaDetail{
					ID:          f.ID,
					Name:        f.Name,
					Formula:     f.Expression,
					LeftResult:  &left,
					RightResult: &right,
				})
				acc.colors = append(acc.colors, f.Color)
				acc.names = append(acc.names, f.Name)
			}
		}
	}

	cells := make([]*HighlightedCell, 0, len(order))
	for _, k := range order {
		acc := accum[k]
		if len(acc.colors) == 1 {
			acc.cell.Color = acc.colors[0]
		} else {
			acc.cell.Color = BlendColors(acc.colors)
		}
		acc.cell.Message = joinUnique(acc.names)
		cells = append(cells, acc.cell)
	}

	return cells, issues, nil
}

// evaluateForColumn decides whether a parsed formula matches in one value
// column: every referenced variable must resolve and the comparison must
// hold. Evaluation failures are a non-match, never an abort.
func evaluateForColumn(pf *ParsedFormula, vm *VariableMap) columnOutcome {
	for _, v := range pf.Variables {
		if !vm.Has(v) {
			return columnOutcome{}
		}
	}

	left, err := EvaluateExpression(pf.LeftExpression, vm)
	if err != nil {
		return columnOutcome{}
	}
	right, err := EvaluateExpression(pf.RightExpression, vm)
	if err != nil {
		return columnOutcome{}
	}

	return columnOutcome{
		matched: Compare(left, pf.Operator, right),
		left:    left,
		right:   right,
	}
}

func joinUnique(names []string) string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return strings.Join(out, ", ")
}
