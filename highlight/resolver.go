package highlight

import (
	"strconv"
	"strings"
)

// NormalizeVariable is the one canonical normalization applied to variable
// names everywhere: at parse-time extraction, at map construction, and at
// lookup. It trims whitespace and strips trailing commas (Excel imports
// leave those behind), repeating until stable.
func NormalizeVariable(name string) string {
	for {
		trimmed := strings.TrimRight(strings.TrimSpace(name), ",")
		if trimmed == name {
			return trimmed
		}
		name = trimmed
	}
}

// VariableMap maps variable names to the numeric reading in one value
// column. It is built fresh per column and never shared across columns or
// evaluation calls. Lookups try the exact spelling first, then a
// case-insensitive fallback.
type VariableMap struct {
	exact  map[string]float64
	folded map[string]float64
}

// Resolve looks up a variable by name, normalizing it first.
func (m *VariableMap) Resolve(name string) (float64, bool) {
	n := NormalizeVariable(name)
	if v, ok := m.exact[n]; ok {
		return v, true
	}
	v, ok := m.folded[strings.ToLower(n)]
	return v, ok
}

// Has reports whether the variable resolves in this column.
func (m *VariableMap) Has(name string) bool {
	_, ok := m.Resolve(name)
	return ok
}

// Len returns the number of distinct exact spellings stored.
func (m *VariableMap) Len() int {
	return len(m.exact)
}

func (m *VariableMap) put(name string, v float64) {
	m.exact[name] = v
	m.folded[strings.ToLower(name)] = v
}

// BuildVariableMap builds the name→number map for one value column. Rows
// with a nil cell, an empty variable name, or a cell that does not parse
// as a number are simply absent from the map; that is not an error. Both
// the normalized name and, if different, the original trimmed spelling are
// stored so a formula referencing either resolves.
func BuildVariableMap(table *DataTable, variableCol, valueCol int) *VariableMap {
	m := &VariableMap{
		exact:  make(map[string]float64),
		folded: make(map[string]float64),
	}

	for _, row := range table.Data {
		if variableCol >= len(row) || valueCol >= len(row) {
			continue
		}

		name, ok := row[variableCol].(string)
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(name)
		normalized := NormalizeVariable(name)
		if normalized == "" {
			continue
		}

		v, ok := cellNumber(row[valueCol])
		if !ok {
			continue
		}

		m.put(normalized, v)
		if trimmed != normalized {
			m.put(trimmed, v)
		}
	}

	return m
}

// cellNumber converts a cell to a number. nil, empty text and unparsable
// text are excluded rather than errors.
func cellNumber(cell any) (float64, bool) {
	switch v := cell.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
