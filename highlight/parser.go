package highlight

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparison operators permitted at the top level of a formula.
const (
	OpGT  = ">"
	OpLT  = "<"
	OpGTE = ">="
	OpLTE = "<="
	OpEQ  = "=="
	OpNEQ = "!="
)

// Parse splits a raw formula string into a left expression, exactly one
// comparison operator, and a right expression, and extracts the referenced
// variable names. The operator scan skips bracketed references, so a
// variable name may contain comparison characters.
//
// Returns *MalformedFormulaError when the string has zero or more than one
// top-level comparison operator, an empty side, or an unclosed bracket.
func Parse(raw string) (*ParsedFormula, error) {
	type opHit struct {
		pos int
		op  string
	}
	var hits []opHit

	inBracket := false
	for i := 0; i < len(raw); {
		c := raw[i]
		if inBracket {
			if c == ']' {
				inBracket = false
			}
			i++
			continue
		}
		switch c {
		case '[':
			inBracket = true
			i++
		case '>', '<', '!', '=':
			if i+1 < len(raw) && raw[i+1] == '=' {
				switch op := raw[i : i+2]; op {
				case OpGTE, OpLTE, OpEQ, OpNEQ:
					hits = append(hits, opHit{i, op})
					i += 2
					continue
				}
			}
			if c == '>' || c == '<' {
				hits = append(hits, opHit{i, string(c)})
			}
			i++
		default:
			i++
		}
	}

	if inBracket {
		return nil, &MalformedFormulaError{Raw: raw, Reason: "unclosed bracket"}
	}
	if len(hits) == 0 {
		return nil, &MalformedFormulaError{Raw: raw, Reason: "no comparison operator"}
	}
	if len(hits) > 1 {
		return nil, &MalformedFormulaError{
			Raw:    raw,
			Reason: fmt.Sprintf("%d comparison operators, want exactly one", len(hits)),
		}
	}

	h := hits[0]
	left := strings.TrimSpace(raw[:h.pos])
	right := strings.TrimSpace(raw[h.pos+len(h.op):])
	if left == "" {
		return nil, &MalformedFormulaError{Raw: raw, Reason: "empty left expression"}
	}
	if right == "" {
		return nil, &MalformedFormulaError{Raw: raw, Reason: "empty right expression"}
	}

	vars := extractVariables(left)
	vars = append(vars, extractVariables(right)...)

	return &ParsedFormula{
		LeftExpression:  left,
		Operator:        h.op,
		RightExpression: right,
		Variables:       dedupeVariables(vars),
	}, nil
}

// extractVariables returns the variable names referenced by one side of a
// formula. Bracketed references ([Toplam Fosfor]) are the canonical form;
// bare segments between arithmetic operators and parentheses are also
// accepted, because formulas arrive both ways. A segment that parses as a
// number or is a true/false/null keyword is not a variable.
func extractVariables(expr string) []string {
	var names []string
	var seg, bracket strings.Builder

	flush := func() {
		name := NormalizeVariable(seg.String())
		seg.Reset()
		if name == "" {
			return
		}
		if _, err := strconv.ParseFloat(name, 64); err == nil {
			return
		}
		switch strings.ToLower(name) {
		case "true", "false", "null":
			return
		}
		names = append(names, name)
	}

	inBracket := false
	for _, r := range expr {
		if inBracket {
			if r == ']' {
				inBracket = false
				if name := NormalizeVariable(bracket.String()); name != "" {
					names = append(names, name)
				}
				bracket.Reset()
			} else {
				bracket.WriteRune(r)
			}
			continue
		}
		switch r {
		case '[':
			flush()
			inBracket = true
		case '+', '-', '*', '/', '(', ')':
			flush()
		default:
			seg.WriteRune(r)
		}
	}
	flush()

	return names
}

// dedupeVariables removes duplicate names case-insensitively while
// preserving first-seen order and spelling.
func dedupeVariables(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
