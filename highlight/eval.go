package highlight

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// EvaluateExpression substitutes resolved variable values into one side of
// a formula and computes the result with the restricted arithmetic
// evaluator. Returns *UnresolvedVariableError when a referenced variable is
// absent from the map, and *NonNumericResultError when the arithmetic does
// not produce a finite number.
func EvaluateExpression(expr string, vars *VariableMap) (float64, error) {
	names := extractVariables(expr)

	// Longest name first, so substituting "Fosfor" cannot corrupt a still
	// pending "Toplam Fosfor" reference.
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})

	s := expr
	for _, name := range names {
		v, ok := vars.Resolve(name)
		if !ok {
			continue
		}
		lit := strconv.FormatFloat(v, 'f', -1, 64)
		s = substituteName(s, name, lit)
	}

	if leftover := extractVariables(s); len(leftover) > 0 {
		return 0, &UnresolvedVariableError{Names: leftover}
	}

	result, err := evalArithmetic(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, &NonNumericResultError{Expression: expr}
	}
	return result, nil
}

// substituteName replaces every occurrence of one variable (bracketed and
// bare) with a numeric literal. Exact-case matches are tried first; the
// case-insensitive pass only runs when the exact pass found nothing.
func substituteName(s, name, lit string) string {
	out, n := replaceBracketed(s, name, lit, false)
	if n == 0 {
		out, _ = replaceBracketed(s, name, lit, true)
	}
	s = out

	out, n = replaceBare(s, name, lit, false)
	if n == 0 {
		out, _ = replaceBare(s, name, lit, true)
	}
	return out
}

// replaceBracketed replaces [name] references, tolerating padding inside
// the brackets. Unclosed brackets are copied through untouched.
func replaceBracketed(s, name, lit string, fold bool) (string, int) {
	var b strings.Builder
	count := 0
	for i := 0; i < len(s); {
		if s[i] != '[' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := strings.IndexByte(s[i+1:], ']')
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		inner := s[i+1 : i+1+j]
		if equalName(NormalizeVariable(inner), name, fold) {
			b.WriteString(lit)
			count++
		} else {
			b.WriteString(s[i : i+j+2])
		}
		i += j + 2
	}
	return b.String(), count
}

// replaceBare replaces bare occurrences of name using a word-boundary-safe
// literal scan rather than a blind string replace: the characters around a
// match must not be letters, digits or underscores, and bracketed regions
// are skipped so a short name never matches inside a longer bracketed one.
func replaceBare(s, name, lit string, fold bool) (string, int) {
	runes := []rune(s)
	nameRunes := []rune(name)
	if len(nameRunes) == 0 {
		return s, 0
	}

	var b strings.Builder
	count := 0
	for i := 0; i < len(runes); {
		if runes[i] == '[' {
			for i < len(runes) {
				r := runes[i]
				b.WriteRune(r)
				i++
				if r == ']' {
					break
				}
			}
			continue
		}
		if matchesAt(runes, i, nameRunes, fold) &&
			isBoundary(runes, i-1) && isBoundary(runes, i+len(nameRunes)) {
			b.WriteString(lit)
			i += len(nameRunes)
			count++
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String(), count
}

func matchesAt(s []rune, pos int, name []rune, fold bool) bool {
	if pos+len(name) > len(s) {
		return false
	}
	for k, r := range name {
		c := s[pos+k]
		if c == r {
			continue
		}
		if !fold || unicode.ToLower(c) != unicode.ToLower(r) {
			return false
		}
	}
	return true
}

// isBoundary reports whether the rune at pos (or the string edge) can
// delimit a variable name.
func isBoundary(s []rune, pos int) bool {
	if pos < 0 || pos >= len(s) {
		return true
	}
	r := s[pos]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

func equalName(a, b string, fold bool) bool {
	if fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// arithParser is a recursive-descent evaluator over the substituted text.
// Only numeric literals, + - * /, parentheses and whitespace are accepted;
// anything else is rejected rather than interpreted. Operators associate
// left to right with no precedence beyond explicit parentheses, matching
// the published formula grammar.
type arithParser struct {
	input []rune
	pos   int
}

func evalArithmetic(s string) (float64, error) {
	p := &arithParser{input: []rune(s)}
	v, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, &NonNumericResultError{Expression: s}
	}
	return v, nil
}

func (p *arithParser) fail() error {
	return &NonNumericResultError{Expression: string(p.input)}
}

func (p *arithParser) skipSpaces() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *arithParser) parseExpression() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' && op != '*' && op != '/' {
			break
		}
		p.pos++
		r, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		switch op {
		case '+':
			v += r
		case '-':
			v -= r
		case '*':
			v *= r
		case '/':
			// Division by zero yields an infinity, rejected by the
			// finiteness check in EvaluateExpression.
			v /= r
		}
	}
	return v, nil
}

func (p *arithParser) parseTerm() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, p.fail()
	}

	switch p.input[p.pos] {
	case '(':
		p.pos++
		v, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, p.fail()
		}
		p.pos++
		return v, nil
	case '+':
		p.pos++
		return p.parseTerm()
	case '-':
		p.pos++
		v, err := p.parseTerm()
		return -v, err
	}

	start := p.pos
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if (r < '0' || r > '9') && r != '.' {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return 0, p.fail()
	}

	v, err := strconv.ParseFloat(string(p.input[start:p.pos]), 64)
	if err != nil {
		return 0, p.fail()
	}
	return v, nil
}
