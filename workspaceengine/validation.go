package workspaceengine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ecetin/labportal/formulas"
	"github.com/ecetin/labportal/highlight"
)

const (
	maxNameLength       = 200
	maxExpressionLength = 1000
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateFormula checks a formula before it is stored: name and length
// limits, a parsable expression with exactly one comparison operator and
// at least one variable reference, a valid hex color, and a known type.
// Returns an error describing the first violation, nil if valid.
func ValidateFormula(f *formulas.Formula) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("formula name cannot be empty")
	}
	if len(f.Name) > maxNameLength {
		return fmt.Errorf("formula name length %d exceeds maximum of %d characters", len(f.Name), maxNameLength)
	}

	expr := strings.TrimSpace(f.Expression)
	if expr == "" {
		return fmt.Errorf("formula expression cannot be empty")
	}
	if len(f.Expression) > maxExpressionLength {
		return fmt.Errorf("formula expression length %d exceeds maximum of %d characters", len(f.Expression), maxExpressionLength)
	}

	if err := validateBrackets(expr); err != nil {
		return err
	}

	pf, err := highlight.Parse(expr)
	if err != nil {
		return err
	}
	if len(pf.Variables) == 0 {
		return fmt.Errorf("formula must reference at least one variable")
	}

	if !hexColorPattern.MatchString(f.Color) {
		return fmt.Errorf("invalid color %q (must be #rrggbb)", f.Color)
	}

	switch f.Type {
	case formulas.TypeCellValidation, formulas.TypeRelational:
	default:
		return fmt.Errorf("invalid formula type %q (must be %s or %s)",
			f.Type, formulas.TypeCellValidation, formulas.TypeRelational)
	}

	return nil
}

// validateBrackets rejects nesting and imbalance up front, with a clearer
// message than the parser's.
func validateBrackets(expr string) error {
	open := false
	for i, r := range expr {
		switch r {
		case '[':
			if open {
				return fmt.Errorf("nested bracket at position %d", i)
			}
			open = true
		case ']':
			if !open {
				return fmt.Errorf("unmatched closing bracket at position %d", i)
			}
			open = false
		}
	}
	if open {
		return fmt.Errorf("unclosed bracket in expression")
	}
	return nil
}
