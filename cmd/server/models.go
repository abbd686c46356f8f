package main

import (
	"time"

	"github.com/ecetin/labportal/formulas"
	"github.com/ecetin/labportal/highlight"
)

// API request and response models

// CreateWorkspaceRequest represents the request body for creating a workspace
type CreateWorkspaceRequest struct {
	Name string `json:"name" example:"Marmara Havza İzleme"`
} // @name CreateWorkspaceRequest

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	ID        string    `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name      string    `json:"name" example:"Marmara Havza İzleme"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-01-15T10:30:00Z"`
} // @name WorkspaceResponse

// WorkspacesListResponse represents the response for listing workspaces
type WorkspacesListResponse struct {
	Workspaces []WorkspaceResponse `json:"workspaces"`
} // @name WorkspacesListResponse

// CreateFormulaRequest represents the request body for creating a formula
type CreateFormulaRequest struct {
	Name        string  `json:"name" example:"İletkenlik üst sınır"`
	Description string  `json:"description,omitempty"`
	Expression  string  `json:"expression" example:"[İletkenlik] > 320"`
	Color       string  `json:"color" example:"#ff0000"`
	Type        string  `json:"type,omitempty" example:"CELL_VALIDATION"`
	TableID     *string `json:"tableId,omitempty"`
	Active      bool    `json:"active" example:"true"`
} // @name CreateFormulaRequest

// UpdateFormulaRequest represents the request body for updating a formula
type UpdateFormulaRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Expression  string  `json:"expression"`
	Color       string  `json:"color"`
	Type        string  `json:"type,omitempty"`
	TableID     *string `json:"tableId,omitempty"`
	Active      bool    `json:"active"`
} // @name UpdateFormulaRequest

// ToggleFormulaRequest represents the request body for toggling a formula
type ToggleFormulaRequest struct {
	Active *bool `json:"active"`
} // @name ToggleFormulaRequest

// FormulaResponse represents a formula in API responses
type FormulaResponse struct {
	ID          string    `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name        string    `json:"name" example:"İletkenlik üst sınır"`
	Description string    `json:"description,omitempty"`
	Expression  string    `json:"expression" example:"[İletkenlik] > 320"`
	Color       string    `json:"color" example:"#ff0000"`
	Type        string    `json:"type" example:"CELL_VALIDATION"`
	TableID     *string   `json:"tableId,omitempty"`
	Active      bool      `json:"active" example:"true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
} // @name FormulaResponse

// FormulasListResponse represents the response for listing formulas
type FormulasListResponse struct {
	Formulas []FormulaResponse `json:"formulas"`
} // @name FormulasListResponse

// HighlightRequest represents the request body for highlighting a table
type HighlightRequest struct {
	WorkspaceID string               `json:"workspaceId" example:"123e4567-e89b-12d3-a456-426614174000"`
	TableID     string               `json:"tableId,omitempty"`
	Table       *highlight.DataTable `json:"table"`
} // @name HighlightRequest

// HighlightResponse represents the response for a highlighting pass
type HighlightResponse struct {
	Cells          []*highlight.HighlightedCell `json:"cells"`
	Issues         []*highlight.FormulaIssue    `json:"issues,omitempty"`
	EvaluationTime string                       `json:"evaluationTime" example:"2.3ms"`
} // @name HighlightResponse

func formulaResponse(f *formulas.Formula) FormulaResponse {
	return FormulaResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Expression:  f.Expression,
		Color:       f.Color,
		Type:        string(f.Type),
		TableID:     f.TableID,
		Active:      f.Active,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
