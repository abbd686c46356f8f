package formulas

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresFormulaStore implements FormulaStore backed by PostgreSQL.
// All queries are scoped to one workspace.
type PostgresFormulaStore struct {
	db          *sql.DB
	workspaceID string
}

// NewPostgresFormulaStore creates a new PostgreSQL-backed FormulaStore for a workspace
func NewPostgresFormulaStore(db *sql.DB, workspaceID string) *PostgresFormulaStore {
	return &PostgresFormulaStore{
		db:          db,
		workspaceID: workspaceID,
	}
}

const formulaColumns = `id, table_id, name, description, expression, color, type, active, created_at, updated_at`

func (s *PostgresFormulaStore) scanFormula(row interface{ Scan(...any) error }) (*Formula, error) {
	var f Formula
	var tableID sql.NullString
	err := row.Scan(
		&f.ID,
		&tableID,
		&f.Name,
		&f.Description,
		&f.Expression,
		&f.Color,
		&f.Type,
		&f.Active,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.WorkspaceID = s.workspaceID
	if tableID.Valid {
		f.TableID = &tableID.String
	}
	return &f, nil
}

// Add inserts a new formula into the database
func (s *PostgresFormulaStore) Add(f *Formula) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM formulas WHERE id = $1 AND workspace_id = $2)
	`, f.ID, s.workspaceID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check formula existence: %w", err)
	}
	if exists {
		return fmt.Errorf("formula with ID %s already exists", f.ID)
	}

	var tableID sql.NullString
	if f.TableID != nil {
		tableID = sql.NullString{String: *f.TableID, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO formulas (id, workspace_id, table_id, name, description, expression, color, type, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, f.ID, s.workspaceID, tableID, f.Name, f.Description, f.Expression, f.Color,
		f.Type, f.Active, f.CreatedAt, f.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert formula: %w", err)
	}

	return nil
}

// Get retrieves a formula by ID
func (s *PostgresFormulaStore) Get(id string) (*Formula, error) {
	f, err := s.scanFormula(s.db.QueryRow(`
		SELECT `+formulaColumns+`
		FROM formulas
		WHERE id = $1 AND workspace_id = $2
	`, id, s.workspaceID))

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("formula %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get formula: %w", err)
	}

	return f, nil
}

func (s *PostgresFormulaStore) list(where string, args ...any) ([]*Formula, error) {
	args = append([]any{s.workspaceID}, args...)
	rows, err := s.db.Query(`
		SELECT `+formulaColumns+`
		FROM formulas
		WHERE workspace_id = $1 `+where+`
		ORDER BY created_at ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list formulas: %w", err)
	}
	defer rows.Close()

	var out []*Formula
	for rows.Next() {
		f, err := s.scanFormula(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan formula: %w", err)
		}
		out = append(out, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating formulas: %w", err)
	}

	return out, nil
}

// List returns every formula in the workspace
func (s *PostgresFormulaStore) List() ([]*Formula, error) {
	return s.list("")
}

// ListActive returns all active formulas in the workspace
func (s *PostgresFormulaStore) ListActive() ([]*Formula, error) {
	return s.list("AND active = true")
}

// ListActiveForTable returns active formulas scoped to the table plus
// workspace-wide ones.
func (s *PostgresFormulaStore) ListActiveForTable(tableID string) ([]*Formula, error) {
	return s.list("AND active = true AND (table_id IS NULL OR table_id = $2)", tableID)
}

// Update modifies an existing formula
func (s *PostgresFormulaStore) Update(f *Formula) error {
	_, err := s.Get(f.ID)
	if err != nil {
		return err
	}

	f.UpdatedAt = time.Now()

	var tableID sql.NullString
	if f.TableID != nil {
		tableID = sql.NullString{String: *f.TableID, Valid: true}
	}

	result, err := s.db.Exec(`
		UPDATE formulas
		SET table_id = $1, name = $2, description = $3, expression = $4, color = $5, type = $6, active = $7, updated_at = $8
		WHERE id = $9 AND workspace_id = $10
	`, tableID, f.Name, f.Description, f.Expression, f.Color, f.Type, f.Active,
		f.UpdatedAt, f.ID, s.workspaceID)

	if err != nil {
		return fmt.Errorf("failed to update formula: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("formula %s not found", f.ID)
	}

	return nil
}

// SetActive toggles a formula's active flag
func (s *PostgresFormulaStore) SetActive(id string, active bool) error {
	result, err := s.db.Exec(`
		UPDATE formulas
		SET active = $1, updated_at = $2
		WHERE id = $3 AND workspace_id = $4
	`, active, time.Now(), id, s.workspaceID)

	if err != nil {
		return fmt.Errorf("failed to toggle formula: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("formula %s not found", id)
	}

	return nil
}

// Delete removes a formula from the database
func (s *PostgresFormulaStore) Delete(id string) error {
	result, err := s.db.Exec(`
		DELETE FROM formulas
		WHERE id = $1 AND workspace_id = $2
	`, id, s.workspaceID)

	if err != nil {
		return fmt.Errorf("failed to delete formula: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("formula %s not found", id)
	}

	return nil
}
