package workspaceengine

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/ecetin/labportal/formulas"
	"github.com/ecetin/labportal/highlight"
)

// WorkspaceEngine binds one workspace's formula store and active-list
// cache to the highlight engine.
type WorkspaceEngine struct {
	WorkspaceID string
	store       formulas.FormulaStore
	listCache   formulas.FormulasCache
	highlighter *highlight.Engine
}

// Manager manages engines for all workspaces. Every workspace engine
// shares one process-wide parse cache: formula strings are content-keyed,
// so parses are reusable across workspaces.
type Manager struct {
	engines    map[string]*WorkspaceEngine
	db         *sql.DB
	parseCache *highlight.ParseCache
	mu         sync.RWMutex
}

// NewManager creates a new manager instance
func NewManager(db *sql.DB) *Manager {
	return &Manager{
		engines:    make(map[string]*WorkspaceEngine),
		db:         db,
		parseCache: highlight.NewParseCache(),
	}
}

// ParseCache returns the shared formula parse cache.
func (m *Manager) ParseCache() *highlight.ParseCache {
	return m.parseCache
}

// LoadAllWorkspaces loads all workspaces from the database and initializes
// their engines.
func (m *Manager) LoadAllWorkspaces() error {
	rows, err := m.db.Query(`SELECT id FROM workspaces`)
	if err != nil {
		return fmt.Errorf("failed to fetch workspaces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var workspaceID string
		if err := rows.Scan(&workspaceID); err != nil {
			return fmt.Errorf("failed to scan workspace row: %w", err)
		}
		if err := m.RegisterWorkspace(workspaceID); err != nil {
			return fmt.Errorf("failed to initialize workspace %s: %w", workspaceID, err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating workspace rows: %w", err)
	}

	return nil
}

// RegisterWorkspace creates and caches an engine for the workspace,
// backed by the database.
func (m *Manager) RegisterWorkspace(workspaceID string) error {
	store := formulas.NewPostgresFormulaStore(m.db, workspaceID)
	return m.register(workspaceID, store)
}

// RegisterWorkspaceWithStore creates an engine over an arbitrary store.
// Used by tests and by embedded deployments without Postgres.
func (m *Manager) RegisterWorkspaceWithStore(workspaceID string, store formulas.FormulaStore) error {
	return m.register(workspaceID, store)
}

func (m *Manager) register(workspaceID string, store formulas.FormulaStore) error {
	if workspaceID == "" {
		return fmt.Errorf("workspace ID cannot be empty")
	}

	we := &WorkspaceEngine{
		WorkspaceID: workspaceID,
		store:       store,
		listCache:   formulas.NewInMemoryFormulasCache(formulas.DefaultCacheConfig()),
		highlighter: highlight.NewEngine(m.parseCache),
	}

	m.mu.Lock()
	m.engines[workspaceID] = we
	m.mu.Unlock()

	return nil
}

// GetEngine retrieves the engine for a specific workspace
func (m *Manager) GetEngine(workspaceID string) (*WorkspaceEngine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	we, exists := m.engines[workspaceID]
	if !exists {
		return nil, fmt.Errorf("workspace %s not found", workspaceID)
	}

	return we, nil
}

// ListWorkspaces returns all loaded workspace IDs
func (m *Manager) ListWorkspaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.engines))
	for id := range m.engines {
		ids = append(ids, id)
	}
	return ids
}

// DeleteWorkspace removes a workspace's engine from the manager.
// Note: this does not delete the workspace from the database.
func (m *Manager) DeleteWorkspace(workspaceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.engines[workspaceID]; !exists {
		return fmt.Errorf("workspace %s not found", workspaceID)
	}

	delete(m.engines, workspaceID)
	return nil
}

// AddFormula validates, then stores a new formula and invalidates the
// active-list cache.
func (we *WorkspaceEngine) AddFormula(f *formulas.Formula) error {
	if err := ValidateFormula(f); err != nil {
		return fmt.Errorf("formula validation failed: %w", err)
	}

	if err := we.store.Add(f); err != nil {
		return err
	}

	we.listCache.Invalidate()
	return nil
}

// UpdateFormula validates, then updates an existing formula.
func (we *WorkspaceEngine) UpdateFormula(f *formulas.Formula) error {
	if err := ValidateFormula(f); err != nil {
		return fmt.Errorf("formula validation failed: %w", err)
	}

	if err := we.store.Update(f); err != nil {
		return err
	}

	we.listCache.Invalidate()
	return nil
}

// SetFormulaActive toggles a formula on or off.
func (we *WorkspaceEngine) SetFormulaActive(id string, active bool) error {
	if err := we.store.SetActive(id, active); err != nil {
		return err
	}

	we.listCache.Invalidate()
	return nil
}

// DeleteFormula removes a formula.
func (we *WorkspaceEngine) DeleteFormula(id string) error {
	if err := we.store.Delete(id); err != nil {
		return err
	}

	we.listCache.Invalidate()
	return nil
}

// GetFormula retrieves a formula by ID.
func (we *WorkspaceEngine) GetFormula(id string) (*formulas.Formula, error) {
	return we.store.Get(id)
}

// ListFormulas returns every formula in the workspace.
func (we *WorkspaceEngine) ListFormulas() ([]*formulas.Formula, error) {
	return we.store.List()
}

// activeFormulas returns the workspace's active formulas, cache-first.
func (we *WorkspaceEngine) activeFormulas() ([]*formulas.Formula, error) {
	if cached := we.listCache.Get(); cached != nil {
		return cached, nil
	}

	active, err := we.store.ListActive()
	if err != nil {
		return nil, err
	}
	we.listCache.Set(active)
	return active, nil
}

// HighlightTable evaluates the workspace's active formulas against a
// measurement table. tableID narrows the formula set to table-scoped plus
// workspace-wide formulas; an empty tableID runs everything.
func (we *WorkspaceEngine) HighlightTable(tableID string, table *highlight.DataTable) ([]*highlight.HighlightedCell, []*highlight.FormulaIssue, error) {
	active, err := we.activeFormulas()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load active formulas: %w", err)
	}

	if tableID != "" {
		scoped := make([]*formulas.Formula, 0, len(active))
		for _, f := range active {
			if f.AppliesTo(tableID) {
				scoped = append(scoped, f)
			}
		}
		active = scoped
	}

	return we.highlighter.Evaluate(active, table)
}
