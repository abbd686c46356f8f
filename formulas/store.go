package formulas

import (
	"fmt"
	"sync"
	"time"
)

// FormulaStore manages formula persistence and retrieval for one workspace.
type FormulaStore interface {
	// Add a new formula
	Add(f *Formula) error

	// Get a formula by ID
	Get(id string) (*Formula, error)

	// List all formulas in the workspace
	List() ([]*Formula, error)

	// ListActive returns all active formulas in the workspace
	ListActive() ([]*Formula, error)

	// ListActiveForTable returns active formulas scoped to the given table
	// plus the workspace-wide ones (table_id IS NULL)
	ListActiveForTable(tableID string) ([]*Formula, error)

	// Update an existing formula
	Update(f *Formula) error

	// SetActive toggles a formula on or off
	SetActive(id string, active bool) error

	// Delete a formula
	Delete(id string) error
}

// InMemoryFormulaStore implements FormulaStore using an in-memory map.
// Thread-safe with RWMutex.
type InMemoryFormulaStore struct {
	formulas map[string]*Formula
	mu       sync.RWMutex
}

// NewInMemoryFormulaStore creates a new in-memory formula store
func NewInMemoryFormulaStore() *InMemoryFormulaStore {
	return &InMemoryFormulaStore{
		formulas: make(map[string]*Formula),
	}
}

// Add adds a new formula to the store, enforcing unique IDs and
// setting CreatedAt/UpdatedAt timestamps.
func (s *InMemoryFormulaStore) Add(f *Formula) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.formulas[f.ID]; exists {
		return fmt.Errorf("formula with ID %s already exists", f.ID)
	}

	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now
	s.formulas[f.ID] = f
	return nil
}

// Get retrieves a formula by ID
func (s *InMemoryFormulaStore) Get(id string) (*Formula, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.formulas[id]
	if !exists {
		return nil, fmt.Errorf("formula with ID %s not found", id)
	}
	return f, nil
}

// List returns every formula in the store
func (s *InMemoryFormulaStore) List() ([]*Formula, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Formula, 0, len(s.formulas))
	for _, f := range s.formulas {
		all = append(all, f)
	}
	return all, nil
}

// ListActive returns all active formulas
func (s *InMemoryFormulaStore) ListActive() ([]*Formula, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*Formula
	for _, f := range s.formulas {
		if f.Active {
			active = append(active, f)
		}
	}
	return active, nil
}

// ListActiveForTable returns active formulas scoped to tableID plus
// the workspace-wide ones.
func (s *InMemoryFormulaStore) ListActiveForTable(tableID string) ([]*Formula, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*Formula
	for _, f := range s.formulas {
		if f.Active && f.AppliesTo(tableID) {
			active = append(active, f)
		}
	}
	return active, nil
}

// Update updates an existing formula, preserving CreatedAt
func (s *InMemoryFormulaStore) Update(f *Formula) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.formulas[f.ID]
	if !exists {
		return fmt.Errorf("formula with ID %s not found", f.ID)
	}

	f.CreatedAt = existing.CreatedAt
	f.UpdatedAt = time.Now()
	s.formulas[f.ID] = f
	return nil
}

// SetActive toggles a formula's active flag
func (s *InMemoryFormulaStore) SetActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, exists := s.formulas[id]
	if !exists {
		return fmt.Errorf("formula with ID %s not found", id)
	}

	f.Active = active
	f.UpdatedAt = time.Now()
	return nil
}

// Delete removes a formula from the store
func (s *InMemoryFormulaStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.formulas[id]; !exists {
		return fmt.Errorf("formula with ID %s not found", id)
	}

	delete(s.formulas, id)
	return nil
}
