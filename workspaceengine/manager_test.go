package workspaceengine

import (
	"testing"

	"github.com/ecetin/labportal/formulas"
	"github.com/ecetin/labportal/highlight"
)

func newTestManager(t *testing.T, workspaceID string) (*Manager, *WorkspaceEngine) {
	t.Helper()

	m := NewManager(nil)
	if err := m.RegisterWorkspaceWithStore(workspaceID, formulas.NewInMemoryFormulaStore()); err != nil {
		t.Fatalf("RegisterWorkspaceWithStore() failed: %v", err)
	}
	we, err := m.GetEngine(workspaceID)
	if err != nil {
		t.Fatalf("GetEngine() failed: %v", err)
	}
	return m, we
}

func measurementTable() *highlight.DataTable {
	return &highlight.DataTable{
		Columns: []string{"Variable", "Unit", "Nisan 22"},
		Data: [][]any{
			{"İletkenlik", "µS/cm", 374.0},
			{"Alkalinite Tayini", "mg/L", 170.4},
		},
	}
}

func TestManagerRegisterAndGet(t *testing.T) {
	m, we := newTestManager(t, "ws-1")

	if we.WorkspaceID != "ws-1" {
		t.Errorf("WorkspaceID = %s, want ws-1", we.WorkspaceID)
	}

	if _, err := m.GetEngine("ws-unknown"); err == nil {
		t.Error("GetEngine() on an unknown workspace should fail")
	}
}

func TestManagerRegisterEmptyID(t *testing.T) {
	m := NewManager(nil)

	if err := m.RegisterWorkspaceWithStore("", formulas.NewInMemoryFormulaStore()); err == nil {
		t.Error("registering an empty workspace ID should fail")
	}
}

func TestManagerListAndDelete(t *testing.T) {
	m, _ := newTestManager(t, "ws-1")
	if err := m.RegisterWorkspaceWithStore("ws-2", formulas.NewInMemoryFormulaStore()); err != nil {
		t.Fatalf("RegisterWorkspaceWithStore() failed: %v", err)
	}

	if got := len(m.ListWorkspaces()); got != 2 {
		t.Errorf("ListWorkspaces() = %d entries, want 2", got)
	}

	if err := m.DeleteWorkspace("ws-1"); err != nil {
		t.Fatalf("DeleteWorkspace() failed: %v", err)
	}
	if _, err := m.GetEngine("ws-1"); err == nil {
		t.Error("GetEngine() should fail after DeleteWorkspace()")
	}
	if err := m.DeleteWorkspace("ws-1"); err == nil {
		t.Error("DeleteWorkspace() on an unknown workspace should fail")
	}
}

func TestWorkspaceEngineAddFormulaValidates(t *testing.T) {
	_, we := newTestManager(t, "ws-1")

	bad := &formulas.Formula{
		ID:         "f-1",
		Name:       "Bozuk",
		Expression: "[İletkenlik] + 320", // no comparison operator
		Color:      "#ff0000",
		Type:       formulas.TypeCellValidation,
	}

	if err := we.AddFormula(bad); err == nil {
		t.Fatal("AddFormula() should reject an unparsable expression")
	}
	if _, err := we.GetFormula("f-1"); err == nil {
		t.Error("rejected formula must not be stored")
	}
}

func TestWorkspaceEngineHighlightFlow(t *testing.T) {
	_, we := newTestManager(t, "ws-1")

	f := &formulas.Formula{
		ID:         "f-1",
		Name:       "İletkenlik kontrolü",
		Expression: "İletkenlik > Alkalinite Tayini",
		Color:      "#ff0000",
		Type:       formulas.TypeRelational,
		Active:     true,
	}
	if err := we.AddFormula(f); err != nil {
		t.Fatalf("AddFormula() failed: %v", err)
	}

	cells, issues, err := we.HighlightTable("", measurementTable())
	if err != nil {
		t.Fatalf("HighlightTable() failed: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
	if len(cells) != 1 {
		t.Fatalf("got %d cells, want 1", len(cells))
	}
	if cells[0].Row != "row-1" || cells[0].Col != "Nisan 22" {
		t.Errorf("cell = (%s, %s), want (row-1, Nisan 22)", cells[0].Row, cells[0].Col)
	}
	if cells[0].Color != "#ff0000" {
		t.Errorf("color = %s, want #ff0000", cells[0].Color)
	}
}

func TestWorkspaceEngineHighlightTableScoping(t *testing.T) {
	_, we := newTestManager(t, "ws-1")

	tableID := "table-a"
	scoped := &formulas.Formula{
		ID:         "f-scoped",
		Name:       "Tablo kuralı",
		TableID:    &tableID,
		Expression: "[İletkenlik] > 320",
		Color:      "#ff0000",
		Type:       formulas.TypeCellValidation,
		Active:     true,
	}
	if err := we.AddFormula(scoped); err != nil {
		t.Fatalf("AddFormula() failed: %v", err)
	}

	cells, _, err := we.HighlightTable("table-b", measurementTable())
	if err != nil {
		t.Fatalf("HighlightTable() failed: %v", err)
	}
	if len(cells) != 0 {
		t.Errorf("formula scoped to table-a must not fire for table-b, got %d cells", len(cells))
	}

	cells, _, err = we.HighlightTable("table-a", measurementTable())
	if err != nil {
		t.Fatalf("HighlightTable() failed: %v", err)
	}
	if len(cells) != 1 {
		t.Errorf("got %d cells for table-a, want 1", len(cells))
	}
}

func TestWorkspaceEngineCacheInvalidation(t *testing.T) {
	_, we := newTestManager(t, "ws-1")

	f := &formulas.Formula{
		ID:         "f-1",
		Name:       "İletkenlik kontrolü",
		Expression: "[İletkenlik] > 320",
		Color:      "#ff0000",
		Type:       formulas.TypeCellValidation,
		Active:     true,
	}
	if err := we.AddFormula(f); err != nil {
		t.Fatalf("AddFormula() failed: %v", err)
	}

	cells, _, err := we.HighlightTable("", measurementTable())
	if err != nil {
		t.Fatalf("HighlightTable() failed: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("got %d cells before toggle, want 1", len(cells))
	}

	// Deactivating must be visible immediately despite the list cache
	if err := we.SetFormulaActive("f-1", false); err != nil {
		t.Fatalf("SetFormulaActive() failed: %v", err)
	}
	cells, _, err = we.HighlightTable("", measurementTable())
	if err != nil {
		t.Fatalf("HighlightTable() failed: %v", err)
	}
	if len(cells) != 0 {
		t.Errorf("got %d cells after deactivation, want 0", len(cells))
	}

	if err := we.SetFormulaActive("f-1", true); err != nil {
		t.Fatalf("SetFormulaActive() failed: %v", err)
	}
	cells, _, err = we.HighlightTable("", measurementTable())
	if err != nil {
		t.Fatalf("HighlightTable() failed: %v", err)
	}
	if len(cells) != 1 {
		t.Errorf("got %d cells after reactivation, want 1", len(cells))
	}
}

func TestManagerSharedParseCache(t *testing.T) {
	m, we1 := newTestManager(t, "ws-1")
	if err := m.RegisterWorkspaceWithStore("ws-2", formulas.NewInMemoryFormulaStore()); err != nil {
		t.Fatalf("RegisterWorkspaceWithStore() failed: %v", err)
	}
	we2, err := m.GetEngine("ws-2")
	if err != nil {
		t.Fatalf("GetEngine() failed: %v", err)
	}

	f := &formulas.Formula{
		ID:         "f-1",
		Name:       "Ortak formül",
		Expression: "[İletkenlik] > 320",
		Color:      "#ff0000",
		Type:       formulas.TypeCellValidation,
		Active:     true,
	}
	if err := we1.AddFormula(f); err != nil {
		t.Fatalf("AddFormula() failed: %v", err)
	}

	shared := *f
	if err := we2.AddFormula(&shared); err != nil {
		t.Fatalf("AddFormula() failed: %v", err)
	}

	if _, _, err := we1.HighlightTable("", measurementTable()); err != nil {
		t.Fatalf("HighlightTable() failed: %v", err)
	}
	if _, _, err := we2.HighlightTable("", measurementTable()); err != nil {
		t.Fatalf("HighlightTable() failed: %v", err)
	}

	// Both workspaces use the same expression text, so one cache entry.
	if got := m.ParseCache().Len(); got != 1 {
		t.Errorf("ParseCache().Len() = %d, want 1 shared entry", got)
	}
}
