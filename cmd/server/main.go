package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/ecetin/labportal/formulas"
	"github.com/ecetin/labportal/highlight"
	"github.com/ecetin/labportal/internal/logger"
	"github.com/ecetin/labportal/workspaceengine"
)

type Server struct {
	db      *sql.DB
	manager *workspaceengine.Manager
	router  *chi.Mux
}

func NewServer(databaseURL string) (*Server, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewServerWithDB(db)
}

// NewServerWithDB builds a server over an already-open database handle.
func NewServerWithDB(db *sql.DB) (*Server, error) {
	manager := workspaceengine.NewManager(db)

	logger.Info("loading workspaces from database")
	if err := manager.LoadAllWorkspaces(); err != nil {
		return nil, fmt.Errorf("failed to load workspaces: %w", err)
	}
	logger.Info("workspaces loaded", "count", len(manager.ListWorkspaces()))

	s := &Server{
		db:      db,
		manager: manager,
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)
	r.Get("/api/v1/metrics", s.handleMetrics)

	r.Post("/api/v1/highlight", s.handleHighlight)

	r.Route("/api/v1/workspaces", func(r chi.Router) {
		r.Get("/", s.handleListWorkspaces)
		r.Post("/", s.handleCreateWorkspace)

		r.Route("/{workspaceId}", func(r chi.Router) {
			r.Post("/formulas", s.handleCreateFormula)
			r.Get("/formulas", s.handleListFormulas)
			r.Get("/formulas/{formulaId}", s.handleGetFormula)
			r.Put("/formulas/{formulaId}", s.handleUpdateFormula)
			r.Patch("/formulas/{formulaId}", s.handleToggleFormula)
			r.Delete("/formulas/{formulaId}", s.handleDeleteFormula)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"workspacesLoaded": len(s.manager.ListWorkspaces()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int64{
		"errors":            logger.TotalErrors.Load(),
		"warnings":          logger.TotalWarnings.Load(),
		"http4xx":           logger.Total4xxErrors.Load(),
		"http5xx":           logger.Total5xxErrors.Load(),
		"malformedFormulas": logger.TotalMalformedFormulas.Load(),
		"highlightRequests": logger.TotalHighlightRequests.Load(),
	})
}

// handleHighlight evaluates a workspace's active formulas against the
// submitted measurement table and returns the highlighted cells.
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.WorkspaceID == "" {
		respondError(w, http.StatusBadRequest, "workspaceId is required", nil)
		return
	}
	if req.Table == nil || len(req.Table.Columns) == 0 {
		respondError(w, http.StatusBadRequest, "table with columns is required", nil)
		return
	}

	engine, err := s.manager.GetEngine(req.WorkspaceID)
	if err != nil {
		respondError(w, http.StatusNotFound, "workspace not found", err)
		return
	}

	logger.CountHighlightRequest()
	startTime := time.Now()

	cells, issues, err := engine.HighlightTable(req.TableID, req.Table)
	if err != nil {
		var shapeErr *highlight.InvalidTableShapeError
		if errors.As(err, &shapeErr) {
			respondError(w, http.StatusBadRequest, "invalid table", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "evaluation failed", err)
		return
	}

	for range issues {
		logger.CountMalformedFormula()
	}
	if len(issues) > 0 {
		logger.Warn("formulas excluded from evaluation",
			"workspaceId", req.WorkspaceID, "count", len(issues))
	}

	respondJSON(w, http.StatusOK, HighlightResponse{
		Cells:          cells,
		Issues:         issues,
		EvaluationTime: time.Since(startTime).String(),
	})
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`SELECT id, name, created_at, updated_at FROM workspaces ORDER BY created_at DESC`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list workspaces", err)
		return
	}
	defer rows.Close()

	workspaces := []WorkspaceResponse{}
	for rows.Next() {
		var ws WorkspaceResponse
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to scan workspace", err)
			return
		}
		workspaces = append(workspaces, ws)
	}

	respondJSON(w, http.StatusOK, WorkspacesListResponse{Workspaces: workspaces})
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	var workspaceID string
	err := s.db.QueryRow(`
		INSERT INTO workspaces (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id
	`, req.Name).Scan(&workspaceID)

	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create workspace", err)
		return
	}

	if err := s.manager.RegisterWorkspace(workspaceID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to initialize workspace engine", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":   workspaceID,
		"name": req.Name,
	})
}

func (s *Server) handleCreateFormula(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")

	var req CreateFormulaRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	engine, err := s.manager.GetEngine(workspaceID)
	if err != nil {
		respondError(w, http.StatusNotFound, "workspace not found", err)
		return
	}

	f := &formulas.Formula{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		TableID:     req.TableID,
		Name:        req.Name,
		Description: req.Description,
		Expression:  req.Expression,
		Color:       req.Color,
		Type:        formulas.FormulaType(req.Type),
		Active:      req.Active,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if f.Type == "" {
		f.Type = formulas.TypeCellValidation
	}

	if err := engine.AddFormula(f); err != nil {
		respondError(w, http.StatusBadRequest, "failed to add formula", err)
		return
	}

	respondJSON(w, http.StatusCreated, formulaResponse(f))
}

func (s *Server) handleListFormulas(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")

	engine, err := s.manager.GetEngine(workspaceID)
	if err != nil {
		respondError(w, http.StatusNotFound, "workspace not found", err)
		return
	}

	all, err := engine.ListFormulas()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list formulas", err)
		return
	}

	out := make([]FormulaResponse, 0, len(all))
	for _, f := range all {
		out = append(out, formulaResponse(f))
	}

	respondJSON(w, http.StatusOK, FormulasListResponse{Formulas: out})
}

func (s *Server) handleGetFormula(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")
	formulaID := chi.URLParam(r, "formulaId")

	engine, err := s.manager.GetEngine(workspaceID)
	if err != nil {
		respondError(w, http.StatusNotFound, "workspace not found", err)
		return
	}

	f, err := engine.GetFormula(formulaID)
	if err != nil {
		respondError(w, http.StatusNotFound, "formula not found", err)
		return
	}

	respondJSON(w, http.StatusOK, formulaResponse(f))
}

func (s *Server) handleUpdateFormula(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")
	formulaID := chi.URLParam(r, "formulaId")

	var req UpdateFormulaRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	engine, err := s.manager.GetEngine(workspaceID)
	if err != nil {
		respondError(w, http.StatusNotFound, "workspace not found", err)
		return
	}

	f := &formulas.Formula{
		ID:          formulaID,
		WorkspaceID: workspaceID,
		TableID:     req.TableID,
		Name:        req.Name,
		Description: req.Description,
		Expression:  req.Expression,
		Color:       req.Color,
		Type:        formulas.FormulaType(req.Type),
		Active:      req.Active,
		UpdatedAt:   time.Now(),
	}

	if err := engine.UpdateFormula(f); err != nil {
		respondError(w, http.StatusBadRequest, "failed to update formula", err)
		return
	}

	respondJSON(w, http.StatusOK, formulaResponse(f))
}

func (s *Server) handleToggleFormula(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")
	formulaID := chi.URLParam(r, "formulaId")

	var req ToggleFormulaRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Active == nil {
		respondError(w, http.StatusBadRequest, "active is required", nil)
		return
	}

	engine, err := s.manager.GetEngine(workspaceID)
	if err != nil {
		respondError(w, http.StatusNotFound, "workspace not found", err)
		return
	}

	if err := engine.SetFormulaActive(formulaID, *req.Active); err != nil {
		respondError(w, http.StatusNotFound, "formula not found", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":     formulaID,
		"active": *req.Active,
	})
}

func (s *Server) handleDeleteFormula(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")
	formulaID := chi.URLParam(r, "formulaId")

	engine, err := s.manager.GetEngine(workspaceID)
	if err != nil {
		respondError(w, http.StatusNotFound, "workspace not found", err)
		return
	}

	if err := engine.DeleteFormula(formulaID); err != nil {
		respondError(w, http.StatusNotFound, "formula not found", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	logger.CountHTTPStatus(status)
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	server, err := NewServer(databaseURL)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}
	defer server.db.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := logger.Shutdown(ctx); err != nil {
		logger.Error("logger shutdown error", "error", err)
	}
}
