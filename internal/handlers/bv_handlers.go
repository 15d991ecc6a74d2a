package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	bvcore "github.com/jaskrrish/Go-BV/internal/bv"
	models "github.com/jaskrrish/Go-BV/internal/models/bv"
)

// BVHandler manages Bernstein–Vazirani experiment HTTP requests
type BVHandler struct {
	manager *bvcore.ExperimentManager
}

// NewBVHandler creates a handler backed by an experiment manager
func NewBVHandler(manager *bvcore.ExperimentManager) *BVHandler {
	return &BVHandler{manager: manager}
}

// CreateExperimentHandler handles POST /api/v1/bv/experiments
func (h *BVHandler) CreateExperimentHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ExperimentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	experiment, err := h.manager.CreateExperiment(r.Context(), &req)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, models.ExperimentResponse{
		Experiment: experiment,
	})
}

// GetExperimentHandler handles GET /api/v1/bv/experiments/{id}
func (h *BVHandler) GetExperimentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := experimentID(w, r)
	if !ok {
		return
	}

	experiment, err := h.manager.GetExperiment(r.Context(), id)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, models.ExperimentResponse{
		Experiment: experiment,
	})
}

// DeleteExperimentHandler handles DELETE /api/v1/bv/experiments/{id}
func (h *BVHandler) DeleteExperimentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := experimentID(w, r)
	if !ok {
		return
	}

	if err := h.manager.DeleteExperiment(r.Context(), id); err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Experiment deleted successfully",
	})
}

// RunExperimentHandler handles POST /api/v1/bv/experiments/{id}/runs
// An empty body runs with the default shot count and no noise.
func (h *BVHandler) RunExperimentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := experimentID(w, r)
	if !ok {
		return
	}

	var req models.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	run, err := h.manager.RunExperiment(r.Context(), id, &req)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, models.RunResponse{
		Run: run,
	})
}

// ListRunsHandler handles GET /api/v1/bv/experiments/{id}/runs
func (h *BVHandler) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := experimentID(w, r)
	if !ok {
		return
	}

	runs, summary, err := h.manager.ListRuns(r.Context(), id)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, models.RunListResponse{
		Runs:    runs,
		Summary: summary,
	})
}

// GetQASMHandler handles GET /api/v1/bv/experiments/{id}/qasm
func (h *BVHandler) GetQASMHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := experimentID(w, r)
	if !ok {
		return
	}

	qasm, err := h.manager.GetQASM(r.Context(), id)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, qasm)
}

// HealthCheckHandler handles GET /api/v1/bv/health
func (h *BVHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	backend := h.manager.Backend()

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "healthy",
		"service":            "Bernstein-Vazirani",
		"version":            "1.0.0",
		"backend":            backend.Name(),
		"simulator":          backend.IsSimulator(),
		"bit_order":          backend.BitOrder().String(),
		"active_experiments": h.manager.ActiveExperiments(),
		"noise_profiles":     h.manager.NoiseProfiles(),
	})
}

func experimentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid experiment ID")
		return uuid.Nil, false
	}
	return id, true
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	var requestErr *models.ExperimentError

	switch {
	case errors.Is(err, models.ErrExperimentNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrExperimentExpired):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, bvcore.ErrExecution):
		return http.StatusBadGateway
	case errors.As(err, &requestErr),
		errors.Is(err, bvcore.ErrInput),
		errors.Is(err, bvcore.ErrRange),
		errors.Is(err, bvcore.ErrConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
