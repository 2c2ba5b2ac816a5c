// Package projection exposes the feasibility engine over HTTP.
package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/display"
	coreProjection "storage_feasibility/pkg/core/projection"
	"storage_feasibility/pkg/core/scenario"
	"storage_feasibility/pkg/core/store"
	"storage_feasibility/pkg/core/validate"
	"storage_feasibility/pkg/models"
)

// checkTolerance is the absolute tolerance for the identity checks attached
// to every response.
const checkTolerance = 1e-6

// RunStore is the persistence the handler needs. A nil store disables saving.
type RunStore interface {
	Save(ctx context.Context, kind store.RunKind, in assumption.ProjectionInputs, result any, warnings int) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Run, error)
	List(ctx context.Context, limit int) ([]store.RunSummary, error)
}

// Handler holds dependencies for projection endpoints
type Handler struct {
	engine *coreProjection.Engine
	runner *scenario.Runner
	runs   RunStore
	log    *logrus.Logger
}

// NewHandler creates a new projection handler
func NewHandler(engine *coreProjection.Engine, runner *scenario.Runner, runs RunStore, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Handler{engine: engine, runner: runner, runs: runs, log: log}
}

// Register mounts the routes on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/projection").Subrouter()
	api.Use(cors)
	api.HandleFunc("/run", h.HandleRun).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/scenarios", h.HandleScenarios).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sensitivity", h.HandleSensitivity).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/runs", h.HandleListRuns).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/runs/{id}", h.HandleGetRun).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/defaults", h.HandleDefaults).Methods(http.MethodGet, http.MethodOptions)
}

// cors adds the headers the local dashboard needs and answers preflight.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// REQUESTS & RESPONSES
// =============================================================================

// RunRequest asks for a single projection.
type RunRequest struct {
	Inputs        *assumption.ProjectionInputs `json:"inputs"`
	IncludeMonths bool                         `json:"include_months"`
}

// RunResponse is a projection with its identity checks and display rows.
type RunResponse struct {
	RunID      string              `json:"run_id,omitempty"`
	Projection *models.Projection  `json:"projection"`
	Checks     *validate.Report    `json:"checks"`
	Annual     []display.AnnualRow `json:"annual_display"`
}

// ScenarioRequest asks for a weighted scenario analysis. No scenarios means
// the default conservative/base/aggressive set.
type ScenarioRequest struct {
	Inputs    *assumption.ProjectionInputs `json:"inputs"`
	Scenarios []scenario.Scenario          `json:"scenarios"`
}

// ScenarioResponse wraps the analysis.
type ScenarioResponse struct {
	RunID    string             `json:"run_id,omitempty"`
	Analysis *scenario.Analysis `json:"analysis"`
}

// SensitivityRequest asks for the tornado over the default shocks.
type SensitivityRequest struct {
	Inputs *assumption.ProjectionInputs `json:"inputs"`
}

// SensitivityResponse wraps the tornado.
type SensitivityResponse struct {
	RunID   string            `json:"run_id,omitempty"`
	Tornado *scenario.Tornado `json:"tornado"`
}

type errorResponse struct {
	Error    string               `json:"error"`
	Problems []assumption.Problem `json:"problems,omitempty"`
}

// =============================================================================
// HANDLERS
// =============================================================================

// HandleRun runs one projection.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Inputs == nil {
		writeError(w, http.StatusBadRequest, errors.New("inputs are required"))
		return
	}
	in := *req.Inputs

	proj, err := h.engine.Run(in)
	if err != nil {
		h.fail(w, "run", err)
		return
	}

	resp := RunResponse{
		Projection: proj,
		Checks:     validate.CheckProjection(proj, in, checkTolerance),
		Annual:     display.Annual(proj.Years),
	}
	if !resp.Checks.AllPassed {
		h.log.WithField("failed", resp.Checks.FailedChecks).Warn("Projection failed identity checks")
	}
	if !req.IncludeMonths {
		resp.Projection.Months = nil
	}
	resp.RunID = h.save(r.Context(), store.KindProjection, in, resp, len(proj.Warnings))

	h.log.WithFields(logrus.Fields{
		"name":     in.Name,
		"warnings": len(proj.Warnings),
	}).Info("Projection complete")
	writeJSON(w, http.StatusOK, resp)
}

// HandleScenarios runs the weighted scenario analysis.
func (h *Handler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Inputs == nil {
		writeError(w, http.StatusBadRequest, errors.New("inputs are required"))
		return
	}
	in := *req.Inputs
	if err := in.Validate(); err != nil {
		h.fail(w, "scenarios", err)
		return
	}

	analysis, err := h.runner.Analyze(r.Context(), in, req.Scenarios)
	if err != nil {
		h.fail(w, "scenarios", err)
		return
	}
	// Outcomes carry full projections; the response keeps only the metrics.
	for i := range analysis.Outcomes {
		analysis.Outcomes[i].Projection = nil
	}

	resp := ScenarioResponse{Analysis: analysis}
	resp.RunID = h.save(r.Context(), store.KindScenarios, in, resp, 0)
	writeJSON(w, http.StatusOK, resp)
}

// HandleSensitivity runs the tornado analysis.
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req SensitivityRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Inputs == nil {
		writeError(w, http.StatusBadRequest, errors.New("inputs are required"))
		return
	}
	in := *req.Inputs
	if err := in.Validate(); err != nil {
		h.fail(w, "sensitivity", err)
		return
	}

	tornado, err := h.runner.Sensitivity(r.Context(), in, nil)
	if err != nil {
		h.fail(w, "sensitivity", err)
		return
	}
	resp := SensitivityResponse{Tornado: tornado}
	resp.RunID = h.save(r.Context(), store.KindSensitivity, in, resp, 0)
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetRun returns a stored run.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusNotFound, errors.New("run persistence is not configured"))
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid run id: %w", err))
		return
	}
	run, err := h.runs.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get run", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleListRuns lists recent runs. ?limit=N caps the count.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeJSON(w, http.StatusOK, []store.RunSummary{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := h.runs.List(r.Context(), limit)
	if err != nil {
		h.fail(w, "list runs", err)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// HandleDefaults returns the default input set as a starting template.
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assumption.DefaultInputs())
}

// =============================================================================
// HELPERS
// =============================================================================

// save persists a result when a store is configured. Failures are logged and
// the response goes out without a run id.
func (h *Handler) save(ctx context.Context, kind store.RunKind, in assumption.ProjectionInputs, result any, warnings int) string {
	if h.runs == nil {
		return ""
	}
	id, err := h.runs.Save(ctx, kind, in, result, warnings)
	if err != nil {
		h.log.WithError(err).Error("Failed to persist run")
		return ""
	}
	return id.String()
}

// fail maps an error to a status: bad inputs 400, unknown run 404, else 500.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var cfgErr *assumption.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid projection inputs", Problems: cfgErr.Problems})
	case errors.Is(err, store.ErrRunNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		h.log.WithError(err).Errorf("%s failed", op)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
