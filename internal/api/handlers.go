package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mmrzaf/datalchemy/internal/app"
	"github.com/mmrzaf/datalchemy/internal/domain"
)

type Handler struct {
	runService *app.RunService
}

func NewHandler(runService *app.RunService) *Handler {
	return &Handler{runService: runService}
}

// Routes registers the v1 API on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/generators", h.ListGenerators)
	mux.HandleFunc("GET /api/v1/plans", h.ListPlans)
	mux.HandleFunc("POST /api/v1/runs", h.CreateRun)
	mux.HandleFunc("POST /api/v1/runs/plan", h.PlanRun)
	mux.HandleFunc("POST /api/v1/runs/validate", h.ValidateRun)
	mux.HandleFunc("GET /api/v1/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}", h.GetRun)
	return mux
}

func (h *Handler) ListGenerators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.runService.Generators())
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	list, err := h.runService.ListPlans()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// runResponse is the body returned for a generation request.
type runResponse struct {
	Run    *domain.Run              `json:"run"`
	Report *domain.GenerationReport `json:"report,omitempty"`
}

func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req app.GenerateRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid json"))
		return
	}
	// Output always goes to the configured directory.
	req.OutDir = ""
	res, err := h.runService.Generate(r.Context(), &req)
	if res == nil {
		writeError(w, statusFor(err), err)
		return
	}
	body := runResponse{Run: res.Run}
	if res.Result != nil {
		body.Report = res.Result.Report
	}
	if err != nil {
		writeJSON(w, statusFor(err), body)
		return
	}
	writeJSON(w, http.StatusCreated, body)
}

func (h *Handler) PlanRun(w http.ResponseWriter, r *http.Request) {
	var req app.GenerateRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid json"))
		return
	}
	plan, err := h.runService.Plan(&req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) ValidateRun(w http.ResponseWriter, r *http.Request) {
	var req app.GenerateRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid json"))
		return
	}
	if err := h.runService.Validate(&req); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	list, err := h.runService.ListRuns(limit, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runService.GetRun(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case domain.IsInvalidPlan(err):
		return http.StatusBadRequest
	case app.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsUnsupported(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSONStrict(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
