package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/koios/jokeview/internal/orchestrator"
	"github.com/koios/jokeview/internal/presentation"
	"github.com/koios/jokeview/pkg/models"
	"go.uber.org/zap"
)

// HealthChecker is a dependency reported by /health
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type healthCheck struct {
	name    string
	checker HealthChecker
}

// DemoHandler serves the demo page and the two request triggers
type DemoHandler struct {
	page     *presentation.Page
	pipeline *orchestrator.Pipeline
	checks   []healthCheck
	logger   *zap.Logger
}

// NewDemoHandler creates a new demo handler
func NewDemoHandler(page *presentation.Page, pipeline *orchestrator.Pipeline, logger *zap.Logger) *DemoHandler {
	return &DemoHandler{
		page:     page,
		pipeline: pipeline,
		logger:   logger,
	}
}

// AddHealthCheck makes /health report the state of a dependency
func (h *DemoHandler) AddHealthCheck(name string, c HealthChecker) {
	h.checks = append(h.checks, healthCheck{name: name, checker: c})
}

// RegisterRoutes registers the page routes
func (h *DemoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/state", h.handleState).Methods(http.MethodGet)
	r.HandleFunc("/run/{mode}", h.handleRun).Methods(http.MethodPost)
}

// handleHealth handles GET /health - returns service health status
func (h *DemoHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.checker.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("check", c.name), zap.Error(err))
			checks[c.name] = err.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
			continue
		}
		checks[c.name] = "ok"
	}

	writeJSON(w, h.logger, code, map[string]interface{}{
		"status":        status,
		"service":       "jokeview",
		"endpoint":      h.pipeline.Endpoint(),
		"pending_tasks": h.pipeline.Pending(),
		"checks":        checks,
	})
}

// handleIndex handles GET / - renders the page from the current region state
func (h *DemoHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	status := h.pipeline.Status()
	view := presentation.View{
		Snapshot:     h.page.Snapshot(),
		CallbackCode: orchestrator.CallbackSample,
		PromiseCode:  orchestrator.PromiseSample,
		Status:       statusLine(status),
		InFlight:     status.Running(),
	}

	var buf bytes.Buffer
	if err := presentation.RenderHTML(&buf, view); err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// stateResponse is the body of GET /state
type stateResponse struct {
	Run  orchestrator.Status   `json:"run"`
	Page presentation.Snapshot `json:"page"`
}

// handleState handles GET /state - returns the run status and every region
func (h *DemoHandler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, stateResponse{
		Run:  h.pipeline.Status(),
		Page: h.page.Snapshot(),
	})
}

// runResponse is the body of POST /run/{mode} for JSON clients
type runResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
	RunID  string `json:"run_id,omitempty"`
	State  string `json:"state,omitempty"`
	Kind   string `json:"error_kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleRun handles POST /run/{mode} - starts a callback or promise style request.
// With ?wait=true the response is sent once the run has loaded or failed.
func (h *DemoHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	mode, err := models.ParseViewMode(mux.Vars(r)["mode"])
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, err.Error())
		return
	}

	result, err := h.pipeline.Trigger(mode)
	if err != nil {
		if errors.Is(err, orchestrator.ErrInFlight) {
			h.logger.Warn("Ignoring trigger while a request is in flight", zap.String("mode", mode.String()))
			if !wantsJSON(r) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			writeError(w, h.logger, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Failed to trigger request", zap.Error(err))
		writeError(w, h.logger, http.StatusServiceUnavailable, "Failed to start request")
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		if !wantsJSON(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		status := h.pipeline.Status()
		writeJSON(w, h.logger, http.StatusAccepted, runResponse{
			Status: "accepted",
			Mode:   mode.String(),
			RunID:  status.RunID,
			State:  status.State,
		})
		return
	}

	out, err := result.Await(r.Context())
	if err != nil {
		h.logger.Debug("Client went away while waiting for run", zap.String("mode", mode.String()))
		return
	}

	resp := runResponse{
		Status: "completed",
		Mode:   mode.String(),
		RunID:  out.RunID,
		State:  out.State.String(),
	}
	if out.Err != nil {
		resp.Kind = out.Kind.String()
		resp.Error = out.Err.Error()
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func statusLine(s orchestrator.Status) string {
	switch {
	case s.Running():
		return "Waiting for the " + s.Mode + " request..."
	case s.State == "failed":
		return "The last " + s.Mode + " request failed (" + s.Kind + "): " + s.Error
	default:
		return ""
	}
}
