// Package http exposes the engine over a JSON API: session operations for
// transports plus health, graph introspection, and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Engine is what this adapter needs from the core: the driving port plus
// session enumeration.
type Engine interface {
	ports.Engine
	Sessions(ctx context.Context) ([]string, error)
}

// Server implements the HTTP surface over the engine.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, logger *slog.Logger) http.Handler {
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.Healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/start", s.Start)
		r.Post("/advance", s.Advance)
		r.Delete("/sessions/{sessionID}", s.DeleteSession)
		r.Get("/sessions", s.ListSessions)
		r.Get("/graph", s.GetGraph)
	})
	return r
}

// StartRequest is the body for POST /v1/start. SessionID is optional; a
// fresh id is generated when omitted.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// AdvanceRequest is the body for POST /v1/advance.
type AdvanceRequest struct {
	SessionID string `json:"session_id"`
	Selector  string `json:"selector"`
}

// StepResponse is returned by start and advance.
type StepResponse struct {
	SessionID string          `json:"session_id"`
	Renders   []domain.Render `json:"renders"`
	Terminal  bool            `json:"terminal"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// Start handles POST /v1/start.
func (s *Server) Start(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	renders, err := s.engine.Start(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("start failed", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("start error: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, stepResponse(sessionID, renders))
}

// Advance handles POST /v1/advance. Runtime misuse maps onto 4xx codes so
// transports can treat the press as a no-op; the session is never corrupted.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	var body AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	renders, err := s.engine.Advance(r.Context(), body.SessionID, body.Selector)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, stepResponse(body.SessionID, renders))
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrFlowTerminated):
		writeError(w, http.StatusConflict, "flow terminated; start a new session")
	case errors.Is(err, domain.ErrInvalidSelector):
		s.logger.Debug("advance rejected", "session_id", body.SessionID, "selector", body.Selector)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("advance failed", "session_id", body.SessionID, "err", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("advance error: %v", err))
	}
}

// DeleteSession handles DELETE /v1/sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.engine.Reset(r.Context(), sessionID); err != nil {
		s.logger.Error("session delete failed", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /v1/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Sessions(r.Context())
	if err != nil {
		s.logger.Error("session list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

// GetGraph handles GET /v1/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	f := s.engine.Flow()

	blocks := make([]map[string]any, 0, f.Len())
	for _, b := range f.Blocks() {
		blocks = append(blocks, blockView(b))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"flow_id": f.ID(),
		"entry":   f.Entry(),
		"blocks":  blocks,
	})
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	f := s.engine.Flow()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"flow_id": f.ID(),
		"blocks":  f.Len(),
	})
}

// blockView flattens a Block for JSON, carrying the document's type tag. The
// switch is exhaustive over the closed Block set.
func blockView(b domain.Block) map[string]any {
	view := map[string]any{
		"id":       b.BlockID(),
		"rules":    b.BlockRules(),
		"terminal": domain.IsTerminal(b),
	}
	switch blk := b.(type) {
	case *domain.Message:
		view["type"] = domain.TypeMessage
		view["text"] = blk.Text
		if blk.Next != "" {
			view["next"] = blk.Next
		}
	case *domain.Menu:
		view["type"] = domain.TypeMenu
		view["menu_id"] = blk.MenuID
		view["text"] = blk.Text
		view["buttons"] = blk.Buttons
	case *domain.MesMenu:
		view["type"] = domain.TypeMesMenu
		view["text"] = blk.Text
		view["button"] = blk.Button
	}
	return view
}

func stepResponse(sessionID string, renders []domain.Render) StepResponse {
	terminal := len(renders) > 0 && renders[len(renders)-1].Terminal
	return StepResponse{
		SessionID: sessionID,
		Renders:   renders,
		Terminal:  terminal,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
