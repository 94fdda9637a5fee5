// Package server exposes the agent over HTTP for the UI shell.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/paisapal/paisapal-go/internal/agent"
	"github.com/paisapal/paisapal-go/internal/logger"
)

// Server routes HTTP requests to the agent.
type Server struct {
	agent *agent.Agent
}

// New builds the server.
func New(a *agent.Agent) *Server {
	return &Server{agent: a}
}

// Router assembles the chi routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/sessions", s.handleOpenSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Delete("/", s.handleCloseSession)
		r.Get("/messages", s.handleListMessages)
		r.Post("/messages", s.handleSendMessage)
		r.Post("/actions/{actionID}/confirm", s.handleConfirm)
		r.Post("/actions/{actionID}/cancel", s.handleCancel)
	})
	return r
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	session := s.agent.OpenSession(req.UserID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": session.ID,
		"messages":   session.Messages(),
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s.agent.CloseSession(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	session, ok := s.agent.Session(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, session.Messages())
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	msg, err := s.agent.Send(r.Context(), chi.URLParam(r, "sessionID"), req.Text)
	if err != nil {
		writeAgentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	msg, err := s.agent.Confirm(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "actionID"))
	if err != nil {
		writeAgentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	msg, err := s.agent.Cancel(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "actionID"))
	if err != nil {
		writeAgentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func writeAgentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, agent.ErrUnknownSession):
		http.Error(w, "unknown session", http.StatusNotFound)
	case errors.Is(err, agent.ErrBusy):
		http.Error(w, "a request is already in flight", http.StatusConflict)
	default:
		logger.L.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("response encode failed", "error", err)
	}
}
