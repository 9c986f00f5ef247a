// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest runs an in-process stand-in for the CarePath data and
// inference services. It serves the same routes with the same JSON shapes
// so the client, the views and the CLI can be tested end to end.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/carepath/carepath-tui/internal/model"
)

// Route keys accepted by Fail.
const (
	RouteListLogs = "GET /chat-logs"
	RouteGetLog   = "GET /chat-logs/{id}"
	RouteTriage   = "POST /triage"
	RouteHealth   = "GET /health"
)

type failure struct {
	status int
	detail interface{}
}

// Server is a fake backend serving both services from one listener.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	logs     []model.ChatLog
	failures map[string]failure
	bodies   [][]byte
	queries  []string
	delay    time.Duration
	defMode  string
}

// New starts a server preloaded with logs. Close it when done.
func New(logs ...model.ChatLog) *Server {
	s := &Server{
		logs:     append([]model.ChatLog(nil), logs...),
		failures: make(map[string]failure),
		defMode:  "mock",
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.guard(RouteHealth, s.handleHealth))
	r.Get("/chat-logs", s.guard(RouteListLogs, s.handleListLogs))
	r.Get("/chat-logs/{conversationID}", s.guard(RouteGetLog, s.handleGetLog))
	r.Post("/triage", s.guard(RouteTriage, s.handleTriage))
	return r
}

// Fail makes route answer status with detail until Recover is called.
// detail may be a string or any JSON-encodable value.
func (s *Server) Fail(route string, status int, detail interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// Recover clears every injected failure.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// SetDelay holds every response for d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// TriageBodies returns the raw request bodies received on POST /triage.
func (s *Server) TriageBodies() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.bodies...)
}

// ListQueries returns the raw query strings received on GET /chat-logs,
// failed requests included.
func (s *Server) ListQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// Logs returns a copy of the stored logs.
func (s *Server) Logs() []model.ChatLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChatLog(nil), s.logs...)
}

func (s *Server) guard(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, failing := s.failures[route]
		delay := s.delay
		if route == RouteListLogs {
			s.queries = append(s.queries, r.URL.RawQuery)
		}
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeJSON(w, f.status, map[string]interface{}{"detail": f.detail})
			return
		}
		next(w, r)
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthStatus{Status: "ok", Service: "carepath-fake", Version: "0.1.0"})
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	skip, err := intParam(r, "skip", 0)
	if err != nil || skip < 0 {
		validationError(w, "skip", "Input should be greater than or equal to 0")
		return
	}
	limit, err := intParam(r, "limit", 10)
	if err != nil || limit < 1 || limit > 100 {
		validationError(w, "limit", "Input should be between 1 and 100")
		return
	}
	mrn := r.URL.Query().Get("patient_mrn")

	s.mu.Lock()
	var matched []model.ChatLog
	for _, l := range s.logs {
		if mrn == "" || l.PatientMRN == mrn {
			matched = append(matched, l)
		}
	}
	s.mu.Unlock()

	items := []model.ChatLog{}
	if skip < len(matched) {
		end := skip + limit
		if end > len(matched) {
			end = len(matched)
		}
		items = matched[skip:end]
	}

	writeJSON(w, http.StatusOK, model.ChatLogPage{Items: items, Total: len(matched), Skip: skip, Limit: limit})
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.ConversationID == id {
			writeJSON(w, http.StatusOK, l)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{
		"detail": fmt.Sprintf("Chat log with conversation ID %s not found", id),
	})
}

func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		validationError(w, "body", "Invalid JSON")
		return
	}
	var req model.TriageRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.PatientMRN == "" || req.Query == "" {
		validationError(w, "body", "patient_mrn and query are required")
		return
	}

	mode := s.defMode
	if req.LLMMode != nil && *req.LLMMode != "" {
		mode = *req.LLMMode
	}
	inference := 42.5
	now := model.NewTimestamp(time.Now())
	conversationID := uuid.NewString()

	s.mu.Lock()
	s.bodies = append(s.bodies, raw)
	s.logs = append(s.logs, model.ChatLog{
		ID:             strconv.Itoa(len(s.logs) + 1),
		ConversationID: conversationID,
		PatientMRN:     req.PatientMRN,
		Channel:        "api",
		StartedAt:      now,
		Messages: []model.LogMessage{
			{Role: model.RoleUser, Content: req.Query, Timestamp: now},
			{Role: model.RoleAssistant, Content: mockAnswer(req.Query), Timestamp: now, ModelName: mode, LatencyMs: inference},
		},
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.ChatResponse{
		TraceID:         uuid.NewString(),
		PatientMRN:      req.PatientMRN,
		Query:           req.Query,
		LLMMode:         mode,
		Response:        mockAnswer(req.Query),
		InferenceTimeMs: &inference,
		ConversationID:  conversationID,
	})
}

func mockAnswer(query string) string {
	return "**Triage note:** " + query + "\n\nPlease monitor symptoms and contact your care team if they worsen."
}

// =============================================================================
// HELPERS
// =============================================================================

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func validationError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"detail": []map[string]interface{}{{"loc": []string{"query", field}, "msg": msg}},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
