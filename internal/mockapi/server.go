// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mockapi is an in-memory stand-in for the agent service.
//
// It serves the same endpoints as the real backend and is used by tests
// and by `agentdesk mock-server` for local development. State lives in
// memory; every method is safe for concurrent use.
package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jeranaias/agentdesk/internal/api"
	"github.com/jeranaias/agentdesk/internal/model"
)

// ChatFunc produces the reply for a chat request.
type ChatFunc func(req api.ChatRequest) string

// Server is the fake backend.
type Server struct {
	router *chi.Mux

	mu       sync.Mutex
	users    map[string]string
	tokens   map[string]string
	agents   []api.Agent
	chatFn   ChatFunc
	chats    []api.ChatRequest
	ingested []api.IngestRequest
	failures map[string]int
}

// Options configures a Server.
type Options struct {
	// Verbose logs every request to stdout.
	Verbose bool
}

// New creates a server with one demo user and a few demo agents.
func New(opts Options) *Server {
	s := &Server{
		users:    map[string]string{"demo@example.com": "demo"},
		tokens:   make(map[string]string),
		agents:   DemoAgents(),
		chatFn:   EchoReply,
		failures: make(map[string]int),
	}

	r := chi.NewRouter()
	if opts.Verbose {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(s.injectFailures)

	r.Post("/api/auth/login", s.login)
	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Get("/api/agents", s.listAgents)
		r.Get("/api/agents/{id}", s.getAgent)
		r.Post("/api/chat", s.chat)
		r.Post("/api/alignment-data", s.ingest)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// DemoAgents returns the agents a fresh server knows about.
func DemoAgents() []api.Agent {
	return []api.Agent{
		{
			ID: "research",
			Revisions: []api.Revision{
				{Name: "Researcher", IntroductoryText: "Hello! I can help you **find** and summarize sources."},
				{Name: "Research Assistant"},
			},
		},
		{
			ID: "writer",
			Revisions: []api.Revision{
				{Name: "Writer", IntroductoryText: "Hi, I am your writing partner. Paste a draft to begin."},
			},
		},
		{
			ID: "coder",
			Revisions: []api.Revision{
				{Name: "Code Helper", IntroductoryText: "Ask me about code:\n\n```go\nfmt.Println(\"hello\")\n```"},
			},
		},
	}
}

// EchoReply answers with the last user message.
func EchoReply(req api.ChatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if m := req.Messages[i]; m.Role == model.RoleUser {
			return fmt.Sprintf("You said: *%s*", m.Content)
		}
	}
	return ""
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// AddUser registers credentials.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// IssueToken returns a valid token for email without a login round trip.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = email
	return token
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// SetAgents replaces the agent list.
func (s *Server) SetAgents(agents []api.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents = agents
}

// SetChatFunc replaces the reply generator.
func (s *Server) SetChatFunc(fn ChatFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatFn = fn
}

// FailNext makes the next n requests to path answer with 500.
func (s *Server) FailNext(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = n
}

// ChatRequests returns every chat request received so far.
func (s *Server) ChatRequests() []api.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.ChatRequest(nil), s.chats...)
}

// Ingested returns every ingestion received so far.
func (s *Server) Ingested() []api.IngestRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.IngestRequest(nil), s.ingested...)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, valid := s.tokens[token]
		s.mu.Unlock()
		if !ok || !valid {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		n := s.failures[r.URL.Path]
		if n > 0 {
			s.failures[r.URL.Path] = n - 1
		}
		s.mu.Unlock()
		if n > 0 {
			writeError(w, http.StatusInternalServerError, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	s.mu.Lock()
	pw, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || pw != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{AccessToken: s.IssueToken(req.Email)})
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	agents := append([]api.Agent{}, s.agents...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, agents)
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agents {
		if a.ID == id {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeError(w, http.StatusNotFound, "agent not found")
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	s.mu.Lock()
	s.chats = append(s.chats, req)
	fn := s.chatFn
	s.mu.Unlock()

	// An empty reply omits the field, like a backend with nothing to say.
	reply := fn(req)
	if reply == "" {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, api.ChatResponse{Response: reply})
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	var req api.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	s.mu.Lock()
	s.ingested = append(s.ingested, req)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
