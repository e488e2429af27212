// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/agentdesk/internal/api"
	"github.com/jeranaias/agentdesk/internal/model"
)

func TestServer_RequiresBearer(t *testing.T) {
	s := New(Options{})

	for _, path := range []string{"/api/agents", "/api/agents/research"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestServer_RevokeTokens(t *testing.T) {
	s := New(Options{})
	token := s.IssueToken("demo@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.RevokeTokens()
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_IngestRequiresKey(t *testing.T) {
	s := New(Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/alignment-data", strings.NewReader(`{"value":"x"}`))
	req.Header.Set("Authorization", "Bearer "+s.IssueToken("demo@example.com"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.Ingested())
}

func TestEchoReply(t *testing.T) {
	assert.Equal(t, "", EchoReply(apiRequest()))
	req := apiRequest("first", "second")
	assert.Equal(t, "You said: *second*", EchoReply(req))
}

func apiRequest(userTexts ...string) api.ChatRequest {
	req := api.ChatRequest{AgentID: "a"}
	for _, s := range userTexts {
		req.Messages = append(req.Messages, model.UserMessage(s), model.AssistantMessage("ok"))
	}
	return req
}
