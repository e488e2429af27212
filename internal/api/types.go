// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"github.com/jeranaias/agentdesk/internal/model"
)

// Revision is one saved version of an agent's configuration.
type Revision struct {
	Name             string `json:"name" yaml:"name"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	IntroductoryText string `json:"introductoryText,omitempty" yaml:"introductoryText,omitempty"`
}

// Agent is a remote conversational persona.
type Agent struct {
	ID             string     `json:"id" yaml:"id"`
	Revisions      []Revision `json:"revisions" yaml:"revisions"`
	CustomShareURL string     `json:"customShareUrl,omitempty" yaml:"customShareUrl,omitempty"`
}

// DisplayName returns the name of the latest revision, or the id when the
// agent has no named revision.
func (a Agent) DisplayName() string {
	if n := len(a.Revisions); n > 0 && a.Revisions[n-1].Name != "" {
		return a.Revisions[n-1].Name
	}
	return a.ID
}

// IntroductoryText returns the welcome text of the first revision.
func (a Agent) IntroductoryText() string {
	if len(a.Revisions) == 0 {
		return ""
	}
	return a.Revisions[0].IntroductoryText
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	AgentID  string          `json:"agentId"`
	Messages []model.Message `json:"messages"`
}

// ChatResponse is the reply to a chat request.
type ChatResponse struct {
	Response string `json:"response"`
}

// IngestRequest is the body of POST /api/alignment-data.
type IngestRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NoResponseText stands in for a chat reply that carried no text.
const NoResponseText = "No response received"
