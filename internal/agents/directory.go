// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agents loads the agent list for the sidebar.
//
// The bearer token comes from the session store. When the session has
// none, the token persisted by the last login is validated against the
// service and, if accepted, copied into the session. With no usable token
// the result asks for a login.
package agents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/jeranaias/agentdesk/internal/api"
	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/jeranaias/agentdesk/internal/storage"
)

// RedirectDelay is how long "Authentication required" stays on screen
// before the login prompt takes over.
const RedirectDelay = 2 * time.Second

// Status is the outcome of a fetch.
type Status int

const (
	Loaded Status = iota
	Empty
	Failed
	AuthRequired
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	case AuthRequired:
		return "auth-required"
	default:
		return "unknown"
	}
}

// Result is what the sidebar shows.
type Result struct {
	Status Status
	Agents []api.Agent
	Err    error
}

// Message is the text for the non-Loaded states.
func (r Result) Message() string {
	switch r.Status {
	case Empty:
		return "No agents available"
	case Failed:
		return "Failed to load agents"
	case AuthRequired:
		return "Authentication required"
	default:
		return ""
	}
}

// Retryable reports whether a retry affordance makes sense.
func (r Result) Retryable() bool {
	return r.Status == Failed || r.Status == Empty
}

// Lister is the part of the API client the directory needs.
type Lister interface {
	ListAgents(ctx context.Context) ([]api.Agent, error)
	SetToken(token string)
}

// TokenSource yields the token persisted by the last login.
type TokenSource interface {
	Retrieve() (string, error)
}

// Directory fetches agents with token fallback.
type Directory struct {
	client  Lister
	session storage.Store
	tokens  TokenSource
	log     *logrus.Entry
}

// NewDirectory creates a directory. tokens may be nil.
func NewDirectory(client Lister, session storage.Store, tokens TokenSource) *Directory {
	return &Directory{
		client:  client,
		session: session,
		tokens:  tokens,
		log:     logging.For("agents"),
	}
}

// Fetch loads the agent list.
func (d *Directory) Fetch(ctx context.Context) Result {
	token, err := d.session.Get(storage.KeyAccessToken)
	if err != nil || token == "" {
		return d.fetchWithStoredToken(ctx)
	}

	d.client.SetToken(token)
	agents, err := d.client.ListAgents(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			d.log.Info("session token rejected")
			d.session.Remove(storage.KeyAccessToken)
			return Result{Status: AuthRequired, Err: err}
		}
		d.log.WithError(err).Warn("failed to load agents")
		return Result{Status: Failed, Err: err}
	}
	return loaded(agents)
}

// fetchWithStoredToken validates the persisted token by listing agents
// with it. A valid token is promoted into the session.
func (d *Directory) fetchWithStoredToken(ctx context.Context) Result {
	if d.tokens == nil {
		return Result{Status: AuthRequired}
	}
	stored, err := d.tokens.Retrieve()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			d.log.WithError(err).Warn("failed to read stored token")
		}
		return Result{Status: AuthRequired, Err: err}
	}

	d.client.SetToken(stored)
	agents, err := d.client.ListAgents(ctx)
	if err != nil {
		d.log.WithError(err).Info("stored token is not usable")
		return Result{Status: AuthRequired, Err: err}
	}
	if err := d.session.Set(storage.KeyAccessToken, stored); err != nil {
		d.log.WithError(err).Warn("failed to store session token")
	}
	return loaded(agents)
}

func loaded(agents []api.Agent) Result {
	if len(agents) == 0 {
		return Result{Status: Empty}
	}
	return Result{Status: Loaded, Agents: agents}
}

// Filter returns the agents whose display name contains query, ignoring
// case. An empty query returns all agents.
func Filter(agents []api.Agent, query string) []api.Agent {
	query = strings.TrimSpace(query)
	if query == "" {
		return agents
	}
	fold := cases.Fold()
	q := fold.String(query)

	var out []api.Agent
	for _, a := range agents {
		if strings.Contains(fold.String(a.DisplayName()), q) {
			out = append(out, a)
		}
	}
	return out
}
