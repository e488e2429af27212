// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/agentdesk/internal/agents"
	"github.com/jeranaias/agentdesk/internal/api"
	"github.com/jeranaias/agentdesk/internal/config"
	"github.com/jeranaias/agentdesk/internal/extract"
	"github.com/jeranaias/agentdesk/internal/storage"
)

var errAuthRequired = errors.New("authentication required (run `agentdesk login`)")

// app holds the collaborators shared by the network commands.
type app struct {
	cfg           *config.Config
	client        *api.Client
	kv            storage.Store
	tokens        *storage.TokenStore
	conversations *storage.ConversationStore
	dir           *agents.Directory
	extractor     *extract.Extractor
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.RequireAPI(); err != nil {
		return nil, err
	}

	kv, err := openSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.URL).
		WithTimeout(cfg.Timeout()).
		WithRateLimit(cfg.API.RequestsPerSecond)
	tokens := storage.NewTokenStore(cfg.Auth.TokenFile)

	return &app{
		cfg:           cfg,
		client:        client,
		kv:            kv,
		tokens:        tokens,
		conversations: storage.NewConversationStore(kv),
		dir:           agents.NewDirectory(client, kv, tokens),
		extractor:     extract.New(),
	}, nil
}

func openSessionStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := storage.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		return s, nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

// Close releases the session store.
func (a *app) Close() error {
	return a.kv.Close()
}

// listAgents loads the agent list and turns the non-loaded states into errors.
func (a *app) listAgents(ctx context.Context) ([]api.Agent, error) {
	res := a.dir.Fetch(ctx)
	switch res.Status {
	case agents.AuthRequired:
		return nil, errAuthRequired
	case agents.Failed:
		return nil, fmt.Errorf("%s: %w", res.Message(), res.Err)
	case agents.Empty:
		return nil, nil
	}
	return res.Agents, nil
}

// resolveAgent finds the agent with id. An empty id is accepted when the
// API offers exactly one agent.
func (a *app) resolveAgent(ctx context.Context, id string) (api.Agent, error) {
	list, err := a.listAgents(ctx)
	if err != nil {
		return api.Agent{}, err
	}
	if len(list) == 0 {
		return api.Agent{}, errors.New("no agents available")
	}
	if id == "" {
		if len(list) == 1 {
			return list[0], nil
		}
		return api.Agent{}, errors.New("--agent is required (see `agentdesk agents`)")
	}
	for _, ag := range list {
		if ag.ID == id {
			return ag, nil
		}
	}
	return api.Agent{}, fmt.Errorf("unknown agent %q (see `agentdesk agents`)", id)
}
