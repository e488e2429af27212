// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the remote agent service.
//
// # Endpoints
//
//   - POST /api/auth/login        Login
//   - GET  /api/agents            ListAgents
//   - GET  /api/agents/{id}       GetAgent, Welcome
//   - POST /api/chat              Chat
//   - POST /api/alignment-data    Ingest
//
// Every call except Login sends the bearer token. 401 and 403 map to
// ErrUnauthorized; other non-2xx responses are returned as *HTTPError.
// Requests are paced by a token-bucket limiter and are never retried.
//
// # Usage
//
//	client := api.NewClient(cfg.API.URL).WithToken(token)
//	agents, err := client.ListAgents(ctx)
//	reply, err := client.Chat(ctx, agentID, model.Outbound(history))
package api
