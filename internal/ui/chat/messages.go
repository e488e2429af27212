// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/agentdesk/internal/agents"
	"github.com/jeranaias/agentdesk/internal/config"
	"github.com/jeranaias/agentdesk/internal/session"
)

// agentsLoadedMsg carries the result of an agent list fetch.
type agentsLoadedMsg struct {
	result agents.Result
}

// sessionEventMsg carries the result of a session.Task.
type sessionEventMsg struct {
	event session.Event
}

// redirectLoginMsg ends the program so the login prompt can run.
type redirectLoginMsg struct{}

// configChangedMsg carries a reloaded configuration file.
type configChangedMsg struct {
	cfg *config.Config
	err error
}

// clipboardMsg reports the outcome of copying the last reply.
type clipboardMsg struct {
	err error
}
