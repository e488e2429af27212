// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/jeranaias/agentdesk/internal/extract"
	"github.com/jeranaias/agentdesk/internal/model"
)

// NoticeLevel grades a user-facing notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// Notice is a transient message for the user (toast, status line).
type Notice struct {
	Level NoticeLevel
	Text  string
}

// Transcript is the display side of a session.
type Transcript interface {
	// Clear empties the transcript and abandons pending reveals.
	Clear()
	// ShowUser displays the user's own text verbatim, without animation.
	ShowUser(text string)
	// ShowAssistant renders markdown, revealed when animate is set,
	// instantly otherwise.
	ShowAssistant(markdown string, animate bool)
	// SetTyping shows or hides the "agent is typing" indicator.
	SetTyping(on bool)
	// SetActiveAgent marks the agent as selected and enables message input,
	// send and upload controls.
	SetActiveAgent(id, name string)
	// SetUploadPreview shows the pending file name and focuses the input.
	// An empty name hides the preview.
	SetUploadPreview(fileName string)
	// Notify surfaces a notice.
	Notify(n Notice)
}

// API is the remote agent service.
type API interface {
	Welcome(ctx context.Context, agentID string) (string, error)
	Chat(ctx context.Context, agentID string, messages []model.Message) (string, error)
	Ingest(ctx context.Context, key, value string) error
}

// Extractor turns a file into text.
type Extractor interface {
	Extract(ctx context.Context, path string) (extract.Result, error)
}

// Conversations persists per-agent histories.
type Conversations interface {
	Load(agentID string) []model.Message
	Save(agentID string, msgs []model.Message) error
	Clear(agentID string) error
}
