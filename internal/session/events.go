// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/jeranaias/agentdesk/internal/extract"
)

// Task is asynchronous work started by a transition. It must not touch
// controller state; its Event is applied with Controller.Complete.
type Task func(ctx context.Context) Event

// Event is the result of a Task.
type Event interface {
	isEvent()
}

// origin identifies the conversation a result belongs to.
type origin struct {
	AgentID string
	Epoch   uint64
}

// WelcomeLoaded carries the agent's introductory text.
type WelcomeLoaded struct {
	origin
	Text string
	Err  error
}

// ReplyReceived carries the agent's answer to a send.
type ReplyReceived struct {
	origin
	Text string
	Err  error
}

// FileExtracted carries the text of a selected file.
type FileExtracted struct {
	origin
	Path   string
	Result extract.Result
	Err    error
}

// Ingested reports the outcome of forwarding upload text.
type Ingested struct {
	origin
	FileName string
	Err      error
}

func (WelcomeLoaded) isEvent() {}
func (ReplyReceived) isEvent() {}
func (FileExtracted) isEvent() {}
func (Ingested) isEvent()      {}
