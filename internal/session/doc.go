// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives one chat session: agent selection, sending,
// history replay, reset and file uploads.
//
// # Key Types
//
//   - Controller: the state machine (NoAgentSelected, AgentActive)
//   - Transcript, API, Extractor, Conversations: the ports it drives
//   - Task: asynchronous work returned by a transition
//   - Event: the result of a Task, applied with Controller.Complete
//
// # Threading
//
// The controller is not safe for concurrent use. Transition methods and
// Complete run on the UI goroutine; Tasks may run anywhere and never touch
// controller state. A typical loop:
//
//	for _, task := range ctrl.HandleSend(input) {
//	    go func() { events <- task(ctx) }()
//	}
//	// later, on the UI goroutine
//	ctrl.Complete(<-events)
//
// # Stale Results
//
// Results carry the agent id and that agent's reset epoch. A reply whose
// agent was reset meanwhile is dropped. A reply for an agent that is no
// longer active is stored in that agent's history without being shown.
package session
