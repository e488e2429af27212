// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat is the agentdesk chat screen.

The Model is a Bubble Tea program with three areas: the agent sidebar
(with search), the transcript viewport and the message input. All
conversation logic lives in session.Controller; the model implements the
controller's Transcript port through transcriptView and turns the
controller's Tasks into tea.Cmds whose results come back as messages and
are applied with Controller.Complete on the Bubble Tea goroutine.

Assistant replies are revealed one character at a time by a reveal.Queue.
Its ticks are scheduled as tea.Tick commands (teaScheduler), so reveal
mutations also happen on the Bubble Tea goroutine.

# Keys

	Tab        switch between agent list and input
	/          search agents (agent list)
	Enter      select agent / send message
	Alt+Enter  newline in message
	Ctrl+O     choose a file to upload
	Ctrl+X     cancel pending upload
	Ctrl+R     reset the conversation
	Ctrl+Y     copy the last reply
	Ctrl+C     quit
*/
package chat
