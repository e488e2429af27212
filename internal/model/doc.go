// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation data types shared by the store,
// the session controller and the API client.
//
// # Key Types
//
//   - Role: message sender (system, user, assistant)
//   - Message: a role-tagged piece of transcript text
//   - Conversation: the ordered, append-only history for one agent
//
// A conversation always starts from the seed [{system, ""}]. File uploads
// are recorded as attachment markers: user messages whose whole content is
// "{{fileName}}". Markers are kept in history but never replayed on screen
// and never sent to the completion endpoint:
//
//	conv := model.NewConversation()
//	conv.Append(model.UserMessage("hello"))
//	conv.Append(model.AttachmentMarker("notes.pdf"))
//	payload := model.Outbound(conv.Messages) // [{user, "hello"}]
package model
