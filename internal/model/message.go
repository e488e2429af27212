// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"regexp"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Agent"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. The JSON shape is the one the chat
// endpoint expects, so messages are sent as-is.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// =============================================================================
// ATTACHMENT MARKERS
// =============================================================================

// attachmentPattern matches a whole-content "{{...}}" marker. Like the
// rest of the pattern, "." does not cross newlines.
var attachmentPattern = regexp.MustCompile(`^\{\{.+\}\}$`)

// AttachmentMarker returns the history entry recorded when fileName is
// uploaded.
func AttachmentMarker(fileName string) Message {
	return UserMessage("{{" + fileName + "}}")
}

// IsAttachmentMarker reports whether m marks an upload rather than carrying
// user text.
func (m Message) IsAttachmentMarker() bool {
	return m.Role == RoleUser && attachmentPattern.MatchString(m.Content)
}

// AttachmentName returns the file name inside a marker, or "" when m is not
// a marker.
func (m Message) AttachmentName() string {
	if !m.IsAttachmentMarker() {
		return ""
	}
	return m.Content[2 : len(m.Content)-2]
}

// IsComplete reports whether both role and content are set.
func (m Message) IsComplete() bool {
	return m.Role != "" && m.Content != ""
}
