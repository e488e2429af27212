// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Conversation is the ordered history for one agent. Order is chronological
// and entries are only ever appended.
type Conversation struct {
	AgentID  string
	Messages []Message
}

// Seed returns a fresh copy of the default history: one empty system entry.
func Seed() []Message {
	return []Message{SystemMessage("")}
}

// IsSeed reports whether msgs is still in the seed state.
func IsSeed(msgs []Message) bool {
	return len(msgs) == 1
}

// NewConversation creates a conversation in the seed state.
func NewConversation() *Conversation {
	return &Conversation{Messages: Seed()}
}

// Append adds msg to the end of the history.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Reset returns the conversation to the seed state.
func (c *Conversation) Reset() {
	c.Messages = Seed()
}

// IsSeed reports whether nothing has been added since the seed.
func (c *Conversation) IsSeed() bool {
	return IsSeed(c.Messages)
}

// Len returns the number of entries, seed included.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Snapshot returns a copy of the messages safe to hand to another owner.
func (c *Conversation) Snapshot() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// LastAssistant returns the most recent assistant message.
func (c *Conversation) LastAssistant() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

// Outbound builds the completion payload from a history: attachment markers
// and entries missing a role or content are dropped, everything else is kept
// in order.
func Outbound(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.IsComplete() || m.IsAttachmentMarker() {
			continue
		}
		out = append(out, m)
	}
	return out
}
