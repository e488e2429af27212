// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeranaias/agentdesk/internal/model"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore keeps one history per agent in a session Store.
type ConversationStore struct {
	kv Store
}

// NewConversationStore creates a conversation store over kv.
func NewConversationStore(kv Store) *ConversationStore {
	return &ConversationStore{kv: kv}
}

// Load returns the stored history for agentID. It never returns an empty
// slice: a missing or unreadable entry yields the seed.
func (s *ConversationStore) Load(agentID string) []model.Message {
	raw, err := s.kv.Get(HistoryKey(agentID))
	if err != nil {
		return model.Seed()
	}

	var msgs []model.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil || len(msgs) == 0 {
		return model.Seed()
	}
	return msgs
}

// Save replaces the stored history for agentID with msgs.
func (s *ConversationStore) Save(agentID string, msgs []model.Message) error {
	if agentID == "" {
		return errors.New("save conversation: empty agent id")
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	if err := s.kv.Set(HistoryKey(agentID), string(data)); err != nil {
		return fmt.Errorf("save conversation for %s: %w", agentID, err)
	}
	return nil
}

// Clear removes the stored history; the next Load returns the seed.
func (s *ConversationStore) Clear(agentID string) error {
	if err := s.kv.Remove(HistoryKey(agentID)); err != nil {
		return fmt.Errorf("clear conversation for %s: %w", agentID, err)
	}
	return nil
}
