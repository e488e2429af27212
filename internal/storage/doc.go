// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session-scoped persistence for agentdesk.
//
// # Key Types
//
//   - Store: the session key-value interface (Get/Set/Remove)
//   - MemoryStore: map-backed Store living as long as the process
//   - SQLiteStore: Store backed by SQLite (in-memory by default)
//   - ConversationStore: per-agent histories on top of a Store
//   - TokenStore: the bearer token kept on disk between runs
//
// # Usage
//
//	kv := storage.NewMemoryStore()
//	convs := storage.NewConversationStore(kv)
//	msgs := convs.Load("agent-1") // [{system, ""}] until something is saved
//	msgs = append(msgs, model.UserMessage("hi"))
//	err := convs.Save("agent-1", msgs)
//
// Conversations are stored under "chatHistory_<agentID>" as a JSON array, one
// key per agent. A Save always replaces the whole array in a single Set.
package storage
