// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jeranaias/agentdesk/internal/model"
)

// backends returns one of each Store implementation, closed on cleanup.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteMem, err := NewSQLiteStore(MemoryDSN)
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	sqliteFile, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "session.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite file store: %v", err)
	}

	stores := map[string]Store{
		"memory":      NewMemoryStore(),
		"sqlite":      sqliteMem,
		"sqlite-file": sqliteFile,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

// =============================================================================
// KV STORE TESTS
// =============================================================================

func TestStore_GetSetRemove(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get("missing"); err != ErrNotFound {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}

			if err := kv.Set("k", "v1"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Set("k", "v2"); err != nil {
				t.Fatalf("Set overwrite failed: %v", err)
			}
			got, err := kv.Get("k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != "v2" {
				t.Errorf("Get = %q, want %q", got, "v2")
			}

			if err := kv.Remove("k"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if err := kv.Remove("k"); err != nil {
				t.Errorf("Remove of missing key should not fail: %v", err)
			}
			if _, err := kv.Get("k"); err != ErrNotFound {
				t.Errorf("Get after Remove error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestHistoryKey(t *testing.T) {
	if got := HistoryKey("a1"); got != "chatHistory_a1" {
		t.Errorf("HistoryKey = %q, want chatHistory_a1", got)
	}
}

// =============================================================================
// CONVERSATION STORE TESTS
// =============================================================================

func TestConversationStore_LoadDefault(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewConversationStore(kv)

			got := store.Load("never-saved")
			want := []model.Message{{Role: model.RoleSystem, Content: ""}}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Load = %#v, want seed %#v", got, want)
			}
		})
	}
}

func TestConversationStore_SaveOverwrites(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewConversationStore(kv)

			first := append(model.Seed(), model.UserMessage("one"), model.AssistantMessage("two"))
			if err := store.Save("a1", first); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			second := append(model.Seed(), model.UserMessage("only"))
			if err := store.Save("a1", second); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			// Same save twice must leave the same state.
			if err := store.Save("a1", second); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			got := store.Load("a1")
			if !reflect.DeepEqual(got, second) {
				t.Errorf("Load = %#v, want %#v", got, second)
			}
		})
	}
}

func TestConversationStore_ClearReturnsSeed(t *testing.T) {
	histories := map[string][]model.Message{
		"empty-save": {},
		"seed":       model.Seed(),
		"long": append(model.Seed(),
			model.UserMessage("hi"),
			model.AttachmentMarker("a.pdf"),
			model.AssistantMessage("hello")),
	}

	for name, msgs := range histories {
		t.Run(name, func(t *testing.T) {
			store := NewConversationStore(NewMemoryStore())
			if err := store.Save("a1", msgs); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if err := store.Clear("a1"); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			if got := store.Load("a1"); !reflect.DeepEqual(got, model.Seed()) {
				t.Errorf("Load after Clear = %#v, want seed", got)
			}
		})
	}
}

func TestConversationStore_AgentsAreIsolated(t *testing.T) {
	store := NewConversationStore(NewMemoryStore())

	a := append(model.Seed(), model.UserMessage("for a"))
	if err := store.Save("a", a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear("b"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if got := store.Load("a"); !reflect.DeepEqual(got, a) {
		t.Errorf("Load(a) = %#v, want %#v", got, a)
	}
	if got := store.Load("b"); !model.IsSeed(got) {
		t.Errorf("Load(b) = %#v, want seed", got)
	}
}

func TestConversationStore_CorruptEntry(t *testing.T) {
	kv := NewMemoryStore()
	kv.Set(HistoryKey("a1"), "{not json")

	store := NewConversationStore(kv)
	if got := store.Load("a1"); !reflect.DeepEqual(got, model.Seed()) {
		t.Errorf("Load of corrupt entry = %#v, want seed", got)
	}
}

func TestConversationStore_WireFormat(t *testing.T) {
	kv := NewMemoryStore()
	store := NewConversationStore(kv)

	if err := store.Save("a1", append(model.Seed(), model.UserMessage("hi"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := kv.Get("chatHistory_a1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := `[{"role":"system","content":""},{"role":"user","content":"hi"}]`
	if raw != want {
		t.Errorf("stored value = %s, want %s", raw, want)
	}
}

func TestConversationStore_SaveRequiresAgent(t *testing.T) {
	store := NewConversationStore(NewMemoryStore())
	if err := store.Save("", model.Seed()); err == nil {
		t.Error("Expected error for empty agent id")
	}
}

// =============================================================================
// TOKEN STORE TESTS
// =============================================================================

func TestTokenStore(t *testing.T) {
	ts := NewTokenStore(filepath.Join(t.TempDir(), "auth", "token"))

	if _, err := ts.Retrieve(); err != ErrNotFound {
		t.Errorf("Retrieve on empty store error = %v, want ErrNotFound", err)
	}

	if err := ts.Store("  abc123 "); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	got, err := ts.Retrieve()
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got != "abc123" {
		t.Errorf("Retrieve = %q, want abc123", got)
	}

	if err := ts.Store(""); err == nil {
		t.Error("Expected error storing empty token")
	}

	if err := ts.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := ts.Delete(); err != nil {
		t.Errorf("Delete of missing token should not fail: %v", err)
	}
	if _, err := ts.Retrieve(); err != ErrNotFound {
		t.Errorf("Retrieve after Delete error = %v, want ErrNotFound", err)
	}
}
