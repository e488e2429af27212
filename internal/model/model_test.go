// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"reflect"
	"testing"
)

// =============================================================================
// ATTACHMENT MARKER TESTS
// =============================================================================

func TestMessage_IsAttachmentMarker(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"marker", AttachmentMarker("report.pdf"), true},
		{"plain user text", UserMessage("hello"), false},
		{"assistant braces", AssistantMessage("{{report.pdf}}"), false},
		{"empty braces", UserMessage("{{}}"), false},
		{"prefix only", UserMessage("{{report.pdf}} and more"), false},
		{"multi-line", UserMessage("{{a\nb}}"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.IsAttachmentMarker(); got != tc.want {
				t.Errorf("IsAttachmentMarker(%q) = %v, want %v", tc.msg.Content, got, tc.want)
			}
		})
	}
}

func TestMessage_AttachmentName(t *testing.T) {
	if got := AttachmentMarker("notes.txt").AttachmentName(); got != "notes.txt" {
		t.Errorf("AttachmentName = %q, want notes.txt", got)
	}
	if got := UserMessage("hi").AttachmentName(); got != "" {
		t.Errorf("AttachmentName on plain text = %q, want empty", got)
	}
}

// =============================================================================
// OUTBOUND PAYLOAD TESTS
// =============================================================================

func TestOutbound_ExcludesExactlyMarkers(t *testing.T) {
	history := []Message{
		SystemMessage(""),
		AssistantMessage("Hello!"),
		UserMessage("summarise this"),
		AttachmentMarker("doc.docx"),
		AssistantMessage("Sure"),
		AttachmentMarker("scan.png"),
		UserMessage("thanks"),
	}

	got := Outbound(history)
	want := []Message{
		AssistantMessage("Hello!"),
		UserMessage("summarise this"),
		AssistantMessage("Sure"),
		UserMessage("thanks"),
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Outbound() = %+v, want %+v", got, want)
	}
	for _, m := range got {
		if m.IsAttachmentMarker() {
			t.Errorf("marker %q leaked into payload", m.Content)
		}
	}
}

func TestOutbound_DropsIncompleteMessages(t *testing.T) {
	got := Outbound([]Message{{Role: "", Content: "x"}, {Role: RoleUser, Content: ""}, UserMessage("ok")})
	if len(got) != 1 || got[0].Content != "ok" {
		t.Errorf("Outbound() = %+v, want only the complete message", got)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_SeedAndReset(t *testing.T) {
	conv := NewConversation()
	if !conv.IsSeed() {
		t.Fatal("new conversation should be in seed state")
	}
	if conv.Messages[0] != SystemMessage("") {
		t.Errorf("seed entry = %+v", conv.Messages[0])
	}

	conv.Append(UserMessage("hi"))
	if conv.IsSeed() || conv.Len() != 2 {
		t.Errorf("after append: len = %d, seed = %v", conv.Len(), conv.IsSeed())
	}

	conv.Reset()
	if !conv.IsSeed() {
		t.Error("Reset should restore the seed")
	}
}

func TestSeed_ReturnsFreshCopy(t *testing.T) {
	a := Seed()
	a[0].Content = "mutated"
	if Seed()[0].Content != "" {
		t.Error("Seed must not share backing storage between calls")
	}
}

func TestConversation_LastAssistant(t *testing.T) {
	conv := NewConversation()
	if _, ok := conv.LastAssistant(); ok {
		t.Error("expected no assistant message in seed")
	}
	conv.Append(AssistantMessage("one"))
	conv.Append(UserMessage("q"))
	conv.Append(AssistantMessage("two"))

	got, ok := conv.LastAssistant()
	if !ok || got.Content != "two" {
		t.Errorf("LastAssistant = %+v, %v", got, ok)
	}
}

func TestConversation_SnapshotIsIndependent(t *testing.T) {
	conv := NewConversation()
	conv.Append(UserMessage("a"))
	snap := conv.Snapshot()
	snap[1].Content = "changed"
	if conv.Messages[1].Content != "a" {
		t.Error("Snapshot must copy messages")
	}
}
