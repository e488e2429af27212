// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeModes(t *testing.T) {
	if th := NewTheme(ModeDark); !th.IsDark {
		t.Error("dark mode should report IsDark")
	}
	if th := NewTheme(ModeLight); th.IsDark {
		t.Error("light mode should not report IsDark")
	}
	if th := NewTheme(ModeAuto); th == nil {
		t.Fatal("NewTheme(auto) returned nil")
	}
}

func TestThemeStylesRender(t *testing.T) {
	th := NewTheme(ModeDark)
	for name, out := range map[string]string{
		"UserBubble":      th.UserBubble.Render("hi"),
		"AssistantBubble": th.AssistantBubble.Render("hi"),
		"Quote":           th.Quote.Render("hi"),
		"ToastError":      th.ToastError.Render("hi"),
	} {
		if !strings.Contains(out, "hi") {
			t.Errorf("%s dropped its content: %q", name, out)
		}
	}
}

func TestLayoutMode(t *testing.T) {
	th := NewTheme(ModeDark)
	tests := []struct {
		width   int
		mode    LayoutMode
		sidebar int
	}{
		{40, LayoutNarrow, 0},
		{80, LayoutMedium, 24},
		{140, LayoutWide, 32},
	}
	for _, tt := range tests {
		th.SetSize(tt.width, 30)
		if got := th.GetLayoutMode(); got != tt.mode {
			t.Errorf("width %d: mode = %v, want %v", tt.width, got, tt.mode)
		}
		if got := th.SidebarWidth(); got != tt.sidebar {
			t.Errorf("width %d: sidebar = %d, want %d", tt.width, got, tt.sidebar)
		}
	}
}

func TestStatusRenderers(t *testing.T) {
	if !strings.Contains(RenderError("boom"), StatusIndicators.Error) {
		t.Error("RenderError should carry the error indicator")
	}
	if !strings.Contains(RenderSuccess("ok"), "ok") {
		t.Error("RenderSuccess dropped the message")
	}
	if !strings.Contains(RenderWarning("careful"), StatusIndicators.Warning) {
		t.Error("RenderWarning should carry the warning indicator")
	}
	if !strings.Contains(RenderInfo("fyi"), StatusIndicators.Info) {
		t.Error("RenderInfo should carry the info indicator")
	}
}
