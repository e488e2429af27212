// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jeranaias/agentdesk/internal/agents"
	"github.com/jeranaias/agentdesk/internal/api"
	"github.com/jeranaias/agentdesk/internal/ui/styles"
	"github.com/jeranaias/agentdesk/internal/util"
)

// sidebar is the agent list with its search box.
type sidebar struct {
	result  agents.Result
	loading bool
	shown   []api.Agent
	cursor  int
	search  textinput.Model
}

func newSidebar() sidebar {
	ti := textinput.New()
	ti.Placeholder = "Search agents"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return sidebar{loading: true, search: ti}
}

// setResult replaces the agent list.
func (s *sidebar) setResult(r agents.Result) {
	s.result = r
	s.loading = false
	s.refilter()
}

// refilter applies the search query, keeping the cursor in range.
func (s *sidebar) refilter() {
	s.shown = agents.Filter(s.result.Agents, s.search.Value())
	if s.cursor >= len(s.shown) {
		s.cursor = len(s.shown) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *sidebar) move(delta int) {
	if len(s.shown) == 0 {
		return
	}
	s.cursor = (s.cursor + delta + len(s.shown)) % len(s.shown)
}

// selected returns the agent under the cursor.
func (s *sidebar) selected() (api.Agent, bool) {
	if s.cursor < 0 || s.cursor >= len(s.shown) {
		return api.Agent{}, false
	}
	return s.shown[s.cursor], true
}

func (s *sidebar) view(theme *styles.Theme, width, height int, activeID string, focused, searching bool) string {
	inner := width - theme.Sidebar.GetHorizontalFrameSize()
	if inner < 4 {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.SidebarTitle.Render("Agents"))
	b.WriteString("\n")

	box := theme.SearchBox
	if searching {
		box = theme.SearchBoxActive
	}
	s.search.Width = inner - box.GetHorizontalFrameSize() - len(s.search.Prompt)
	b.WriteString(box.Width(inner - box.GetHorizontalBorderSize()).Render(s.search.View()))
	b.WriteString("\n")

	switch {
	case s.loading:
		b.WriteString(theme.SidebarEmpty.Render("Loading agents..."))
	case s.result.Status == agents.Failed:
		b.WriteString(theme.SidebarError.Render(s.result.Message()))
		b.WriteString("\n")
		b.WriteString(theme.Muted.Render("press r to retry"))
	case s.result.Status == agents.AuthRequired:
		b.WriteString(theme.SidebarError.Render(s.result.Message()))
	case s.result.Status == agents.Empty:
		b.WriteString(theme.SidebarEmpty.Render(s.result.Message()))
	case len(s.shown) == 0:
		b.WriteString(theme.SidebarEmpty.Render("No matching agents"))
	default:
		for i, a := range s.shown {
			name := util.PadWidth(a.DisplayName(), inner-2)
			marker := "  "
			if a.ID == activeID {
				marker = "● "
			}
			line := marker + name
			switch {
			case focused && i == s.cursor:
				line = theme.SidebarCursor.Render(line)
			case a.ID == activeID:
				line = theme.SidebarActive.Render(line)
			default:
				line = theme.SidebarItem.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return theme.Sidebar.Width(width - theme.Sidebar.GetHorizontalBorderSize()).Height(height).Render(b.String())
}
