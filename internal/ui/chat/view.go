// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agentdesk/internal/session"
	"github.com/jeranaias/agentdesk/internal/util"
)

// TypingText is shown while a reply is outstanding.
const TypingText = "Agent is typing..."

// minViewportHeight keeps the transcript visible in short terminals.
const minViewportHeight = 3

// layout sizes the widgets for the current window.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	mainWidth := m.width - m.theme.SidebarWidth()

	m.input.SetWidth(mainWidth - m.theme.InputContainer.GetHorizontalFrameSize())
	fixed := 2 // header and status bar
	fixed += m.input.Height() + m.theme.InputContainer.GetVerticalFrameSize()
	fixed++ // typing line
	if m.view.upload != "" {
		fixed++
	}
	if toasts := renderToasts(m.theme, m.toasts.Toasts(), mainWidth); toasts != "" {
		fixed += lipgloss.Height(toasts)
	}

	m.viewport.Width = mainWidth
	m.viewport.Height = max(m.height-fixed, minViewportHeight)
	m.view.renderer.SetWidth(mainWidth)
	m.picker.Height = max(m.viewport.Height-1, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	sideWidth := m.theme.SidebarWidth()
	mainWidth := m.width - sideWidth

	var main []string
	if m.pickerOpen {
		main = append(main,
			m.theme.HeaderSubtitle.Render("Choose a file to upload (Esc to cancel)"),
			lipgloss.NewStyle().Height(m.viewport.Height-1).MaxHeight(m.viewport.Height-1).Render(m.picker.View()),
		)
	} else {
		main = append(main, m.viewport.View())
	}

	typing := ""
	if m.view.typing {
		typing = m.spinner.View() + " " + m.theme.Typing.Render(TypingText)
	}
	main = append(main, typing)

	if m.view.upload != "" {
		main = append(main, m.theme.UploadPreview.Render(
			util.TruncateWidth("Attached: "+m.view.upload+"  (Ctrl+X to remove)", mainWidth-2)))
	}
	if toasts := renderToasts(m.theme, m.toasts.Toasts(), mainWidth); toasts != "" {
		main = append(main, toasts)
	}

	box := m.theme.InputDisabled
	switch {
	case m.ctrl.State() != session.AgentActive:
	case m.focus == focusInput:
		box = m.theme.InputFocused
	default:
		box = m.theme.InputContainer
	}
	main = append(main, box.Render(m.input.View()))

	body := lipgloss.JoinVertical(lipgloss.Left, main...)
	if sideWidth > 0 {
		activeID, _, _ := m.ctrl.ActiveAgent()
		side := m.sidebar.view(m.theme, sideWidth, lipgloss.Height(body),
			activeID, m.focus != focusInput, m.focus == focusSearch)
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.statusView())
}

func (m Model) headerView() string {
	title := m.theme.HeaderTitle.Render("agentdesk")
	sub := "No agent selected"
	if _, name, ok := m.ctrl.ActiveAgent(); ok {
		sub = name
	}
	line := title + "  " + m.theme.HeaderSubtitle.Render(sub)
	return m.theme.Header.Width(m.width).MaxWidth(m.width).Render(line)
}

func (m Model) statusView() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.StatusKey.Render(h.Key)+" "+h.Desc)
	}
	line := strings.Join(parts, "  ")
	return m.theme.StatusBar.Width(m.width).MaxWidth(m.width).Render(line)
}
