// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentdesk/internal/agents"
	"github.com/jeranaias/agentdesk/internal/session"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.cancel()
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKey(msg))

	case revealTickMsg:
		m.sched.fire(msg.id)

	case sessionEventMsg:
		m.ctrl.Complete(msg.event)

	case agentsLoadedMsg:
		cmds = append(cmds, m.handleAgents(msg.result))

	case redirectLoginMsg:
		m.loginRequired = true
		m.cancel()
		return m, tea.Quit

	case configChangedMsg:
		m.applyConfig(msg)
		cmds = append(cmds, m.waitConfig())

	case clipboardMsg:
		if msg.err != nil {
			m.toasts.Add(session.Notice{Level: session.NoticeError, Text: "Copy failed: " + msg.err.Error()})
		} else {
			m.toasts.Add(session.Notice{Level: session.NoticeInfo, Text: "Copied last reply"})
		}

	case toastTickMsg:
		if m.toasts.Tick() {
			cmds = append(cmds, toastTickCmd())
		} else {
			m.toastTicking = false
		}

	case spinner.TickMsg:
		if m.view.typing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.spinning = false
		}

	default:
		if m.pickerOpen {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			cmds = append(cmds, cmd)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.afterUpdate()...)
	return m, tea.Batch(cmds...)
}

// afterUpdate reconciles the widgets with the transcript view and
// collects the commands the update left behind.
func (m *Model) afterUpdate() []tea.Cmd {
	cmds := m.sched.drain()

	if m.view.typing && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	if m.toasts.Len() > 0 && !m.toastTicking {
		m.toastTicking = true
		cmds = append(cmds, toastTickCmd())
	}
	if m.view.focusInput {
		m.view.focusInput = false
		m.setFocus(focusInput)
	}

	m.layout()
	m.viewport.SetContent(m.view.render())
	if m.view.follow {
		m.view.follow = false
		m.viewport.GotoBottom()
	}
	return cmds
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Reset):
		return m.runTasks(m.ctrl.Reset())
	case key.Matches(msg, m.keys.Upload):
		return m.openPicker()
	case key.Matches(msg, m.keys.CancelUpload):
		m.ctrl.CancelUpload()
		return nil
	case key.Matches(msg, m.keys.Copy):
		return m.copyLastReply()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return nil
	case key.Matches(msg, m.keys.SwitchFocus):
		if m.focus == focusInput {
			m.setFocus(focusAgents)
		} else {
			m.setFocus(focusInput)
		}
		return nil
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusAgents:
		return m.handleAgentKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m *Model) handleAgentKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.sidebar.move(1)
	case key.Matches(msg, m.keys.Search):
		m.setFocus(focusSearch)
	case key.Matches(msg, m.keys.Retry):
		if m.sidebar.result.Retryable() {
			m.sidebar.loading = true
			return m.fetchAgents()
		}
	case key.Matches(msg, m.keys.Send):
		return m.selectAgent()
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.setFocus(focusAgents)
		return nil
	case key.Matches(msg, m.keys.Send):
		m.setFocus(focusAgents)
		return m.selectAgent()
	case msg.Type == tea.KeyUp:
		m.sidebar.move(-1)
		return nil
	case msg.Type == tea.KeyDown:
		m.sidebar.move(1)
		return nil
	}
	var cmd tea.Cmd
	m.sidebar.search, cmd = m.sidebar.search.Update(msg)
	m.sidebar.refilter()
	return cmd
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	if m.ctrl.State() != session.AgentActive {
		return nil
	}
	if key.Matches(msg, m.keys.Send) {
		tasks := m.ctrl.HandleSend(m.input.Value())
		m.input.Reset()
		return m.runTasks(tasks)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Back) {
		m.pickerOpen = false
		return nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.pickerOpen = false
		m.log.WithField("file", filepath.Base(path)).Debug("file selected")
		return tea.Batch(cmd, m.runTasks(m.ctrl.HandleFileSelect(path)))
	}
	return cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m *Model) selectAgent() tea.Cmd {
	a, ok := m.sidebar.selected()
	if !ok {
		return nil
	}
	tasks := m.ctrl.SelectAgent(a.ID, a.DisplayName())
	m.input.Placeholder = "Message " + a.DisplayName()
	m.setFocus(focusInput)
	return m.runTasks(tasks)
}

// openPicker shows the file chooser. Without an active agent the
// controller explains why there is nothing to upload to.
func (m *Model) openPicker() tea.Cmd {
	if m.ctrl.State() != session.AgentActive {
		return m.runTasks(m.ctrl.HandleFileSelect(""))
	}
	m.pickerOpen = true
	return m.picker.Init()
}

func (m *Model) handleAgents(r agents.Result) tea.Cmd {
	m.sidebar.setResult(r)
	m.log.WithField("status", r.Status.String()).Debug("agents loaded")

	switch r.Status {
	case agents.AuthRequired:
		m.toasts.Add(session.Notice{Level: session.NoticeError, Text: r.Message()})
		return tea.Tick(agents.RedirectDelay, func(time.Time) tea.Msg {
			return redirectLoginMsg{}
		})
	case agents.Failed:
		m.toasts.Add(session.Notice{Level: session.NoticeError, Text: r.Message()})
	}
	return nil
}

func (m *Model) applyConfig(msg configChangedMsg) {
	if msg.err != nil {
		m.toasts.Add(session.Notice{Level: session.NoticeWarning, Text: "Config reload failed: " + msg.err.Error()})
		return
	}
	if msg.cfg == nil {
		return
	}
	m.view.engine.Interval = msg.cfg.RevealInterval()
	m.view.showTimestamps = msg.cfg.UI.ShowTimestamps
	m.toasts.Add(session.Notice{Level: session.NoticeInfo, Text: "Configuration reloaded"})
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.sidebar.search.Blur()
	m.input.Blur()
	switch f {
	case focusSearch:
		m.sidebar.search.Focus()
	case focusInput:
		if m.ctrl.State() == session.AgentActive {
			m.input.Focus()
		}
	}
}
