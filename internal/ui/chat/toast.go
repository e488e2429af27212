// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agentdesk/internal/session"
	"github.com/jeranaias/agentdesk/internal/ui/styles"
	"github.com/jeranaias/agentdesk/internal/util"
)

// Auto-dismiss durations per notice level.
const (
	InfoToastDuration    = 4 * time.Second
	WarningToastDuration = 6 * time.Second
	ErrorToastDuration   = 8 * time.Second

	toastTickInterval = 100 * time.Millisecond
	maxToasts         = 4
)

// Toast is a notice shown in the corner until it expires.
type Toast struct {
	ID        int
	Notice    session.Notice
	CreatedAt time.Time
	Duration  time.Duration
}

func toastDuration(level session.NoticeLevel) time.Duration {
	switch level {
	case session.NoticeError:
		return ErrorToastDuration
	case session.NoticeWarning:
		return WarningToastDuration
	default:
		return InfoToastDuration
	}
}

// ToastManager keeps the visible toasts, newest first.
type ToastManager struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	now    func() time.Time
}

// NewToastManager creates an empty manager. now may be nil.
func NewToastManager(now func() time.Time) *ToastManager {
	if now == nil {
		now = time.Now
	}
	return &ToastManager{nextID: 1, now: now}
}

// Add shows a notice and returns its toast id.
func (m *ToastManager) Add(n session.Notice) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Toast{
		ID:        m.nextID,
		Notice:    n,
		CreatedAt: m.now(),
		Duration:  toastDuration(n.Level),
	}
	m.nextID++
	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[:maxToasts]
	}
	return t.ID
}

// Tick drops expired toasts and reports whether any remain.
func (m *ToastManager) Tick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Sub(t.CreatedAt) < t.Duration {
			active = append(active, t)
		}
	}
	m.toasts = active
	return len(m.toasts) > 0
}

// Dismiss removes the newest toast.
func (m *ToastManager) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// Toasts returns a copy of the visible toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Len returns the number of visible toasts.
func (m *ToastManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts)
}

type toastTickMsg struct{}

func toastTickCmd() tea.Cmd {
	return tea.Tick(toastTickInterval, func(time.Time) tea.Msg {
		return toastTickMsg{}
	})
}

// renderToasts stacks toasts right-aligned, oldest on top.
func renderToasts(theme *styles.Theme, toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	maxText := min(60, width-8)
	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		t := toasts[i]
		style, icon := theme.ToastInfo, styles.StatusIndicators.Info
		switch t.Notice.Level {
		case session.NoticeWarning:
			style, icon = theme.ToastWarning, styles.StatusIndicators.Warning
		case session.NoticeError:
			style, icon = theme.ToastError, styles.StatusIndicators.Error
		}
		rendered = append(rendered, style.Render(icon+" "+util.TruncateWidth(t.Notice.Text, maxText)))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}
