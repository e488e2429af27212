// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jeranaias/agentdesk/internal/agents"
	"github.com/jeranaias/agentdesk/internal/config"
	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/jeranaias/agentdesk/internal/reveal"
	"github.com/jeranaias/agentdesk/internal/session"
	"github.com/jeranaias/agentdesk/internal/ui/styles"
	"github.com/jeranaias/agentdesk/internal/ui/termview"
)

// focusArea is the part of the screen receiving keys.
type focusArea int

const (
	focusAgents focusArea = iota
	focusSearch
	focusInput
)

// AgentSource loads the agent list.
type AgentSource interface {
	Fetch(ctx context.Context) agents.Result
}

// Options wires the chat screen to its collaborators.
type Options struct {
	Config *config.Config
	// ConfigPath is watched for changes when non-empty.
	ConfigPath string

	Agents    AgentSource
	API       session.API
	Extractor session.Extractor
	Store     session.Conversations

	// Clipboard copies text; defaults to the system clipboard.
	Clipboard func(string) error
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the chat screen.
type Model struct {
	theme *styles.Theme
	keys  KeyMap
	log   *logrus.Entry

	width  int
	height int

	ctx    context.Context
	cancel context.CancelFunc

	sched *teaScheduler
	view  *transcriptView
	ctrl  *session.Controller

	agentSource AgentSource
	sidebar     sidebar
	focus       focusArea

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	picker   filepicker.Model

	pickerOpen bool
	spinning   bool

	toasts       *ToastManager
	toastTicking bool

	clipboard  func(string) error
	configPath string
	configCh   chan configChangedMsg

	loginRequired bool
}

// New creates the chat screen.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	toasts := NewToastManager(now)
	sched := newTeaScheduler()
	engine := reveal.NewEngine(cfg.RevealInterval(), sched)
	view := newTranscriptView(engine, termview.NewRenderer(theme, 80), toasts, now)
	view.showTimestamps = cfg.UI.ShowTimestamps

	ta := textarea.New()
	ta.Placeholder = "Select an agent to start chatting"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys(DefaultKeyMap().Newline.Keys()...)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Typing

	fp := filepicker.New()
	fp.ShowHidden = false
	fp.AutoHeight = false
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		theme:       theme,
		keys:        DefaultKeyMap(),
		log:         logging.For("chat"),
		ctx:         ctx,
		cancel:      cancel,
		sched:       sched,
		view:        view,
		ctrl:        session.New(view, opts.API, opts.Extractor, opts.Store),
		agentSource: opts.Agents,
		sidebar:     newSidebar(),
		focus:       focusAgents,
		viewport:    viewport.New(80, 20),
		input:       ta,
		spinner:     sp,
		picker:      fp,
		toasts:      toasts,
		clipboard:   copyFn,
		configPath:  opts.ConfigPath,
		configCh:    make(chan configChangedMsg, 1),
	}
}

// Init starts the agent fetch and the config watcher.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchAgents(), textarea.Blink}
	if m.configPath != "" {
		ch := m.configCh
		err := config.Watch(m.ctx, m.configPath, func(cfg *config.Config, err error) {
			select {
			case ch <- configChangedMsg{cfg: cfg, err: err}:
			default:
			}
		})
		if err != nil {
			m.log.WithError(err).Warn("config watch disabled")
		} else {
			cmds = append(cmds, m.waitConfig())
		}
	}
	return tea.Batch(cmds...)
}

// LoginRequired reports whether the program ended to ask for a login.
func (m Model) LoginRequired() bool {
	return m.loginRequired
}

// Controller exposes the session controller.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) fetchAgents() tea.Cmd {
	src, ctx := m.agentSource, m.ctx
	return func() tea.Msg {
		if src == nil {
			return agentsLoadedMsg{result: agents.Result{Status: agents.Empty}}
		}
		return agentsLoadedMsg{result: src.Fetch(ctx)}
	}
}

func (m Model) waitConfig() tea.Cmd {
	ch, ctx := m.configCh, m.ctx
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// runTasks turns controller tasks into commands.
func (m Model) runTasks(tasks []session.Task) tea.Cmd {
	if len(tasks) == 0 {
		return nil
	}
	ctx := m.ctx
	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, t := range tasks {
		t := t
		cmds = append(cmds, func() tea.Msg {
			return sessionEventMsg{event: t(ctx)}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) copyLastReply() tea.Cmd {
	text, ok := m.ctrl.LastReply()
	if !ok {
		m.toasts.Add(session.Notice{Level: session.NoticeWarning, Text: "No reply to copy yet"})
		return nil
	}
	copyFn := m.clipboard
	return func() tea.Msg {
		return clipboardMsg{err: copyFn(text)}
	}
}
