// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"html"
	"time"

	"github.com/sirupsen/logrus"
	xhtml "golang.org/x/net/html"

	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/jeranaias/agentdesk/internal/markdown"
	"github.com/jeranaias/agentdesk/internal/reveal"
	"github.com/jeranaias/agentdesk/internal/session"
	"github.com/jeranaias/agentdesk/internal/ui/termview"
	"github.com/jeranaias/agentdesk/internal/util"
)

// userLabel names the local speaker on bubbles.
const userLabel = "You"

// transcriptView is the session.Transcript of the chat screen. It owns the
// transcript tree; the model reads its flags after every update.
type transcriptView struct {
	surface  *reveal.NodeSurface
	engine   *reveal.Engine
	queue    *reveal.Queue
	renderer *termview.Renderer
	toasts   *ToastManager
	log      *logrus.Entry

	now            func() time.Time
	showTimestamps bool

	// live holds assistant messages still being revealed.
	live map[*xhtml.Node]bool

	agentID   string
	agentName string
	typing    bool
	upload    string

	// follow is set by ScrollToBottom; focusInput by SetUploadPreview.
	follow     bool
	focusInput bool
}

func newTranscriptView(engine *reveal.Engine, renderer *termview.Renderer, toasts *ToastManager, now func() time.Time) *transcriptView {
	surface := reveal.NewNodeSurface()
	v := &transcriptView{
		surface:  surface,
		engine:   engine,
		queue:    reveal.NewQueue(engine, surface),
		renderer: renderer,
		toasts:   toasts,
		log:      logging.For("chat"),
		now:      now,
		live:     make(map[*xhtml.Node]bool),
	}
	surface.OnScroll = func() { v.follow = true }
	return v
}

func (v *transcriptView) stamp() string {
	if !v.showTimestamps {
		return ""
	}
	return util.Clock(v.now())
}

// Clear implements session.Transcript.
func (v *transcriptView) Clear() {
	v.queue.Reset()
	v.surface.Clear()
	v.renderer.Reset()
	v.live = make(map[*xhtml.Node]bool)
	v.follow = true
}

// ShowUser implements session.Transcript.
func (v *transcriptView) ShowUser(text string) {
	msg := termview.NewMessage(termview.RoleUser, userLabel, v.stamp())
	v.surface.AppendChild(v.surface.Root, msg)
	t := v.surface.CreateText()
	v.surface.AppendChild(msg, t)
	v.surface.AppendText(t, text)
	v.surface.ScrollToBottom()
}

// ShowAssistant implements session.Transcript.
func (v *transcriptView) ShowAssistant(md string, animate bool) {
	safe, err := markdown.Render(md)
	if err != nil {
		v.log.WithError(err).Warn("markdown render failed, showing plain text")
		safe = "<p>" + html.EscapeString(md) + "</p>"
	}

	msg := termview.NewMessage(termview.RoleAssistant, v.agentName, v.stamp())
	v.surface.AppendChild(v.surface.Root, msg)

	if !animate {
		if err := v.engine.Render(safe, v.surface, msg); err != nil {
			v.log.WithError(err).Warn("render failed")
		}
		v.surface.ScrollToBottom()
		return
	}

	v.live[msg] = true
	v.queue.Enqueue(safe, msg, func() {
		delete(v.live, msg)
		v.follow = true
	})
}

// SetTyping implements session.Transcript.
func (v *transcriptView) SetTyping(on bool) {
	v.typing = on
}

// SetActiveAgent implements session.Transcript.
func (v *transcriptView) SetActiveAgent(id, name string) {
	v.agentID = id
	v.agentName = name
}

// SetUploadPreview implements session.Transcript.
func (v *transcriptView) SetUploadPreview(fileName string) {
	v.upload = fileName
	if fileName != "" {
		v.focusInput = true
	}
}

// Notify implements session.Transcript.
func (v *transcriptView) Notify(n session.Notice) {
	v.toasts.Add(n)
}

// isLive reports whether n is still being revealed.
func (v *transcriptView) isLive(n *xhtml.Node) bool {
	return v.live[n]
}

// render lays out the whole transcript.
func (v *transcriptView) render() string {
	return v.renderer.Transcript(v.surface.Root, v.isLive)
}

// revealing reports whether reveals are running or queued.
func (v *transcriptView) revealing() bool {
	return v.queue.Busy()
}

var _ session.Transcript = (*transcriptView)(nil)
