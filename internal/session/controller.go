// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jeranaias/agentdesk/internal/extract"
	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/jeranaias/agentdesk/internal/model"
)

// State is the agent selection state.
type State int

const (
	NoAgentSelected State = iota
	AgentActive
)

// String returns the state name.
func (s State) String() string {
	if s == AgentActive {
		return "AgentActive"
	}
	return "NoAgentSelected"
}

// PendingUpload is extracted file text waiting for the next send.
type PendingUpload struct {
	Text     string
	FileName string
}

// Controller orchestrates one chat session.
type Controller struct {
	transcript Transcript
	api        API
	extractor  Extractor
	store      Conversations
	log        *logrus.Entry

	state     State
	agentID   string
	agentName string
	conv      *model.Conversation
	pending   *PendingUpload

	// epochs counts resets per agent; results from an older epoch belong
	// to a cleared conversation.
	epochs map[string]uint64
	// inflight counts unanswered sends per agent for the current epoch.
	inflight map[string]int
	// welcomes maps an agent to the epoch of its outstanding welcome fetch.
	welcomes map[string]uint64
}

// New creates a controller with no agent selected.
func New(transcript Transcript, api API, extractor Extractor, store Conversations) *Controller {
	return &Controller{
		transcript: transcript,
		api:        api,
		extractor:  extractor,
		store:      store,
		log:        logging.For("session"),
		epochs:     make(map[string]uint64),
		inflight:   make(map[string]int),
		welcomes:   make(map[string]uint64),
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the selection state.
func (c *Controller) State() State {
	return c.state
}

// ActiveAgent returns the selected agent, if any.
func (c *Controller) ActiveAgent() (id, name string, ok bool) {
	return c.agentID, c.agentName, c.state == AgentActive
}

// Pending returns the upload waiting for the next send, or nil.
func (c *Controller) Pending() *PendingUpload {
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

// Messages returns a copy of the active conversation.
func (c *Controller) Messages() []model.Message {
	if c.conv == nil {
		return nil
	}
	return c.conv.Snapshot()
}

// LastReply returns the most recent assistant message of the active
// conversation.
func (c *Controller) LastReply() (string, bool) {
	if c.conv == nil {
		return "", false
	}
	m, ok := c.conv.LastAssistant()
	return m.Content, ok
}

// Waiting reports whether a welcome or reply for the active agent is
// outstanding.
func (c *Controller) Waiting() bool {
	if c.state != AgentActive {
		return false
	}
	if e, ok := c.welcomes[c.agentID]; ok && e == c.epochs[c.agentID] {
		return true
	}
	return c.inflight[c.agentID] > 0
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// SelectAgent activates agent id. Reselecting the active agent does
// nothing. A fresh conversation fetches the welcome text; an existing one
// is replayed without animation, attachment markers skipped.
func (c *Controller) SelectAgent(id, name string) []Task {
	if c.state == AgentActive && c.agentID == id {
		return nil
	}

	c.log.WithField("agent", id).Debug("agent selected")
	c.state = AgentActive
	c.agentID = id
	c.agentName = name
	c.conv = &model.Conversation{AgentID: id, Messages: c.store.Load(id)}
	if c.pending != nil {
		// An upload belongs to the agent it was chosen for.
		c.pending = nil
		c.transcript.SetUploadPreview("")
	}

	c.transcript.Clear()
	c.transcript.SetActiveAgent(id, name)

	var tasks []Task
	if c.conv.IsSeed() {
		if t := c.fetchWelcome(); t != nil {
			tasks = append(tasks, t)
		}
	} else {
		c.replay()
	}
	c.transcript.SetTyping(c.Waiting())
	return tasks
}

// replay shows the stored history without animation.
func (c *Controller) replay() {
	for _, m := range c.conv.Messages {
		switch {
		case m.Role == model.RoleSystem:
		case m.IsAttachmentMarker():
		case m.Role == model.RoleUser:
			c.transcript.ShowUser(m.Content)
		case m.Role == model.RoleAssistant:
			c.transcript.ShowAssistant(m.Content, false)
		}
	}
}

// fetchWelcome starts a welcome fetch for the active agent unless one for
// the current epoch is already outstanding.
func (c *Controller) fetchWelcome() Task {
	o := c.origin()
	if e, ok := c.welcomes[o.AgentID]; ok && e == o.Epoch {
		return nil
	}
	c.welcomes[o.AgentID] = o.Epoch

	api := c.api
	return func(ctx context.Context) Event {
		text, err := api.Welcome(ctx, o.AgentID)
		return WelcomeLoaded{origin: o, Text: text, Err: err}
	}
}

// Reset clears the transcript and the stored conversation of the active
// agent and fetches the welcome text again. Replies still in flight for
// the old conversation are discarded when they arrive.
func (c *Controller) Reset() []Task {
	if c.state != AgentActive {
		return nil
	}

	c.log.WithField("agent", c.agentID).Debug("conversation reset")
	c.epochs[c.agentID]++
	delete(c.inflight, c.agentID)

	c.transcript.Clear()
	if err := c.store.Clear(c.agentID); err != nil {
		c.log.WithError(err).Warn("failed to clear conversation")
	}
	c.conv.Reset()

	var tasks []Task
	if t := c.fetchWelcome(); t != nil {
		tasks = append(tasks, t)
	}
	c.transcript.SetTyping(c.Waiting())
	return tasks
}

// HandleSend sends input and any pending upload. It does nothing without
// an active agent, or when input is blank and no upload is pending.
func (c *Controller) HandleSend(input string) []Task {
	if c.state != AgentActive {
		return nil
	}
	text := strings.TrimSpace(input)
	if text == "" && c.pending == nil {
		return nil
	}

	var tasks []Task
	o := c.origin()

	if text != "" {
		c.conv.Append(model.UserMessage(text))
		c.save()
		c.transcript.ShowUser(text)

		payload := model.Outbound(c.conv.Messages)
		c.inflight[o.AgentID]++
		api := c.api
		tasks = append(tasks, func(ctx context.Context) Event {
			reply, err := api.Chat(ctx, o.AgentID, payload)
			return ReplyReceived{origin: o, Text: reply, Err: err}
		})
	}

	if up := c.pending; up != nil {
		c.pending = nil
		c.conv.Append(model.AttachmentMarker(up.FileName))
		c.save()
		c.transcript.SetUploadPreview("")
		c.transcript.Notify(Notice{Level: NoticeInfo, Text: "Uploaded file: " + up.FileName})

		api := c.api
		tasks = append(tasks, func(ctx context.Context) Event {
			err := api.Ingest(ctx, up.FileName, up.Text)
			return Ingested{origin: o, FileName: up.FileName, Err: err}
		})
	}

	c.transcript.SetTyping(c.Waiting())
	return tasks
}

// HandleFileSelect starts extracting text from path. The upload becomes
// pending only once extraction succeeds.
func (c *Controller) HandleFileSelect(path string) []Task {
	if c.state != AgentActive {
		c.transcript.Notify(Notice{Level: NoticeError, Text: "Select an agent before uploading a file"})
		return nil
	}

	o := c.origin()
	ex := c.extractor
	return []Task{func(ctx context.Context) Event {
		res, err := ex.Extract(ctx, path)
		return FileExtracted{origin: o, Path: path, Result: res, Err: err}
	}}
}

// CancelUpload drops the pending upload.
func (c *Controller) CancelUpload() {
	if c.pending == nil {
		return
	}
	c.pending = nil
	c.transcript.SetUploadPreview("")
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete applies the result of a Task.
func (c *Controller) Complete(ev Event) {
	switch ev := ev.(type) {
	case WelcomeLoaded:
		c.completeWelcome(ev)
	case ReplyReceived:
		c.completeReply(ev)
	case FileExtracted:
		c.completeExtract(ev)
	case Ingested:
		if ev.Err != nil {
			c.log.WithError(ev.Err).WithField("file", ev.FileName).Warn("ingestion failed")
			c.notifyIfActive(ev.origin, Notice{Level: NoticeError, Text: "Failed to upload " + ev.FileName})
		}
	}
	c.transcript.SetTyping(c.Waiting())
}

func (c *Controller) completeWelcome(ev WelcomeLoaded) {
	if e, ok := c.welcomes[ev.AgentID]; ok && e == ev.Epoch {
		delete(c.welcomes, ev.AgentID)
	}
	if ev.Epoch != c.epochs[ev.AgentID] {
		return
	}
	if ev.Err != nil {
		c.log.WithError(ev.Err).WithField("agent", ev.AgentID).Warn("welcome fetch failed")
		c.notifyIfActive(ev.origin, Notice{Level: NoticeError, Text: "Failed to load welcome message"})
		return
	}
	if ev.Text == "" {
		return
	}

	msg := model.AssistantMessage(ev.Text)
	if c.isActive(ev.origin) {
		c.conv.Append(msg)
		c.save()
		c.transcript.ShowAssistant(ev.Text, true)
		return
	}
	// Left before the welcome arrived: keep it only if nothing was added.
	stored := c.store.Load(ev.AgentID)
	if model.IsSeed(stored) {
		c.saveFor(ev.AgentID, append(stored, msg))
	}
}

func (c *Controller) completeReply(ev ReplyReceived) {
	if ev.Epoch != c.epochs[ev.AgentID] {
		c.log.WithField("agent", ev.AgentID).Debug("dropping reply for a reset conversation")
		return
	}
	if c.inflight[ev.AgentID] > 0 {
		c.inflight[ev.AgentID]--
	}
	if ev.Err != nil {
		c.log.WithError(ev.Err).WithField("agent", ev.AgentID).Warn("chat request failed")
		c.notifyIfActive(ev.origin, Notice{Level: NoticeError, Text: "Failed to get a reply: " + errText(ev.Err)})
		return
	}

	msg := model.AssistantMessage(ev.Text)
	if c.isActive(ev.origin) {
		c.conv.Append(msg)
		c.save()
		c.transcript.ShowAssistant(ev.Text, true)
		return
	}
	c.saveFor(ev.AgentID, append(c.store.Load(ev.AgentID), msg))
}

func (c *Controller) completeExtract(ev FileExtracted) {
	name := filepath.Base(ev.Path)
	if ev.Err != nil {
		c.log.WithError(ev.Err).WithField("file", name).Warn("extraction failed")
		if errors.Is(ev.Err, extract.ErrUnsupported) {
			c.transcript.Notify(Notice{Level: NoticeError, Text: "Unsupported file type: " + name})
		} else {
			c.transcript.Notify(Notice{Level: NoticeError, Text: "Failed to process file: " + errText(ev.Err)})
		}
		return
	}
	if !c.isActive(ev.origin) {
		c.log.WithField("file", name).Debug("dropping upload for an inactive agent")
		return
	}

	fileName := ev.Result.FileName
	if fileName == "" {
		fileName = name
	}
	c.pending = &PendingUpload{Text: ev.Result.Text, FileName: fileName}
	c.transcript.SetUploadPreview(fileName)
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Controller) origin() origin {
	return origin{AgentID: c.agentID, Epoch: c.epochs[c.agentID]}
}

func (c *Controller) isActive(o origin) bool {
	return c.state == AgentActive && c.agentID == o.AgentID && c.epochs[o.AgentID] == o.Epoch
}

func (c *Controller) notifyIfActive(o origin, n Notice) {
	if c.isActive(o) {
		c.transcript.Notify(n)
	}
}

func (c *Controller) save() {
	c.saveFor(c.agentID, c.conv.Messages)
}

func (c *Controller) saveFor(agentID string, msgs []model.Message) {
	if err := c.store.Save(agentID, msgs); err != nil {
		c.log.WithError(err).WithField("agent", agentID).Warn("failed to save conversation")
		c.transcript.Notify(Notice{Level: NoticeWarning, Text: fmt.Sprintf("Could not save conversation: %v", err)})
	}
}

// errText shortens an error for a one-line notice.
func errText(err error) string {
	s := err.Error()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
