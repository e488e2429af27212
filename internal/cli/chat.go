// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jeranaias/agentdesk/internal/config"
	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/jeranaias/agentdesk/internal/markdown"
	"github.com/jeranaias/agentdesk/internal/model"
	"github.com/jeranaias/agentdesk/internal/reveal"
	"github.com/jeranaias/agentdesk/internal/session"
	"github.com/jeranaias/agentdesk/internal/ui/termview"
	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const chatHelp = `Commands:
  /upload PATH   attach a file to the next message
  /cancel        remove the pending attachment
  /reset         start the conversation over
  /history       list the messages so far
  /help          show this help
  /quit          leave the chat`

// lineReader reads one line of input. *liner.State satisfies it.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var agentID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with an agent in line mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			agent, err := a.resolveAgent(ctx, agentID)
			if err != nil {
				return err
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			historyPath := chatHistoryPath()
			if historyPath != "" {
				if f, err := os.Open(historyPath); err == nil {
					line.ReadHistory(f)
					f.Close()
				}
				defer func() {
					if f, err := os.Create(historyPath); err == nil {
						line.WriteHistory(f)
						f.Close()
					}
				}()
			}

			r := newREPL(a, &historyReader{State: line}, cmd.OutOrStdout(), opts.cfg.RevealInterval())
			return r.run(ctx, agent.ID, agent.DisplayName())
		},
	}
	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "agent id (optional when only one agent exists)")
	return cmd
}

func chatHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return ""
	}
	return filepath.Join(dir, "chat_history")
}

// historyReader records non-empty lines in the liner history.
type historyReader struct {
	*liner.State
}

func (h *historyReader) Prompt(prompt string) (string, error) {
	line, err := h.State.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		h.AppendHistory(line)
	}
	return line, err
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	in   lineReader
	out  io.Writer
	ctrl *session.Controller
	t    *lineTranscript
	log  *logrus.Entry
}

func newREPL(a *app, in lineReader, out io.Writer, interval time.Duration) *repl {
	t := newLineTranscript(out, interval, isTerminal(out))
	return &repl{
		in:   in,
		out:  out,
		ctrl: session.New(t, a.client, a.extractor, a.conversations),
		t:    t,
		log:  logging.For("repl"),
	}
}

func (r *repl) run(ctx context.Context, agentID, name string) error {
	r.apply(ctx, r.ctrl.SelectAgent(agentID, name))

	for {
		line, err := r.in.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}

		// The prompt already shows what was typed.
		r.t.echoUser = false
		tasks := r.ctrl.HandleSend(line)
		r.t.echoUser = true
		r.apply(ctx, tasks)
	}
}

// command runs a slash command and reports whether the REPL should exit.
func (r *repl) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, chatHelp)
	case "/reset":
		r.apply(ctx, r.ctrl.Reset())
	case "/history":
		r.printHistory()
	case "/upload":
		if arg == "" {
			r.t.Notify(session.Notice{Level: session.NoticeWarning, Text: "Usage: /upload PATH"})
			return false
		}
		r.apply(ctx, r.ctrl.HandleFileSelect(expandHome(arg)))
	case "/cancel":
		if up := r.ctrl.Pending(); up != nil {
			r.ctrl.CancelUpload()
			fmt.Fprintf(r.out, "Removed %s\n", up.FileName)
		}
	default:
		r.t.Notify(session.Notice{Level: session.NoticeWarning, Text: fmt.Sprintf("Unknown command %s (try /help)", name)})
	}
	return false
}

// printHistory lists the active conversation as stored, without the
// system seed. Uploads appear by file name.
func (r *repl) printHistory() {
	shown := 0
	for _, m := range r.ctrl.Messages() {
		switch {
		case m.Role == model.RoleSystem:
			continue
		case m.IsAttachmentMarker():
			fmt.Fprintf(r.out, "%s %s\n", color.CyanString("[uploaded]"), m.AttachmentName())
		case m.Role == model.RoleUser:
			fmt.Fprintf(r.out, "%s %s\n", color.CyanString("You:"), m.Content)
		default:
			fmt.Fprintf(r.out, "%s %s\n", color.MagentaString(r.t.agentName+":"), m.Content)
		}
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(r.out, "No messages yet")
	}
}

// apply runs tasks concurrently and completes their events one at a time
// on this goroutine, draining reveals after each.
func (r *repl) apply(ctx context.Context, tasks []session.Task) {
	defer r.t.drain(ctx)
	if len(tasks) == 0 {
		return
	}

	events := make(chan session.Event, len(tasks))
	for _, task := range tasks {
		go func(task session.Task) {
			events <- task(ctx)
		}(task)
	}
	for range tasks {
		select {
		case ev := <-events:
			r.ctrl.Complete(ev)
			r.t.drain(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// =============================================================================
// LINE TRANSCRIPT
// =============================================================================

// lineTranscript prints a session to a plain writer. Assistant replies are
// revealed through a StreamSurface driven by a LoopScheduler.
type lineTranscript struct {
	out     io.Writer
	surface *termview.StreamSurface
	sched   *reveal.LoopScheduler
	engine  *reveal.Engine
	queue   *reveal.Queue
	tty     bool
	log     *logrus.Entry

	agentName string
	echoUser  bool
	typing    bool
}

func newLineTranscript(out io.Writer, interval time.Duration, tty bool) *lineTranscript {
	surface := termview.NewStreamSurface(out)
	sched := reveal.NewLoopScheduler()
	engine := reveal.NewEngine(interval, sched)
	return &lineTranscript{
		out:      out,
		surface:  surface,
		sched:    sched,
		engine:   engine,
		queue:    reveal.NewQueue(engine, surface),
		tty:      tty,
		log:      logging.For("transcript"),
		echoUser: true,
	}
}

func (t *lineTranscript) drain(ctx context.Context) {
	if err := t.sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		t.log.WithError(err).Warn("reveal loop stopped")
	}
	if err := t.surface.Err(); err != nil {
		t.log.WithError(err).Warn("write failed")
	}
}

func (t *lineTranscript) Clear() {
	t.queue.Reset()
	t.hideTyping()
}

func (t *lineTranscript) ShowUser(text string) {
	if !t.echoUser {
		return
	}
	t.hideTyping()
	fmt.Fprintf(t.out, "%s %s\n", color.CyanString("You:"), text)
}

func (t *lineTranscript) ShowAssistant(md string, animate bool) {
	t.hideTyping()

	safe, err := markdown.Render(md)
	if err != nil {
		t.log.WithError(err).Warn("markdown render failed")
		safe = "<p>" + html.EscapeString(md) + "</p>"
	}

	fmt.Fprintln(t.out, color.MagentaString(t.agentName+":"))
	if animate {
		t.queue.Enqueue(safe, t.surface.Root(), t.surface.Finish)
		return
	}
	if err := t.engine.Render(safe, t.surface, t.surface.Root()); err != nil {
		t.log.WithError(err).Warn("render failed")
	}
	t.surface.Finish()
}

func (t *lineTranscript) SetTyping(on bool) {
	if !on {
		t.hideTyping()
		return
	}
	if t.typing || !t.tty || t.queue.Busy() {
		return
	}
	fmt.Fprint(t.out, color.New(color.Faint).Sprint("Agent is typing..."))
	t.typing = true
}

func (t *lineTranscript) hideTyping() {
	if !t.typing {
		return
	}
	fmt.Fprint(t.out, "\r\033[K")
	t.typing = false
}

func (t *lineTranscript) SetActiveAgent(id, name string) {
	t.agentName = name
	fmt.Fprintf(t.out, "Chatting with %s (/help for commands)\n\n", color.New(color.Bold).Sprint(name))
}

func (t *lineTranscript) SetUploadPreview(fileName string) {
	if fileName == "" {
		return
	}
	fmt.Fprintf(t.out, "%s %s (sent with your next message, /cancel to remove)\n", color.CyanString("Attached:"), fileName)
}

func (t *lineTranscript) Notify(n session.Notice) {
	t.hideTyping()
	var prefix string
	switch n.Level {
	case session.NoticeError:
		prefix = color.RedString("[X]")
	case session.NoticeWarning:
		prefix = color.YellowString("[!]")
	default:
		prefix = color.GreenString("[i]")
	}
	fmt.Fprintf(t.out, "%s %s\n", prefix, n.Text)
}
