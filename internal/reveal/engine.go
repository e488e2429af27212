// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultInterval is the delay between two revealed runes.
const DefaultInterval = 8 * time.Millisecond

// Engine reveals sanitized HTML into a Surface.
type Engine struct {
	// Interval is the fixed delay between ticks. Non-positive values fall
	// back to DefaultInterval.
	Interval time.Duration

	// Scheduler delivers ticks for animated reveals.
	Scheduler Scheduler
}

// NewEngine creates an engine ticking at interval on sched.
func NewEngine(interval time.Duration, sched Scheduler) *Engine {
	return &Engine{Interval: interval, Scheduler: sched}
}

func (e *Engine) interval() time.Duration {
	if e.Interval <= 0 {
		return DefaultInterval
	}
	return e.Interval
}

// Parse parses a sanitized fragment as the content of a <div>. The returned
// root is a detached <div> holding the fragment's top-level nodes.
func Parse(safeHTML string) (*html.Node, error) {
	div := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(safeHTML), div)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	root := NewElement("div", nil)
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// Render builds safeHTML into container synchronously, appending each text
// node whole. The result is what Reveal converges to.
func (e *Engine) Render(safeHTML string, surface Surface, container Node) error {
	root, err := Parse(safeHTML)
	if err != nil {
		return err
	}
	w := newWalker(surface, root, container)
	for w.advance(true) {
	}
	return nil
}

// Reveal starts an animated reveal of safeHTML into container. The first
// rune is written before Reveal returns; the rest follow one per tick.
// onComplete runs exactly once when everything is revealed, unless the task
// is cancelled first. Input with nothing to reveal completes immediately
// without touching the surface.
func (e *Engine) Reveal(safeHTML string, surface Surface, container Node, onComplete func()) (*Task, error) {
	if e.Scheduler == nil {
		return nil, fmt.Errorf("reveal: engine has no scheduler")
	}
	root, err := Parse(safeHTML)
	if err != nil {
		return nil, err
	}

	t := &Task{
		engine:     e,
		walker:     newWalker(surface, root, container),
		onComplete: onComplete,
	}
	t.tick()
	return t, nil
}

// =============================================================================
// TASK
// =============================================================================

// Task is one animated reveal in progress.
type Task struct {
	engine     *Engine
	walker     *walker
	onComplete func()

	mu        sync.Mutex
	cancelled bool
	done      bool
}

// tick reveals one rune and schedules the next tick, or finishes the task.
func (t *Task) tick() {
	t.mu.Lock()
	if t.cancelled || t.done {
		t.mu.Unlock()
		return
	}
	more := t.walker.advance(false)
	if !more {
		t.done = true
	}
	t.mu.Unlock()

	if more {
		t.engine.Scheduler.Schedule(t.engine.interval(), t.tick)
		return
	}
	if t.onComplete != nil {
		t.onComplete()
	}
}

// Cancel stops the task. No further mutation happens and onComplete is
// never called. Cancelling a finished task has no effect.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.cancelled = true
	}
}

// Done reports whether the task revealed everything.
func (t *Task) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// =============================================================================
// WALKER
// =============================================================================

// frame is one open element: the next source child to visit and the
// destination node its clones go into.
type frame struct {
	next *html.Node
	dst  Node
}

// walker is the cursor over the source tree. The explicit stack keeps the
// walk iterative however deep the fragment nests.
type walker struct {
	surface Surface
	stack   []frame

	// Current text node: its runes, the next rune to write and the live
	// destination node receiving them.
	runes []rune
	idx   int
	live  Node
}

func newWalker(surface Surface, root *html.Node, container Node) *walker {
	return &walker{
		surface: surface,
		stack:   []frame{{next: root.FirstChild, dst: container}},
	}
}

// advance performs one visible step: one rune, or a whole text node when
// whole is set. Elements met on the way are cloned without counting as a
// step. It returns false once nothing is left.
func (w *walker) advance(whole bool) bool {
	for {
		if w.idx < len(w.runes) {
			end := w.idx + 1
			if whole {
				end = len(w.runes)
			}
			w.surface.AppendText(w.live, string(w.runes[w.idx:end]))
			w.idx = end
			w.surface.ScrollToBottom()
			return true
		}

		if len(w.stack) == 0 {
			return false
		}
		top := len(w.stack) - 1
		n := w.stack[top].next
		if n == nil {
			w.stack = w.stack[:top]
			continue
		}
		w.stack[top].next = n.NextSibling
		dst := w.stack[top].dst

		switch n.Type {
		case html.ElementNode:
			el := w.surface.CreateElement(n.Data, cloneAttrs(n.Attr))
			w.surface.AppendChild(dst, el)
			w.stack = append(w.stack, frame{next: n.FirstChild, dst: el})

		case html.TextNode:
			if n.Data == "" {
				continue
			}
			w.runes = []rune(n.Data)
			w.idx = 0
			w.live = w.surface.CreateText()
			w.surface.AppendChild(dst, w.live)

		default:
			// Comments, doctypes: nothing to show.
		}
	}
}

func cloneAttrs(attrs []html.Attribute) []html.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]html.Attribute, len(attrs))
	copy(out, attrs)
	return out
}
