// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// recordingSurface wraps a NodeSurface and records the content of every
// text node after each change, starting with the empty string at creation.
type recordingSurface struct {
	*NodeSurface
	order   []*html.Node
	history map[*html.Node][]string
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{
		NodeSurface: NewNodeSurface(),
		history:     make(map[*html.Node][]string),
	}
}

func (s *recordingSurface) CreateText() Node {
	n := s.NodeSurface.CreateText().(*html.Node)
	s.order = append(s.order, n)
	s.history[n] = []string{""}
	return n
}

func (s *recordingSurface) AppendText(text Node, str string) {
	s.NodeSurface.AppendText(text, str)
	n := text.(*html.Node)
	s.history[n] = append(s.history[n], n.Data)
}

var fragments = []struct {
	name string
	html string
}{
	{"paragraph", "<p>Hello <strong>world</strong></p>"},
	{"siblings", "<p>one</p>\n<p>two</p>\n"},
	{"list", "<ul>\n<li>a <em>b</em></li>\n<li><a href=\"https://example.com\" rel=\"nofollow\">c</a></li>\n</ul>"},
	{"code", "<pre><code class=\"language-go\">func main() {\n\tfmt.Println(&#34;hi&#34;)\n}\n</code></pre>"},
	{"table", "<table><thead><tr><th>a</th></tr></thead><tbody><tr><td>1</td></tr></tbody></table>"},
	{"unicode", "<p>héllo 世界 👋</p>"},
	{"entities", "<p>&lt;b&gt; &amp; &#39;x&#39;</p>"},
	{"void elements", "<p>a<br>b</p><hr><img src=\"x.png\" alt=\"x\">"},
	{"bare text", "just text"},
	{"nested inline", "<p><em><strong><code>deep</code></strong></em> tail</p>"},
}

func renderInstant(t *testing.T, input string) string {
	t.Helper()
	s := NewNodeSurface()
	e := NewEngine(time.Millisecond, NewManualScheduler())
	if err := e.Render(input, s, s.Root); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return InnerHTML(s.Root)
}

func renderAnimated(t *testing.T, input string) (string, int) {
	t.Helper()
	s := NewNodeSurface()
	sched := NewManualScheduler()
	e := NewEngine(time.Millisecond, sched)

	completions := 0
	if _, err := e.Reveal(input, s, s.Root, func() { completions++ }); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	sched.RunAll()
	return InnerHTML(s.Root), completions
}

// =============================================================================
// STRUCTURE
// =============================================================================

func TestReveal_MatchesInstantRender(t *testing.T) {
	for _, tt := range fragments {
		t.Run(tt.name, func(t *testing.T) {
			animated, completions := renderAnimated(t, tt.html)
			instant := renderInstant(t, tt.html)

			if animated != instant {
				t.Errorf("animated and instant differ\nanimated: %s\ninstant:  %s", animated, instant)
			}
			if completions != 1 {
				t.Errorf("onComplete called %d times, want 1", completions)
			}

			root, err := Parse(tt.html)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if direct := InnerHTML(root); animated != direct {
				t.Errorf("revealed tree differs from parsed input\nrevealed: %s\nparsed:   %s", animated, direct)
			}
		})
	}
}

func TestReveal_SkipsComments(t *testing.T) {
	input := "<p>a<!-- hidden -->b</p><!-- trailing -->"

	animated, completions := renderAnimated(t, input)
	if animated != "<p>ab</p>" {
		t.Errorf("revealed = %q, want %q", animated, "<p>ab</p>")
	}
	if instant := renderInstant(t, input); instant != animated {
		t.Errorf("instant = %q, animated = %q", instant, animated)
	}
	if completions != 1 {
		t.Errorf("onComplete called %d times, want 1", completions)
	}
}

func TestReveal_DeepNesting(t *testing.T) {
	const depth = 300
	input := strings.Repeat("<div>", depth) + "x" + strings.Repeat("</div>", depth)

	animated, _ := renderAnimated(t, input)
	if animated != input {
		t.Errorf("deeply nested fragment not reproduced (len %d vs %d)", len(animated), len(input))
	}
}

func TestWalker_NoDepthLimit(t *testing.T) {
	// Built directly: the HTML parser itself caps nesting, the walker must not.
	const depth = 100000
	root := NewElement("div", nil)
	cur := root
	for i := 0; i < depth; i++ {
		child := NewElement("span", nil)
		cur.AppendChild(child)
		cur = child
	}
	cur.AppendChild(&html.Node{Type: html.TextNode, Data: "leaf"})

	s := NewNodeSurface()
	w := newWalker(s, root, s.Root)
	steps := 0
	for w.advance(false) {
		steps++
	}
	if steps != 4 {
		t.Errorf("steps = %d, want 4", steps)
	}
	if got := TextContent(s.Root); got != "leaf" {
		t.Errorf("text = %q, want leaf", got)
	}
}

// =============================================================================
// TIMING
// =============================================================================

func TestReveal_CharacterPrefixes(t *testing.T) {
	input := "<p>héllo <b>wörld</b></p>👋!"
	s := newRecordingSurface()
	sched := NewManualScheduler()
	e := NewEngine(time.Millisecond, sched)

	if _, err := e.Reveal(input, s, s.Root, nil); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	sched.RunAll()

	wantTexts := []string{"héllo ", "wörld", "👋!"}
	if len(s.order) != len(wantTexts) {
		t.Fatalf("created %d text nodes, want %d", len(s.order), len(wantTexts))
	}
	for i, n := range s.order {
		text := wantTexts[i]
		got := s.history[n]
		runes := []rune(text)
		if len(got) != len(runes)+1 {
			t.Errorf("text %q: %d states, want %d", text, len(got), len(runes)+1)
			continue
		}
		for k := range got {
			if want := string(runes[:k]); got[k] != want {
				t.Errorf("text %q state %d = %q, want %q", text, k, got[k], want)
			}
		}
	}
}

func TestReveal_OneRunePerTick(t *testing.T) {
	input := "<p>abc</p><p>de</p>"
	s := NewNodeSurface()
	sched := NewManualScheduler()
	e := NewEngine(10*time.Millisecond, sched)

	done := false
	task, err := e.Reveal(input, s, s.Root, func() { done = true })
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}

	// The first rune is written synchronously.
	want := []string{"a", "ab", "abc", "abcd", "abcde"}
	for i, w := range want {
		if got := TextContent(s.Root); got != w {
			t.Fatalf("after %d ticks text = %q, want %q", i, got, w)
		}
		if done {
			t.Fatalf("completed early after %d ticks", i)
		}
		if !sched.Step() {
			t.Fatalf("no tick pending after %d ticks", i)
		}
	}

	if !done || !task.Done() {
		t.Error("expected completion after the last tick")
	}
	if sched.Now() != 50*time.Millisecond {
		t.Errorf("virtual time = %v, want 50ms at a fixed cadence", sched.Now())
	}
	if sched.Pending() != 0 {
		t.Errorf("pending = %d after completion", sched.Pending())
	}
}

func TestReveal_ScrollsAfterEveryAppend(t *testing.T) {
	input := "<p>héllo</p><ul><li>x</li></ul>"
	s := NewNodeSurface()
	sched := NewManualScheduler()
	e := NewEngine(time.Millisecond, sched)

	s.OnScroll = func() {
		// Each scroll follows exactly one more revealed rune.
		if n := utf8.RuneCountInString(TextContent(s.Root)); n != s.Scrolls() {
			t.Errorf("scroll %d with %d runes visible", s.Scrolls(), n)
		}
	}
	if _, err := e.Reveal(input, s, s.Root, nil); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	sched.RunAll()

	if s.Scrolls() != 6 {
		t.Errorf("scrolls = %d, want 6", s.Scrolls())
	}
}

func TestReveal_Empty(t *testing.T) {
	for _, input := range []string{"", "<!-- nothing -->"} {
		s := NewNodeSurface()
		sched := NewManualScheduler()
		e := NewEngine(time.Millisecond, sched)

		completions := 0
		task, err := e.Reveal(input, s, s.Root, func() { completions++ })
		if err != nil {
			t.Fatalf("Reveal(%q) failed: %v", input, err)
		}
		if completions != 1 {
			t.Errorf("Reveal(%q): onComplete called %d times, want 1", input, completions)
		}
		if !task.Done() {
			t.Errorf("Reveal(%q): task not done", input)
		}
		if s.Revision() != 0 || s.Scrolls() != 0 {
			t.Errorf("Reveal(%q) mutated the surface", input)
		}
		if sched.Pending() != 0 {
			t.Errorf("Reveal(%q) left %d ticks pending", input, sched.Pending())
		}
	}
}

func TestReveal_RequiresScheduler(t *testing.T) {
	s := NewNodeSurface()
	if _, err := (&Engine{}).Reveal("<p>x</p>", s, s.Root, nil); err == nil {
		t.Error("expected error without a scheduler")
	}
}

func TestReveal_DefaultInterval(t *testing.T) {
	s := NewNodeSurface()
	sched := NewManualScheduler()
	e := &Engine{Scheduler: sched}

	if _, err := e.Reveal("ab", s, s.Root, nil); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	sched.Step()
	if sched.Now() != DefaultInterval {
		t.Errorf("tick at %v, want %v", sched.Now(), DefaultInterval)
	}
}

// =============================================================================
// CANCELLATION
// =============================================================================

func TestTask_Cancel(t *testing.T) {
	s := NewNodeSurface()
	sched := NewManualScheduler()
	e := NewEngine(time.Millisecond, sched)

	completed := false
	task, err := e.Reveal("<p>hello</p><p>world</p>", s, s.Root, func() { completed = true })
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	sched.Step()
	sched.Step()

	task.Cancel()
	before := InnerHTML(s.Root)
	rev := s.Revision()

	sched.RunAll()

	if after := InnerHTML(s.Root); after != before || s.Revision() != rev {
		t.Errorf("cancelled task kept writing: %q -> %q", before, after)
	}
	if completed {
		t.Error("onComplete fired for a cancelled task")
	}
	if !task.cancelled || task.Done() {
		t.Errorf("cancelled = %v, Done = %v", task.cancelled, task.Done())
	}
	if before != "<p>hel</p>" {
		t.Errorf("content at cancel = %q, want <p>hel</p>", before)
	}
}

func TestTask_CancelAfterDone(t *testing.T) {
	s := NewNodeSurface()
	sched := NewManualScheduler()
	e := NewEngine(time.Millisecond, sched)

	task, _ := e.Reveal("x", s, s.Root, nil)
	sched.RunAll()
	task.Cancel()

	if task.cancelled {
		t.Error("cancelling a finished task should have no effect")
	}
}

// =============================================================================
// INSTANT RENDER
// =============================================================================

func TestRender_WholeTextNodes(t *testing.T) {
	s := NewNodeSurface()
	e := NewEngine(time.Millisecond, NewManualScheduler())

	if err := e.Render("<p>hello <em>there</em></p>", s, s.Root); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if s.Scrolls() != 2 {
		t.Errorf("scrolls = %d, want one per text node", s.Scrolls())
	}
	if got := InnerHTML(s.Root); got != "<p>hello <em>there</em></p>" {
		t.Errorf("rendered = %q", got)
	}
}

func TestRender_NeedsNoScheduler(t *testing.T) {
	s := NewNodeSurface()
	if err := (&Engine{}).Render("<p>x</p>", s, s.Root); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if InnerHTML(s.Root) != "<p>x</p>" {
		t.Errorf("rendered = %q", InnerHTML(s.Root))
	}
}

func TestNodeSurface_Clear(t *testing.T) {
	s := NewNodeSurface()
	e := NewEngine(time.Millisecond, nil)
	e.Render("<p>a</p><p>b</p>", s, s.Root)

	s.Clear()
	if s.Root.FirstChild != nil {
		t.Error("Clear left children behind")
	}
}
