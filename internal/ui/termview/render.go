// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package termview

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"golang.org/x/net/html"

	"github.com/jeranaias/agentdesk/internal/reveal"
	"github.com/jeranaias/agentdesk/internal/ui/styles"
	"github.com/jeranaias/agentdesk/internal/util"
)

// Message roles, stored in the class attribute of a message container.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	classMessage = "message"
	attrLabel    = "data-label"
	attrTime     = "data-time"
)

// minContentWidth keeps layout sane in tiny terminals.
const minContentWidth = 10

// NewMessage creates a detached message container. label names the
// speaker and stamp is the HH:MM time shown next to it.
func NewMessage(role, label, stamp string) *html.Node {
	return reveal.NewElement("div", []html.Attribute{
		{Key: "class", Val: classMessage + " " + role},
		{Key: attrLabel, Val: label},
		{Key: attrTime, Val: stamp},
	})
}

// Role returns the role of a message container, or "".
func Role(n *html.Node) string {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == RoleUser || c == RoleAssistant {
			return c
		}
	}
	return ""
}

// Renderer lays out transcript trees as terminal text. Finished messages
// are cached per node until the width changes.
type Renderer struct {
	theme *styles.Theme
	width int
	cache map[*html.Node]string
}

// NewRenderer creates a renderer for the given total width.
func NewRenderer(theme *styles.Theme, width int) *Renderer {
	return &Renderer{
		theme: theme,
		width: width,
		cache: make(map[*html.Node]string),
	}
}

// SetWidth changes the layout width, dropping cached output.
func (r *Renderer) SetWidth(width int) {
	if width == r.width {
		return
	}
	r.width = width
	r.Reset()
}

// Width returns the layout width.
func (r *Renderer) Width() int {
	return r.width
}

// Reset drops all cached output.
func (r *Renderer) Reset() {
	r.cache = make(map[*html.Node]string)
}

// Transcript renders every message under root. Messages for which live
// returns true are still changing and bypass the cache.
func (r *Renderer) Transcript(root *html.Node, live func(*html.Node) bool) string {
	var parts []string
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		isLive := live != nil && live(n)
		s, ok := r.cache[n]
		if !ok || isLive {
			s = r.Message(n)
			if !isLive && s != "" {
				r.cache[n] = s
			}
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Message renders one message container as a labelled bubble. An
// assistant message with nothing revealed yet renders as "".
func (r *Renderer) Message(n *html.Node) string {
	bubble := r.theme.AssistantBubble
	if Role(n) == RoleUser {
		bubble = r.theme.UserBubble
	}
	cw := r.width - bubble.GetHorizontalFrameSize()
	if cw < minContentWidth {
		cw = minContentWidth
	}

	var body string
	if Role(n) == RoleUser {
		body = wrapText(reveal.TextContent(n), cw)
	} else {
		body = r.HTML(n, cw)
	}
	if strings.TrimSpace(body) == "" {
		return ""
	}

	header := attr(n, attrLabel)
	if stamp := attr(n, attrTime); stamp != "" {
		header += " · " + stamp
	}
	margin := bubble.GetMarginLeft()
	header = strings.Repeat(" ", margin) + r.theme.Timestamp.Render(header)
	return header + "\n" + bubble.Render(body)
}

// HTML lays out the children of n as blocks wrapped to width.
func (r *Renderer) HTML(n *html.Node, width int) string {
	if width < minContentWidth {
		width = minContentWidth
	}
	return strings.Join(r.blocks(n, width), "\n\n")
}

// =============================================================================
// BLOCK LAYOUT
// =============================================================================

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "pre": true, "blockquote": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "hr": true,
	"dl": true, "dt": true, "dd": true, "details": true, "summary": true,
	"figure": true,
}

func (r *Renderer) blocks(n *html.Node, width int) []string {
	var out []string
	in := newInline()
	flush := func() {
		if in.hasText {
			out = append(out, wrapText(in.String(), width))
		}
		in = newInline()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			in.write(c.Data, nil)
		case c.Type != html.ElementNode:
		case c.Data == "br":
			in.lineBreak()
		case !blockTags[c.Data]:
			r.inlineNode(in, c, nil)
		default:
			flush()
			if b := r.block(c, width); b != "" {
				out = append(out, b)
			}
		}
	}
	flush()
	return out
}

func (r *Renderer) block(n *html.Node, width int) string {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(n.Data[1:])
		text := collapse(reveal.TextContent(n))
		if text == "" {
			return ""
		}
		return r.theme.Heading.Render(wrapText(strings.Repeat("#", level)+" "+text, width))
	case "ul", "ol":
		return r.list(n, width)
	case "pre":
		return r.code(n, width)
	case "blockquote":
		inner := strings.Join(r.blocks(n, width-r.theme.Quote.GetHorizontalFrameSize()), "\n\n")
		if inner == "" {
			return ""
		}
		return r.theme.Quote.Render(inner)
	case "table":
		return r.table(n, width)
	case "hr":
		return r.theme.TableRule.Render(strings.Repeat("─", width))
	default:
		return strings.Join(r.blocks(n, width), "\n\n")
	}
}

func (r *Renderer) list(n *html.Node, width int) string {
	ordered := n.Data == "ol"
	index := 1
	if start, err := strconv.Atoi(attr(n, "start")); err == nil {
		index = start
	}

	var lines []string
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		marker := "• "
		if ordered {
			marker = fmt.Sprintf("%d. ", index)
			index++
		}
		mw := runewidth.StringWidth(marker)
		body := strings.Join(r.blocks(li, width-mw), "\n")
		pad := strings.Repeat(" ", mw)
		for i, line := range strings.Split(body, "\n") {
			if i == 0 {
				lines = append(lines, marker+line)
			} else {
				lines = append(lines, pad+line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) code(pre *html.Node, width int) string {
	var language string
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			language = codeLanguage(attr(c, "class"))
			break
		}
	}
	src := strings.TrimRight(reveal.TextContent(pre), "\n")
	if src == "" {
		return ""
	}

	inner := width - r.theme.CodeBlock.GetHorizontalFrameSize()
	if inner < minContentWidth {
		inner = minContentWidth
	}
	lines := strings.Split(highlight(src, language, r.theme.IsDark, r.theme.HasTrueColor), "\n")
	for i, line := range lines {
		lines[i] = truncate.StringWithTail(line, uint(inner), "…")
	}
	if language != "" {
		lines = append([]string{r.theme.Muted.Render(language)}, lines...)
	}
	return r.theme.CodeBlock.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) table(n *html.Node, width int) string {
	type row struct {
		cells  []string
		header bool
	}
	var rows []row
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data != "tr" {
				walk(c)
				continue
			}
			var rw row
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					rw.cells = append(rw.cells, collapse(reveal.TextContent(cell)))
					rw.header = rw.header || cell.Data == "th"
				}
			}
			rows = append(rows, rw)
		}
	}
	walk(n)
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, rw := range rows {
		cols = max(cols, len(rw.cells))
	}
	widths := make([]int, cols)
	for _, rw := range rows {
		for i, cell := range rw.cells {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	sep := " │ "
	avail := width - len([]rune(sep))*(cols-1)
	total := 0
	for _, w := range widths {
		total += w
	}
	if total > avail && cols > 0 {
		limit := max(avail/cols, 3)
		for i := range widths {
			widths[i] = min(widths[i], limit)
		}
	}

	var lines []string
	for _, rw := range rows {
		cells := make([]string, cols)
		for i := range cells {
			var cell string
			if i < len(rw.cells) {
				cell = rw.cells[i]
			}
			cells[i] = util.PadWidth(cell, widths[i])
			if rw.header {
				cells[i] = r.theme.Bold.Render(cells[i])
			}
		}
		lines = append(lines, strings.Join(cells, r.theme.TableRule.Render(sep)))
		if rw.header {
			rules := make([]string, cols)
			for i, w := range widths {
				rules[i] = strings.Repeat("─", w)
			}
			lines = append(lines, r.theme.TableRule.Render(strings.Join(rules, "─┼─")))
		}
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// INLINE LAYOUT
// =============================================================================

// inline accumulates styled inline runs with HTML whitespace collapsing.
type inline struct {
	b         strings.Builder
	lineStart bool
	space     bool
	hasText   bool
}

func newInline() *inline {
	return &inline{lineStart: true}
}

func (in *inline) write(s string, style *lipgloss.Style) {
	var chunk strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			if in.lineStart || in.space {
				continue
			}
			in.space = true
			chunk.WriteByte(' ')
			continue
		}
		in.space = false
		in.lineStart = false
		in.hasText = true
		chunk.WriteRune(r)
	}
	if chunk.Len() == 0 {
		return
	}
	if style == nil {
		in.b.WriteString(chunk.String())
		return
	}
	in.b.WriteString(style.Render(chunk.String()))
}

func (in *inline) lineBreak() {
	in.b.WriteByte('\n')
	in.lineStart = true
	in.space = false
}

func (in *inline) String() string {
	return strings.TrimRight(in.b.String(), " ")
}

func (r *Renderer) inlineNode(in *inline, n *html.Node, style *lipgloss.Style) {
	switch n.Type {
	case html.TextNode:
		in.write(n.Data, style)
		return
	case html.ElementNode:
	default:
		return
	}

	var own *lipgloss.Style
	switch n.Data {
	case "br":
		in.lineBreak()
		return
	case "img":
		in.write("[image: "+attr(n, "alt")+"]", r.compose(&r.theme.Muted, style))
		return
	case "strong", "b":
		own = &r.theme.Bold
	case "em", "i":
		own = &r.theme.Italic
	case "del", "s", "strike":
		own = &r.theme.Strike
	case "code":
		own = &r.theme.InlineCode
	case "a":
		own = &r.theme.Link
	}
	st := r.compose(own, style)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.inlineNode(in, c, st)
	}

	if n.Data == "a" {
		href := attr(n, "href")
		if href != "" && href != collapse(reveal.TextContent(n)) {
			in.write(" ("+href+")", r.compose(&r.theme.Muted, style))
		}
	}
}

func (r *Renderer) compose(own, parent *lipgloss.Style) *lipgloss.Style {
	switch {
	case own == nil:
		return parent
	case parent == nil:
		return own
	}
	st := own.Inherit(*parent)
	return &st
}

// =============================================================================
// HELPERS
// =============================================================================

// wrapText word-wraps s to width, hard-wrapping words longer than a line.
// Existing newlines are kept.
func wrapText(s string, width int) string {
	return wrap.String(wordwrap.String(s, width), width)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
