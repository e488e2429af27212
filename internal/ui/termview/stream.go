// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package termview

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/jeranaias/agentdesk/internal/reveal"
)

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// streamNode is the handle StreamSurface gives out for created nodes.
type streamNode struct {
	tag    string
	text   bool
	parent *streamNode
	// items counts <li> children of an <ol>.
	items int
	// cells counts <td>/<th> children of a <tr>.
	cells int
}

func (n *streamNode) inPre() bool {
	for p := n; p != nil; p = p.parent {
		if p.tag == "pre" {
			return true
		}
	}
	return false
}

// StreamSurface is a reveal.Surface that prints text as it is revealed.
// Block elements start new lines; whitespace outside <pre> is collapsed.
// Nothing is ever redrawn, so it suits a plain scrolling terminal.
type StreamSurface struct {
	w   io.Writer
	err error

	// newlines is the number of consecutive newlines just written.
	newlines int
	// space is a collapsed whitespace run not yet written; it is dropped
	// at line ends.
	space bool
	wrote bool
}

// NewStreamSurface creates a surface printing to w.
func NewStreamSurface(w io.Writer) *StreamSurface {
	return &StreamSurface{w: w, newlines: 2}
}

// Root returns a container handle to pass to Engine.Reveal.
func (s *StreamSurface) Root() reveal.Node {
	return &streamNode{tag: "div"}
}

// Err returns the first write error.
func (s *StreamSurface) Err() error {
	return s.err
}

// CreateElement implements reveal.Surface.
func (s *StreamSurface) CreateElement(tag string, _ []html.Attribute) reveal.Node {
	return &streamNode{tag: tag}
}

// CreateText implements reveal.Surface.
func (s *StreamSurface) CreateText() reveal.Node {
	return &streamNode{text: true}
}

// AppendChild implements reveal.Surface. Attaching an element emits the
// line structure that precedes its content.
func (s *StreamSurface) AppendChild(parent, child reveal.Node) {
	p, _ := parent.(*streamNode)
	c, ok := child.(*streamNode)
	if !ok {
		return
	}
	c.parent = p
	if c.text {
		return
	}

	switch c.tag {
	case "p", "pre", "blockquote", "table", "ul", "ol",
		"h1", "h2", "h3", "h4", "h5", "h6":
		if !(c.tag == "ul" || c.tag == "ol") || p == nil || p.tag != "li" {
			s.breakLines(2)
		}
		if strings.HasPrefix(c.tag, "h") && len(c.tag) == 2 {
			s.emit(strings.Repeat("#", int(c.tag[1]-'0')) + " ")
		}
	case "li":
		s.breakLines(1)
		marker := "• "
		if p != nil && p.tag == "ol" {
			p.items++
			marker = fmt.Sprintf("%d. ", p.items)
		}
		s.emit(marker)
	case "tr":
		s.breakLines(1)
	case "td", "th":
		if p != nil {
			if p.cells > 0 {
				s.emit(" | ")
			}
			p.cells++
		}
	case "br":
		s.emitRaw("\n")
		s.space = false
	case "hr":
		s.breakLines(2)
		s.emit("----")
	case "div":
		s.breakLines(1)
	}
}

// AppendText implements reveal.Surface.
func (s *StreamSurface) AppendText(text reveal.Node, str string) {
	n, _ := text.(*streamNode)
	if n != nil && n.inPre() {
		s.emitRaw(str)
		return
	}
	var b strings.Builder
	for _, r := range str {
		if unicode.IsSpace(r) {
			s.space = s.newlines == 0
			continue
		}
		if s.space {
			b.WriteByte(' ')
			s.space = false
		}
		b.WriteRune(r)
	}
	s.emit(b.String())
}

// ScrollToBottom flushes buffered output so each rune appears on time.
func (s *StreamSurface) ScrollToBottom() {
	if f, ok := s.w.(flusher); ok && s.err == nil {
		s.err = f.Flush()
	}
}

// Finish ends the current line. Call it when a reveal completes.
func (s *StreamSurface) Finish() {
	if s.wrote && s.newlines == 0 {
		s.emitRaw("\n")
	}
	s.newlines = 2
	s.space = false
	s.wrote = false
	s.ScrollToBottom()
}

func (s *StreamSurface) breakLines(k int) {
	if !s.wrote {
		return
	}
	for s.newlines < k {
		s.emitRaw("\n")
	}
	s.space = false
}

func (s *StreamSurface) emit(str string) {
	if str == "" {
		return
	}
	s.emitRaw(str)
	s.space = false
}

func (s *StreamSurface) emitRaw(str string) {
	if s.err != nil || str == "" {
		return
	}
	if _, err := io.WriteString(s.w, str); err != nil {
		s.err = err
		return
	}
	s.wrote = true
	trailing := len(str) - len(strings.TrimRight(str, "\n"))
	if trailing == len(str) {
		s.newlines += trailing
	} else {
		s.newlines = trailing
	}
}
