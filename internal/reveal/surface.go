// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is an opaque handle to a node owned by a Surface.
type Node any

// Surface builds the destination tree. The engine only ever appends: it
// never removes or reorders nodes it has created.
type Surface interface {
	// CreateElement returns a detached element with the given tag and
	// attributes.
	CreateElement(tag string, attrs []html.Attribute) Node
	// CreateText returns a detached, empty text node.
	CreateText() Node
	// AppendChild attaches child as the last child of parent.
	AppendChild(parent, child Node)
	// AppendText appends s to the content of a text node.
	AppendText(text Node, s string)
	// ScrollToBottom moves the view so the newest content is visible.
	ScrollToBottom()
}

// =============================================================================
// NODE SURFACE
// =============================================================================

// NodeSurface is a Surface backed by an *html.Node tree.
type NodeSurface struct {
	Root *html.Node

	// OnScroll, when set, is called on every ScrollToBottom.
	OnScroll func()

	revision uint64
	scrolls  int
}

// NewNodeSurface creates a surface whose root is an empty <div>.
func NewNodeSurface() *NodeSurface {
	return &NodeSurface{Root: NewElement("div", nil)}
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs []html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// CreateElement implements Surface.
func (s *NodeSurface) CreateElement(tag string, attrs []html.Attribute) Node {
	return NewElement(tag, attrs)
}

// CreateText implements Surface.
func (s *NodeSurface) CreateText() Node {
	return &html.Node{Type: html.TextNode}
}

// AppendChild implements Surface.
func (s *NodeSurface) AppendChild(parent, child Node) {
	parent.(*html.Node).AppendChild(child.(*html.Node))
	s.revision++
}

// AppendText implements Surface.
func (s *NodeSurface) AppendText(text Node, str string) {
	text.(*html.Node).Data += str
	s.revision++
}

// ScrollToBottom implements Surface.
func (s *NodeSurface) ScrollToBottom() {
	s.scrolls++
	if s.OnScroll != nil {
		s.OnScroll()
	}
}

// Revision increases on every mutation of the tree.
func (s *NodeSurface) Revision() uint64 {
	return s.revision
}

// Scrolls returns how many times ScrollToBottom was called.
func (s *NodeSurface) Scrolls() int {
	return s.scrolls
}

// Clear removes every child of the root.
func (s *NodeSurface) Clear() {
	for c := s.Root.FirstChild; c != nil; {
		next := c.NextSibling
		s.Root.RemoveChild(c)
		c = next
	}
	s.revision++
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&b, c)
	}
	return b.String()
}

// TextContent returns the concatenated text below n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
