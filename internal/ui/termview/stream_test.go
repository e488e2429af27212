// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package termview

import (
	"bufio"
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/jeranaias/agentdesk/internal/reveal"
)

func revealTo(t *testing.T, src string) string {
	t.Helper()
	var buf bytes.Buffer
	s := NewStreamSurface(&buf)
	sched := reveal.NewManualScheduler()
	done := false
	if _, err := reveal.NewEngine(time.Millisecond, sched).Reveal(src, s, s.Root(), func() { done = true }); err != nil {
		t.Fatal(err)
	}
	sched.RunAll()
	if !done {
		t.Fatal("reveal did not complete")
	}
	s.Finish()
	return buf.String()
}

func TestStreamSurface_Layout(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "paragraph and list",
			src:  "<p>Hello <strong>world</strong></p>\n<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n",
			want: "Hello world\n\n• a\n• b\n",
		},
		{
			name: "ordered",
			src:  "<ol>\n<li>x</li>\n<li>y</li>\n</ol>",
			want: "1. x\n2. y\n",
		},
		{
			name: "preformatted",
			src:  "<pre><code>a  b\n  c\n</code></pre>",
			want: "a  b\n  c\n",
		},
		{
			name: "heading and break",
			src:  "<h1>Hi</h1>\n<p>one<br>\ntwo</p>",
			want: "# Hi\n\none\ntwo\n",
		},
		{
			name: "collapses whitespace",
			src:  "<p>a   \n  b</p>",
			want: "a b\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := revealTo(t, tt.src); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStreamSurface_InstantRender(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamSurface(&buf)
	if err := reveal.NewEngine(0, nil).Render("<p>Hello   there</p>", s, s.Root()); err != nil {
		t.Fatal(err)
	}
	s.Finish()
	if got := buf.String(); got != "Hello there\n" {
		t.Errorf("got %q", got)
	}
}

func TestStreamSurface_FlushesEveryTick(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	s := NewStreamSurface(w)
	sched := reveal.NewManualScheduler()
	if _, err := reveal.NewEngine(time.Millisecond, sched).Reveal("<p>abc</p>", s, s.Root(), nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a" {
		t.Fatalf("first rune should be flushed synchronously, got %q", buf.String())
	}
	sched.Step()
	if buf.String() != "ab" {
		t.Errorf("after one tick got %q", buf.String())
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestStreamSurface_KeepsFirstError(t *testing.T) {
	s := NewStreamSurface(failWriter{})
	if err := reveal.NewEngine(0, nil).Render("<p>x</p>", s, s.Root()); err != nil {
		t.Fatal(err)
	}
	if s.Err() == nil {
		t.Error("write failure should be reported by Err")
	}
}
