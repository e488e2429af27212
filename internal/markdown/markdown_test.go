// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "emphasis",
			input:    "Hello **world**",
			contains: []string{"<p>Hello <strong>world</strong></p>"},
		},
		{
			name:     "fenced code keeps language class",
			input:    "```go\nfmt.Println(1)\n```",
			contains: []string{`<pre><code class="language-go">`, "fmt.Println(1)"},
		},
		{
			name:     "table",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "script stripped",
			input:    "hi <script>alert(1)</script>",
			absent:   []string{"<script", "alert(1)</script>"},
			contains: []string{"hi"},
		},
		{
			name:   "javascript url stripped",
			input:  "[x](javascript:alert(1))",
			absent: []string{"javascript:"},
		},
		{
			name:   "event handler stripped",
			input:  `<img src="a.png" onerror="alert(1)">`,
			absent: []string{"onerror"},
		},
		{
			name:     "arbitrary class dropped",
			input:    "```\nx\n```",
			contains: []string{"<pre><code>x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.input)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render(%q) = %q, missing %q", tt.input, got, want)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(got, bad) {
					t.Errorf("Render(%q) = %q, should not contain %q", tt.input, got, bad)
				}
			}
		})
	}
}

func TestRender_Empty(t *testing.T) {
	got, err := Render("")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got != "" {
		t.Errorf("Render(\"\") = %q, want empty", got)
	}
}

func TestSanitizePolicy(t *testing.T) {
	if got := sanitize(`<p class="x" onclick="y">ok</p>`); got != "<p>ok</p>" {
		t.Errorf("sanitize = %q", got)
	}
}
