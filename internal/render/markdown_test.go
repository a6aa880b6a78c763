// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestMarkdown_Render(t *testing.T) {
	m := NewMarkdown()

	tests := []struct {
		name    string
		source  string
		contain []string
		absent  []string
	}{
		{
			name:    "heading and emphasis",
			source:  "# Title\n\nSome *text*.",
			contain: []string{"<h1", "Title</h1>", "<em>text</em>"},
		},
		{
			name:    "script stripped",
			source:  "hello <script>alert(1)</script>",
			contain: []string{"hello"},
			absent:  []string{"<script", "alert(1)</script>"},
		},
		{
			name:    "links get nofollow",
			source:  "[site](https://example.com)",
			contain: []string{`href="https://example.com"`, `rel="nofollow`},
		},
		{
			name:    "gfm table",
			source:  "| a | b |\n|---|---|\n| 1 | 2 |",
			contain: []string{"<table>", "<td>1</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Render(tt.source)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, want := range tt.contain {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(got, bad) {
					t.Errorf("output %q should not contain %q", got, bad)
				}
			}
		})
	}
}

func TestMarkdown_Sanitize(t *testing.T) {
	m := NewMarkdown()
	got := m.Sanitize(`<p onclick="x()">ok</p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("Sanitize kept event handler: %q", got)
	}
}
