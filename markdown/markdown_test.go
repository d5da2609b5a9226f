package markdown

import (
	"context"
	"strings"
	"testing"
)

func TestFormatInlineEmphasis(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
	}
	for _, tt := range tests {
		if got := FormatInline(tt.input); got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineLinks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"[Spotify](https://open.spotify.com/artist/a_b_c)",
			`<a href="https://open.spotify.com/artist/a_b_c" class="underline underline-offset-4">Spotify</a>`,
		},
		{
			"Listen [here](https://example.com)^ now",
			`Listen <a href="https://example.com" class="underline underline-offset-4" target="_blank" rel="noopener noreferrer">here</a> now`,
		},
		{"[bad](javascript:void)", "bad"},
		{"[relative](/lab/gear/)", `<a href="/lab/gear/" class="underline underline-offset-4">relative</a>`},
	}
	for _, tt := range tests {
		if got := FormatInline(tt.input); got != tt.expected {
			t.Errorf("FormatInline(%q)\n  got:  %q\n  want: %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"`code`", "<code>code</code>"},
		{"`a` and `b`", "<code>a</code> and <code>b</code>"},
		{"`**not bold**`", "<code>**not bold**</code>"},
	}
	for _, tt := range tests {
		if got := FormatInline(tt.input); got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineEscapes(t *testing.T) {
	got := FormatInline(`<script>alert("x")</script>`)
	if strings.Contains(got, "<script>") {
		t.Fatalf("FormatInline did not escape HTML: %q", got)
	}
}

func TestParagraphs(t *testing.T) {
	var b strings.Builder
	err := Paragraphs([]string{"First **one**", "  ", "Second"}, "lead").Render(context.Background(), &b)
	if err != nil {
		t.Fatal(err)
	}
	want := `<p class="lead">First <strong>one</strong></p><p class="lead">Second</p>`
	if b.String() != want {
		t.Errorf("Paragraphs = %q, want %q", b.String(), want)
	}
}

func TestInline(t *testing.T) {
	var b strings.Builder
	if err := Inline("*hi*").Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	if b.String() != "<em>hi</em>" {
		t.Errorf("Inline = %q", b.String())
	}
}
