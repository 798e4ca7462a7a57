package summarize

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitTokensShortInput(t *testing.T) {
	tok := ApproxTokenizer{}
	chunks := splitTokens("a short paragraph", 100, tok)
	if len(chunks) != 1 || chunks[0] != "a short paragraph" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestSplitTokensParagraphBoundaries(t *testing.T) {
	tok := ApproxTokenizer{}
	var paragraphs []string
	for i := 0; i < 10; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Paragraph %d carries roughly ten plain words for the test.", i))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := splitTokens(text, 30, tok)
	if len(chunks) < 2 {
		t.Fatalf("expected input to split, got %d chunk(s)", len(chunks))
	}
	for i, c := range chunks {
		if n := tok.CountTokens(c); n > 30 {
			t.Errorf("chunk %d has %d tokens, budget 30", i, n)
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
	// Order and content survive the split.
	joined := strings.Join(chunks, "\n\n")
	for i := 0; i < 10; i++ {
		marker := fmt.Sprintf("Paragraph %d", i)
		if !strings.Contains(joined, marker) {
			t.Errorf("split lost %q", marker)
		}
	}
	if strings.Index(joined, "Paragraph 0") > strings.Index(joined, "Paragraph 9") {
		t.Error("split reordered paragraphs")
	}
}

func TestSplitTokensOversizedParagraph(t *testing.T) {
	tok := ApproxTokenizer{}
	// One paragraph far beyond the budget must fall back to word packing.
	text := strings.TrimSpace(strings.Repeat("word ", 200))

	chunks := splitTokens(text, 50, tok)
	if len(chunks) < 3 {
		t.Fatalf("expected word-level split, got %d chunk(s)", len(chunks))
	}
	total := 0
	for i, c := range chunks {
		n := tok.CountTokens(c)
		if n > 50 {
			t.Errorf("chunk %d has %d tokens, budget 50", i, n)
		}
		total += n
	}
	if total != 200 {
		t.Errorf("split dropped words: %d of 200 tokens survive", total)
	}
}

func TestApproxTokenizer(t *testing.T) {
	tok := ApproxTokenizer{}
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello", 1},
		{"hello world", 2},
		{"don't stop", 4}, // don ' t stop
		{"version 2.0", 4}, // version 2 . 0
	}
	for _, tt := range tests {
		if got := tok.CountTokens(tt.text); got != tt.want {
			t.Errorf("CountTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
