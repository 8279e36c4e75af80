package services

import (
	"strings"
	"testing"
)

func TestSplitShortInputYieldsSingleChunk(t *testing.T) {
	c := NewChunker(100, 0)

	text := strings.Repeat("a", 99)
	chunks := c.Split(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Fatalf("chunk text does not match input")
	}
	if chunks[0].Index != 0 {
		t.Fatalf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	c := NewChunker(100, 0)

	if chunks := c.Split(""); chunks != nil {
		t.Fatalf("expected nil for empty input, got %d chunks", len(chunks))
	}
	if chunks := c.Split("   \n\n  "); chunks != nil {
		t.Fatalf("expected nil for whitespace input, got %d chunks", len(chunks))
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	c := NewChunker(50, 10)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("word ")
	}

	chunks := c.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if len(ch.Text) > 50 {
			t.Fatalf("chunk %d exceeds window: %d chars", ch.Index, len(ch.Text))
		}
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	c := NewChunker(40, 0)

	text := "first paragraph here.\n\nsecond paragraph here.\n\nthird paragraph here."
	chunks := c.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if strings.Contains(ch.Text, "\n\n") {
			t.Fatalf("chunk %d spans a paragraph boundary: %q", ch.Index, ch.Text)
		}
	}
}

func TestSplitCarriesOverlap(t *testing.T) {
	c := NewChunker(30, 10)

	text := "one two three four five six seven eight nine ten eleven twelve"
	chunks := c.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// adjacent chunks should share some text when overlap is enabled
	sharedAny := false
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		words := strings.Fields(chunks[i].Text)
		if len(words) > 0 && strings.Contains(prev, words[0]) {
			sharedAny = true
			break
		}
	}
	if !sharedAny {
		t.Fatalf("expected overlapping text between adjacent chunks")
	}
}

func TestSplitIndexesAreSequential(t *testing.T) {
	c := NewChunker(20, 5)

	chunks := c.Split(strings.Repeat("some words here and there. ", 10))
	for i, ch := range chunks {
		if ch.Index != i {
			t.Fatalf("expected index %d, got %d", i, ch.Index)
		}
	}
}

func TestSplitNoContentLost(t *testing.T) {
	c := NewChunker(25, 0)

	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	chunks := c.Split(text)

	joined := ""
	for _, ch := range chunks {
		joined += ch.Text + " "
	}
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Fatalf("word %q missing from chunked output", word)
		}
	}
}

func TestNewChunkerClampsOverlap(t *testing.T) {
	c := NewChunker(100, 150)
	if c.ChunkOverlap >= c.ChunkSize {
		t.Fatalf("overlap %d not clamped below chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}

	c = NewChunker(0, -5)
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 {
		t.Fatalf("defaults not applied: size=%d overlap=%d", c.ChunkSize, c.ChunkOverlap)
	}
}

func TestSplitOversizedWordFallsBackToCharacters(t *testing.T) {
	c := NewChunker(10, 0)

	chunks := c.Split(strings.Repeat("x", 35))
	if len(chunks) < 3 {
		t.Fatalf("expected character-level splitting, got %d chunks", len(chunks))
	}
	for _, ch := range chunks {
		if len(ch.Text) > 10 {
			t.Fatalf("chunk exceeds window: %q", ch.Text)
		}
	}
}
