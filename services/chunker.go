package services

import (
	"strings"
)

// Chunk is one bounded window of document text
type Chunk struct {
	Index int
	Text  string
}

// separators ordered from coarsest to finest. The splitter prefers paragraph
// boundaries, then lines, then sentences, then words, then characters.
var chunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits extracted text into overlapping windows
type Chunker struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewChunker creates a chunker with the given window and overlap sizes
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Chunker{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// Split chunks text by recursive character splitting. Input at or below the
// window size yields a single chunk. Empty windows are dropped.
func (c *Chunker) Split(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	pieces := c.splitRecursive(text, chunkSeparators)

	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if trimmed == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: trimmed})
	}
	return chunks
}

func (c *Chunker) splitRecursive(text string, separators []string) []string {
	if len(text) <= c.ChunkSize {
		return []string{text}
	}

	// Pick the coarsest separator present in the text; "" always matches.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitKeepingSeparator(text, separator)

	var final []string
	var good []string
	for _, s := range splits {
		if len(s) <= c.ChunkSize {
			good = append(good, s)
			continue
		}
		// This piece alone exceeds the window: flush what we have, then
		// split the oversized piece with finer separators.
		if len(good) > 0 {
			final = append(final, c.merge(good)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, s)
		} else {
			final = append(final, c.splitRecursive(s, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, c.merge(good)...)
	}
	return final
}

// splitKeepingSeparator splits text on sep, keeping the separator attached to
// the preceding piece so no characters are lost at the joins.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		// character-level split
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// merge packs adjacent small splits into windows of at most ChunkSize,
// carrying ChunkOverlap trailing characters into the next window.
func (c *Chunker) merge(splits []string) []string {
	var out []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(current, ""))
		if joined != "" {
			out = append(out, joined)
		}
	}

	for _, s := range splits {
		if currentLen+len(s) > c.ChunkSize && currentLen > 0 {
			flush()
			// drop leading pieces until the carried tail fits the overlap
			for currentLen > c.ChunkOverlap ||
				(currentLen+len(s) > c.ChunkSize && currentLen > 0) {
				currentLen -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, s)
		currentLen += len(s)
	}
	flush()
	return out
}
