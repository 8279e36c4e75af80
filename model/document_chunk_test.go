package model

import "testing"

func TestChunkID(t *testing.T) {
	if got := ChunkID("doc_ab12cd34ef56", 0); got != "doc_ab12cd34ef56_chunk_0" {
		t.Fatalf("unexpected chunk id: %q", got)
	}
	if got := ChunkID("doc_ab12cd34ef56", 17); got != "doc_ab12cd34ef56_chunk_17" {
		t.Fatalf("unexpected chunk id: %q", got)
	}
}

func TestNewDocumentChunk(t *testing.T) {
	chunk := NewDocumentChunk("doc_ab12cd34ef56", 2, "some text", []float32{0.1, 0.2}, nil)

	if chunk.ID != "doc_ab12cd34ef56_chunk_2" {
		t.Fatalf("unexpected id: %q", chunk.ID)
	}
	if chunk.DocumentID != "doc_ab12cd34ef56" || chunk.ChunkIndex != 2 {
		t.Fatalf("document linkage not preserved")
	}
	if chunk.Text != "some text" {
		t.Fatalf("text not preserved")
	}
}
