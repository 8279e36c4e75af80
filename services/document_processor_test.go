package services

import (
	"regexp"
	"testing"
)

var docIDPattern = regexp.MustCompile(`^doc_[0-9a-f]{12}$`)

func TestNewDocumentIDFormat(t *testing.T) {
	for i := 0; i < 10; i++ {
		id := NewDocumentID()
		if !docIDPattern.MatchString(id) {
			t.Fatalf("unexpected document id format: %q", id)
		}
	}
}

func TestNewDocumentIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewDocumentID()
		if seen[id] {
			t.Fatalf("duplicate document id: %q", id)
		}
		seen[id] = true
	}
}
