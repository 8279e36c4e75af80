package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"google.golang.org/api/googleapi"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/services/llm"
)

// fakeGenerator returns queued errors before succeeding
type fakeGenerator struct {
	errs   []error
	answer string
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, _ llm.GenerateOptions, _ string) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.answer, nil
}

func TestBuildPromptSections(t *testing.T) {
	hits := []SearchHit{
		{Text: "revenue grew 12%", Metadata: model.ChunkMetadata{Filename: "q3.pdf"}},
		{Text: "cash flow stable", Metadata: model.ChunkMetadata{}},
	}
	history := []model.ChatMessage{
		{Role: model.MessageRoleUser, Content: "what about revenue?"},
		{Role: model.MessageRoleAssistant, Content: "revenue grew."},
	}

	prompt := buildPrompt("how is cash flow?", hits, history)

	docIdx := strings.Index(prompt, "=== RELEVANT FINANCIAL DOCUMENTS ===")
	histIdx := strings.Index(prompt, "=== CONVERSATION HISTORY ===")
	questionIdx := strings.Index(prompt, "=== CURRENT QUESTION ===")
	if docIdx == -1 || histIdx == -1 || questionIdx == -1 {
		t.Fatalf("prompt is missing a section:\n%s", prompt)
	}
	if !(docIdx < histIdx && histIdx < questionIdx) {
		t.Fatalf("prompt sections out of order")
	}

	if !strings.Contains(prompt, "[Document 1: q3.pdf]") {
		t.Fatalf("named document header missing")
	}
	if !strings.Contains(prompt, "[Document 2: Unknown]") {
		t.Fatalf("unnamed document should fall back to Unknown")
	}
	if !strings.Contains(prompt, "USER: what about revenue?") {
		t.Fatalf("history roles should be uppercased")
	}
	if !strings.HasSuffix(prompt, "Please provide a helpful answer based on the context above.") {
		t.Fatalf("closing instruction missing")
	}
}

func TestBuildPromptOmitsEmptyHistory(t *testing.T) {
	hits := []SearchHit{{Text: "x", Metadata: model.ChunkMetadata{Filename: "a.txt"}}}

	prompt := buildPrompt("q", hits, nil)
	if strings.Contains(prompt, "=== CONVERSATION HISTORY ===") {
		t.Fatalf("empty history should not be rendered")
	}
}

func TestProjectSourcesDedupesByDocument(t *testing.T) {
	hits := []SearchHit{
		{Text: "first", Score: 0.9, Metadata: model.ChunkMetadata{DocumentID: "doc_a", Filename: "a.pdf"}},
		{Text: "second", Score: 0.8, Metadata: model.ChunkMetadata{DocumentID: "doc_a", Filename: "a.pdf"}},
		{Text: "third", Score: 0.7, Metadata: model.ChunkMetadata{DocumentID: "doc_b", Filename: "b.pdf"}},
	}

	sources := projectSources(hits)
	if len(sources) != 2 {
		t.Fatalf("expected 2 deduped sources, got %d", len(sources))
	}
	if sources[0].DocumentID != "doc_a" || sources[0].ChunkText != "first" {
		t.Fatalf("highest ranked chunk should represent the document")
	}
	if sources[1].DocumentID != "doc_b" {
		t.Fatalf("expected doc_b second, got %s", sources[1].DocumentID)
	}
}

func TestProjectSourcesTruncatesPreview(t *testing.T) {
	long := strings.Repeat("a", 300)
	hits := []SearchHit{{Text: long, Metadata: model.ChunkMetadata{DocumentID: "doc_a"}}}

	sources := projectSources(hits)
	if len(sources) != 1 {
		t.Fatalf("expected 1 source")
	}
	if len(sources[0].ChunkText) != sourcePreviewLength+3 {
		t.Fatalf("unexpected preview length %d", len(sources[0].ChunkText))
	}
	if !strings.HasSuffix(sources[0].ChunkText, "...") {
		t.Fatalf("truncated preview should end with ellipsis")
	}
	if sources[0].Filename != "Unknown" {
		t.Fatalf("missing filename should default to Unknown")
	}
}

func TestProjectSourcesTruncatesMultibyteByCharacter(t *testing.T) {
	// 300 characters, 900 bytes; a byte-based cut would split a rune
	long := strings.Repeat("€", 300)
	hits := []SearchHit{{Text: long, Metadata: model.ChunkMetadata{DocumentID: "doc_a"}}}

	sources := projectSources(hits)
	if len(sources) != 1 {
		t.Fatalf("expected 1 source")
	}
	preview := sources[0].ChunkText
	if !utf8.ValidString(preview) {
		t.Fatalf("preview is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(preview); got != sourcePreviewLength+3 {
		t.Fatalf("expected %d-character preview, got %d", sourcePreviewLength+3, got)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Fatalf("truncated preview should end with ellipsis")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &googleapi.Error{Code: 429}, true},
		{"server error", &googleapi.Error{Code: 503}, true},
		{"bad request", &googleapi.Error{Code: 400}, false},
		{"auth failure", &googleapi.Error{Code: 403}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"plain network error", errors.New("connection reset"), true},
	}
	for _, tc := range cases {
		if got := isRetryable(tc.err); got != tc.want {
			t.Errorf("%s: isRetryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGenerateWithRetryStopsOnNonRetryable(t *testing.T) {
	gen := &fakeGenerator{errs: []error{&googleapi.Error{Code: 400}}}
	e := &RAGEngine{generator: gen}

	_, err := e.generateWithRetry(context.Background(), ConfigSnapshot{}, "prompt")
	if err == nil {
		t.Fatalf("expected error")
	}
	if gen.calls != 1 {
		t.Fatalf("non-retryable error should not be retried, got %d calls", gen.calls)
	}
}

func TestGenerateWithRetryRecoversFromTransientFailure(t *testing.T) {
	gen := &fakeGenerator{
		errs:   []error{&googleapi.Error{Code: 429}},
		answer: "  the answer  ",
	}
	e := &RAGEngine{generator: gen}

	answer, err := e.generateWithRetry(context.Background(), ConfigSnapshot{}, "prompt")
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("expected trimmed answer, got %q", answer)
	}
	if gen.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", gen.calls)
	}
}

func TestGenerateWithRetryGivesUpAfterBudget(t *testing.T) {
	transient := &googleapi.Error{Code: 500}
	gen := &fakeGenerator{errs: []error{transient, transient, transient, transient}}
	e := &RAGEngine{generator: gen}

	_, err := e.generateWithRetry(context.Background(), ConfigSnapshot{}, "prompt")
	if err == nil {
		t.Fatalf("expected exhausted retries to fail")
	}
	if gen.calls != 3 {
		t.Fatalf("expected initial call plus 2 retries, got %d", gen.calls)
	}
}

func TestGenerateWithRetryHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{errs: []error{&googleapi.Error{Code: 500}}}
	e := &RAGEngine{generator: gen}

	_, err := e.generateWithRetry(ctx, ConfigSnapshot{}, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
