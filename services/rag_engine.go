package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/services/llm"
)

var ErrGenerationFailed = errors.New("answer generation failed")

const ragSystemPrompt = `You are a helpful financial assistant. Your role is to provide accurate,
context-aware answers to financial questions based on the provided documents.

Guidelines:
- Answer questions based ONLY on the provided context from financial documents
- If the context doesn't contain enough information to answer the question, clearly state that
- Be concise and professional in your responses
- Cite specific information from the documents when relevant
- If asked about topics not covered in the documents, politely indicate the limitation`

// RefusalMessage is returned when a non-finance question cannot be answered
// and generation is unavailable.
const RefusalMessage = "I'm a financial assistant specialized in finance-related topics. " +
	"I can only answer questions related to finance, accounting, investments, " +
	"economics, banking, and other financial matters. Please ask me a question " +
	"related to finance, or upload financial documents for more specific assistance."

const sourcePreviewLength = 200

// QuerySource describes one document that contributed to an answer
type QuerySource struct {
	DocumentID     string  `json:"document_id"`
	Filename       string  `json:"filename"`
	ChunkText      string  `json:"chunk_text"`
	RelevanceScore float64 `json:"relevance_score"`
}

// QueryResult is the outcome of one chat query
type QueryResult struct {
	Response  string        `json:"response"`
	Sources   []QuerySource `json:"sources"`
	SessionID string        `json:"session_id"`
}

// RAGEngine answers user queries by retrieving relevant chunks and driving
// the chat model. When no useful retrieval is available it falls back to a
// single-call classify-and-answer path.
type RAGEngine struct {
	config    *ConfigManager
	sessions  *SessionManager
	vectors   *VectorStore
	embedder  llm.Embedder
	generator llm.TextGenerator
}

// NewRAGEngine creates the query engine
func NewRAGEngine(config *ConfigManager, sessions *SessionManager, vectors *VectorStore, embedder llm.Embedder, generator llm.TextGenerator) *RAGEngine {
	return &RAGEngine{
		config:    config,
		sessions:  sessions,
		vectors:   vectors,
		embedder:  embedder,
		generator: generator,
	}
}

// Query runs the full RAG flow for one user question. An empty sessionID
// starts a new session; a supplied one must belong to the user.
func (e *RAGEngine) Query(ctx context.Context, user *model.User, query, sessionID string) (*QueryResult, error) {
	cfg := e.config.Snapshot()

	if sessionID == "" {
		id, err := e.sessions.Create(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		sessionID = id
	} else if err := e.sessions.EnsureOwned(ctx, sessionID, user.ID); err != nil {
		return nil, err
	}

	history, err := e.sessions.History(ctx, sessionID, cfg.MaxConversationTurns*2)
	if err != nil {
		return nil, err
	}

	hits := e.retrieve(ctx, cfg, query)
	if len(hits) == 0 {
		return e.handleNoContext(ctx, cfg, sessionID, query, history)
	}

	prompt := buildPrompt(query, hits, history)

	answer, err := e.generateWithRetry(ctx, cfg, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if err := e.sessions.AppendPair(ctx, sessionID, query, answer); err != nil {
		return nil, err
	}

	return &QueryResult{
		Response:  answer,
		Sources:   projectSources(hits),
		SessionID: sessionID,
	}, nil
}

// retrieve embeds the query and searches the index. Any failure along the
// way degrades to an empty result, which routes the query to the no-context
// path rather than failing it.
func (e *RAGEngine) retrieve(ctx context.Context, cfg ConfigSnapshot, query string) []SearchHit {
	empty, err := e.vectors.IsEmpty(ctx)
	if err != nil {
		log.Printf("RAG: is-empty check failed, falling back: %v", err)
		return nil
	}
	if empty {
		return nil
	}

	qv, err := e.embedder.EmbedQuery(ctx, cfg.GeminiEmbeddingModel, query)
	if err != nil {
		log.Printf("RAG: query embedding failed, falling back: %v", err)
		return nil
	}

	hits, err := e.vectors.Search(ctx, qv, cfg.TopKChunks, cfg.SimilarityThreshold)
	if err != nil {
		log.Printf("RAG: search failed, falling back: %v", err)
		return nil
	}
	return hits
}

// handleNoContext answers without retrieval: one combined LLM call decides
// whether the question is finance-related and answers or redirects. A failed
// call yields the canned refusal. The exchange is persisted either way.
func (e *RAGEngine) handleNoContext(ctx context.Context, cfg ConfigSnapshot, sessionID, query string, history []model.ChatMessage) (*QueryResult, error) {
	prompt := fmt.Sprintf(`You are a financial assistant. Analyze the following question and respond accordingly:

1. First, determine if the question is related to finance, accounting, economics, investments, banking, or financial topics.
2. If it IS finance-related: Provide a helpful, accurate answer using your general knowledge. Keep it concise and professional. If specific data would help, mention that uploading documents would provide more accurate answers.
3. If it is NOT finance-related: Politely explain that you only handle finance-related questions and ask the user to ask about finance topics.

Question: %s

Your response:`, query)

	answer, err := e.generator.Generate(ctx, llm.GenerateOptions{
		Model:       cfg.GeminiChatModel,
		Temperature: float32(cfg.GeminiTemperature),
		MaxTokens:   int32(cfg.GeminiMaxTokens),
	}, prompt)
	if err != nil {
		log.Printf("RAG: no-context generation failed, returning refusal: %v", err)
		answer = RefusalMessage
	}
	answer = strings.TrimSpace(answer)

	if err := e.sessions.AppendPair(ctx, sessionID, query, answer); err != nil {
		return nil, err
	}

	return &QueryResult{
		Response:  answer,
		Sources:   []QuerySource{},
		SessionID: sessionID,
	}, nil
}

// buildPrompt assembles the four prompt regions in fixed order. Empty
// history is omitted rather than rendered as an empty section.
func buildPrompt(query string, hits []SearchHit, history []model.ChatMessage) string {
	var b strings.Builder

	b.WriteString(ragSystemPrompt)

	b.WriteString("\n\n=== RELEVANT FINANCIAL DOCUMENTS ===\n")
	for i, hit := range hits {
		filename := hit.Metadata.Filename
		if filename == "" {
			filename = "Unknown"
		}
		fmt.Fprintf(&b, "\n[Document %d: %s]\n%s\n", i+1, filename, hit.Text)
	}

	if len(history) > 0 {
		b.WriteString("\n\n=== CONVERSATION HISTORY ===\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "\n%s: %s\n", strings.ToUpper(string(msg.Role)), msg.Content)
		}
	}

	b.WriteString("\n\n=== CURRENT QUESTION ===\n")
	b.WriteString(query)
	b.WriteString("\n\nPlease provide a helpful answer based on the context above.")

	return b.String()
}

// generateWithRetry retries transient provider failures at most twice with
// 1s then 2s backoff. Non-retryable errors fail immediately.
func (e *RAGEngine) generateWithRetry(ctx context.Context, cfg ConfigSnapshot, prompt string) (string, error) {
	opts := llm.GenerateOptions{
		Model:       cfg.GeminiChatModel,
		Temperature: float32(cfg.GeminiTemperature),
		MaxTokens:   int32(cfg.GeminiMaxTokens),
	}

	backoffs := []time.Duration{time.Second, 2 * time.Second}

	var lastErr error
	for attempt := 0; attempt <= len(backoffs); attempt++ {
		answer, err := e.generator.Generate(ctx, opts, prompt)
		if err == nil {
			return strings.TrimSpace(answer), nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == len(backoffs) {
			break
		}

		log.Printf("RAG: generation attempt %d failed, retrying: %v", attempt+1, err)
		select {
		case <-time.After(backoffs[attempt]):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// isRetryable reports whether a provider error is worth retrying. Rate
// limits and server-side failures are; malformed requests and auth errors
// are not.
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// network-level failures carry no status code
	return true
}

// projectSources converts hits into transport sources, one per document,
// with chunk text truncated for preview.
func projectSources(hits []SearchHit) []QuerySource {
	sources := make([]QuerySource, 0, len(hits))
	seen := make(map[string]bool, len(hits))

	for _, hit := range hits {
		docID := hit.Metadata.DocumentID
		if docID == "" {
			docID = "unknown"
		}
		if seen[docID] {
			continue
		}
		seen[docID] = true

		// truncate by characters, not bytes, so multibyte text stays valid
		text := hit.Text
		if runes := []rune(text); len(runes) > sourcePreviewLength {
			text = string(runes[:sourcePreviewLength]) + "..."
		}

		filename := hit.Metadata.Filename
		if filename == "" {
			filename = "Unknown"
		}

		sources = append(sources, QuerySource{
			DocumentID:     docID,
			Filename:       filename,
			ChunkText:      text,
			RelevanceScore: hit.Score,
		})
	}
	return sources
}
