// Package orchestrator sequences retrieval, prompt assembly, generation and
// persistence for a single query.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kartavya/ragchat/internal/fault"
	"github.com/kartavya/ragchat/internal/model/rag"
	"github.com/kartavya/ragchat/internal/service/prompt"
	"github.com/kartavya/ragchat/internal/service/retrieval"
)

// Retriever fetches ranked context passages.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]rag.Passage, error)
}

// Generator produces an answer for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sessions records completed turn pairs.
type Sessions interface {
	Append(ctx context.Context, id, userText, botText string) error
}

// Service runs the query pipeline. Stages execute strictly in order:
// validate, retrieve, assemble, generate, persist.
type Service struct {
	retriever   Retriever
	generator   Generator
	sessions    Sessions
	defaultTopK int
	logger      *slog.Logger
}

// NewService wires the pipeline. defaultTopK < 1 falls back to the retrieval
// default; a nil logger falls back to slog.Default.
func NewService(retriever Retriever, generator Generator, sessions Sessions, defaultTopK int, logger *slog.Logger) *Service {
	if defaultTopK < 1 {
		defaultTopK = retrieval.DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		retriever:   retriever,
		generator:   generator,
		sessions:    sessions,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Answer executes one query end to end. When persistence fails after a
// successful generation, the response is still returned alongside the error;
// the caller decides how to surface the partial failure.
func (s *Service) Answer(ctx context.Context, req rag.QueryRequest) (rag.QueryResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Query) == "" {
		return rag.QueryResponse{}, fault.New(fault.InvalidRequest, "validate", fmt.Errorf("session_id and query are required"))
	}

	topK := req.TopK
	if topK < 1 {
		topK = s.defaultTopK
	}

	passages, err := s.retriever.Retrieve(ctx, req.Query, topK)
	if err != nil {
		return rag.QueryResponse{}, err
	}
	if len(passages) == 0 {
		// Never hit the generation backend without context.
		return rag.QueryResponse{}, fault.New(fault.NoResults, "retrieve", fmt.Errorf("no relevant passages"))
	}

	// The backend was asked for topK but is not trusted to honor it.
	if len(passages) > topK {
		passages = passages[:topK]
	}

	answer, err := s.generator.Generate(ctx, prompt.Assemble(req.Query, passages))
	if err != nil {
		return rag.QueryResponse{}, err
	}

	resp := rag.QueryResponse{
		Query:  req.Query,
		Answer: answer,
		Source: passages[0].Metadata.URL,
	}

	if err := s.sessions.Append(ctx, req.SessionID, req.Query, answer); err != nil {
		// A computed answer is never discarded over bookkeeping.
		s.logger.Warn("turn pair not persisted",
			"session_id", req.SessionID,
			"err", err)
		return resp, err
	}

	return resp, nil
}
