// Package retrieval answers similarity queries against the indexed
// compliance patterns.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/complyware/retention-engine/engine/semantic"
	"github.com/complyware/retention-engine/pkg/fn"
)

// ErrEmptyQueryEmbedding reports that the embedding provider produced no
// vector for the query text. Unlike ingestion, retrieval cannot silently
// continue without one.
var ErrEmptyQueryEmbedding = errors.New("retrieval: query embedding is empty")

// Embedder produces an embedding vector for text, or an empty vector on any
// failure. Implemented by embed.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Searcher is the slice of the vector store retrieval reads through.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]semantic.SearchResult, error)
}

// Match is one retrieved pattern summary, ranked by similarity.
type Match struct {
	ComplianceID string  `json:"compliance_id"`
	Framework    string  `json:"framework"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	RiskLevel    string  `json:"risk_level"`
	Score        float32 `json:"score"`
}

// Options tunes the retrieval service.
type Options struct {
	// TopK is the result count used when a request asks for zero or fewer.
	TopK int
	// SearchTimeout bounds a single search round-trip.
	SearchTimeout time.Duration
}

// DefaultOptions returns the standard retrieval settings.
func DefaultOptions() Options {
	return Options{TopK: 5, SearchTimeout: 5 * time.Second}
}

// Service embeds query text and retrieves the nearest indexed patterns.
type Service struct {
	embedder Embedder
	store    Searcher
	opts     Options
	log      *slog.Logger
}

// NewService wires a retrieval service. Zero option fields fall back to
// DefaultOptions; a nil logger uses slog.Default.
func NewService(embedder Embedder, store Searcher, opts Options, log *slog.Logger) *Service {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = def.SearchTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{embedder: embedder, store: store, opts: opts, log: log}
}

// Search embeds query and returns up to k pattern summaries ranked by
// descending similarity. k <= 0 uses the configured default.
func (s *Service) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		k = s.opts.TopK
	}

	vec := s.embedder.Embed(ctx, query)
	if len(vec) == 0 {
		s.log.Warn("retrieval: query embedding unavailable", "query_len", len(query))
		return nil, ErrEmptyQueryEmbedding
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.SearchTimeout)
	defer cancel()

	hits, err := s.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("retrieval: search k=%d: %w", k, err)
	}

	s.log.Info("retrieval: search complete", "k", k, "hits", len(hits))
	return fn.Map(hits, func(h semantic.SearchResult) Match {
		return Match{
			ComplianceID: h.ComplianceID,
			Framework:    h.Framework,
			Title:        h.Title,
			Category:     h.Category,
			RiskLevel:    h.RiskLevel,
			Score:        h.Score,
		}
	}), nil
}
