package ingest

import (
	"context"

	"github.com/complyware/retention-engine/engine/domain"
	"github.com/complyware/retention-engine/engine/semantic"
)

// Source is one jurisdiction rule file to ingest.
type Source struct {
	Framework domain.Framework
	Path      string
}

// RuleInput is a raw rule tagged with the framework of its source file.
type RuleInput struct {
	Rule      domain.RawRule
	Framework domain.Framework
}

// Embedder produces an embedding vector for text, or an empty vector on any
// failure. Implemented by embed.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// VectorWriter is the slice of the vector store the pipeline writes through.
type VectorWriter interface {
	EnsureCollection(ctx context.Context, params semantic.IndexParams) error
	Upsert(ctx context.Context, records []semantic.VectorRecord) error
	Flush(ctx context.Context) error
}
