// Command matcher serves compliance match requests over NATS request/reply.
// Audit workers publish a violation description and receive the most similar
// indexed patterns.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/complyware/retention-engine/engine/retrieval"
	"github.com/complyware/retention-engine/engine/semantic"
	"github.com/complyware/retention-engine/pkg/embed"
	"github.com/complyware/retention-engine/pkg/natsutil"
)

// Config holds all environment-based configuration.
type Config struct {
	NATSURL    string
	QdrantURL  string
	Collection string
	EmbedURL   string
	EmbedModel string
}

func loadConfig() Config {
	return Config{
		NATSURL:    envOr("NATS_URL", nats.DefaultURL),
		QdrantURL:  envOr("QDRANT_URL", "localhost:6334"),
		Collection: envOr("QDRANT_COLLECTION", "compliance_patterns"),
		EmbedURL:   envOr("EMBED_URL", "http://localhost:11434"),
		EmbedModel: envOr("EMBED_MODEL", "text-embedding-3-small"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("matcher exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("compliance-matcher"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	embedder, err := embed.New(embed.Config{
		BaseURL: cfg.EmbedURL,
		Model:   cfg.EmbedModel,
		APIKey:  os.Getenv("EMBED_API_KEY"),
	}, logger)
	if err != nil {
		return fmt.Errorf("embed client: %w", err)
	}

	svc := retrieval.NewService(embedder, vectorStore, retrieval.DefaultOptions(), logger)

	sub, err := natsutil.Respond(nc, retrieval.SubjectMatchRequest,
		func(ctx context.Context, req retrieval.MatchRequest) retrieval.MatchResponse {
			if req.Violation == "" {
				return retrieval.MatchResponse{Error: "violation is required"}
			}
			matches, err := svc.Search(ctx, req.Violation, req.TopK)
			if err != nil {
				logger.Error("match failed", "err", err)
				return retrieval.MatchResponse{Error: err.Error()}
			}
			return retrieval.MatchResponse{Matches: matches}
		})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", retrieval.SubjectMatchRequest, err)
	}
	defer sub.Unsubscribe()

	logger.Info("matcher listening", "subject", retrieval.SubjectMatchRequest, "nats", cfg.NATSURL)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}
