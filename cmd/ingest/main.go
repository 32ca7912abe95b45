// Command ingest loads the jurisdiction rule files, classifies and embeds
// every rule, and indexes the resulting patterns into Qdrant.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/complyware/retention-engine/engine/ingest"
	"github.com/complyware/retention-engine/engine/semantic"
	"github.com/complyware/retention-engine/pkg/embed"
	"github.com/complyware/retention-engine/pkg/metrics"
)

var met = metrics.New()

var (
	mRulesIndexed = met.Counter("compliance_ingest_rules_indexed_total", "Rules indexed into the vector store")
	mRulesSkipped = met.Counter("compliance_ingest_rules_skipped_total", "Rules dropped by validation, embedding, or storage failures")
	mRunDur       = met.Histogram("compliance_ingest_run_duration_seconds", "Full ingestion run time", nil)
)

func main() {
	_ = godotenv.Load()

	var (
		rulesDir    = flag.String("rules", "data", "directory holding the jurisdiction rule files")
		embedURL    = flag.String("embed", envOr("EMBED_URL", "http://localhost:11434"), "embedding provider base URL")
		embedModel  = flag.String("model", envOr("EMBED_MODEL", "text-embedding-3-small"), "embedding model name")
		qdrantAddr  = flag.String("qdrant", envOr("QDRANT_URL", "localhost:6334"), "Qdrant gRPC address")
		collection  = flag.String("collection", envOr("QDRANT_COLLECTION", "compliance_patterns"), "Qdrant collection name")
		metricsPort = flag.Int("metrics-port", 9091, "Prometheus metrics port")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	met.ServeAsync(*metricsPort)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *rulesDir, *embedURL, *embedModel, *qdrantAddr, *collection, logger); err != nil {
		logger.Error("ingestion failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, rulesDir, embedURL, embedModel, qdrantAddr, collection string, logger *slog.Logger) error {
	vectorStore, err := semantic.New(qdrantAddr, collection)
	if err != nil {
		return err
	}
	defer vectorStore.Close()

	embedder, err := embed.New(embed.Config{
		BaseURL: embedURL,
		Model:   embedModel,
		APIKey:  os.Getenv("EMBED_API_KEY"),
	}, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	summary := ingest.Run(ctx, ingest.Deps{
		Embedder: embedder,
		Store:    vectorStore,
		Params:   semantic.DefaultIndexParams(),
		Logger:   logger,
	}, ingest.DefaultSources(rulesDir))
	mRunDur.Since(start)
	mRulesIndexed.Add(int64(summary.Indexed))
	mRulesSkipped.Add(int64(summary.Skipped))

	if !summary.OK {
		return errors.New("collection bootstrap failed")
	}
	logger.Info("ingestion complete",
		"indexed", summary.Indexed, "skipped", summary.Skipped, "took", time.Since(start))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
