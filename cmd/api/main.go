// Package main implements the compliance retrieval API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/complyware/retention-engine/engine/retrieval"
	"github.com/complyware/retention-engine/engine/semantic"
	"github.com/complyware/retention-engine/pkg/embed"
	"github.com/complyware/retention-engine/pkg/mid"
	"github.com/complyware/retention-engine/pkg/secrets"
)

// Config holds all environment-based configuration.
type Config struct {
	Port       string
	QdrantURL  string
	Collection string
	EmbedURL   string
	EmbedModel string
	CORSOrigin string

	// EmbedKeySecret names an AWS Secrets Manager secret holding the
	// embedding provider API key. Empty skips secret resolution.
	EmbedKeySecret string
	AWSRegion      string
}

func loadConfig() Config {
	return Config{
		Port:           envOr("PORT", "8080"),
		QdrantURL:      envOr("QDRANT_URL", "localhost:6334"),
		Collection:     envOr("QDRANT_COLLECTION", "compliance_patterns"),
		EmbedURL:       envOr("EMBED_URL", "http://localhost:11434"),
		EmbedModel:     envOr("EMBED_MODEL", "text-embedding-3-small"),
		CORSOrigin:     envOr("CORS_ORIGIN", "*"),
		EmbedKeySecret: os.Getenv("EMBED_API_KEY_SECRET"),
		AWSRegion:      envOr("AWS_REGION", "ap-southeast-1"),
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

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiKey, err := resolveEmbedKey(ctx, cfg)
	if err != nil {
		return err
	}

	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	embedder, err := embed.New(embed.Config{
		BaseURL: cfg.EmbedURL,
		Model:   cfg.EmbedModel,
		APIKey:  apiKey,
	}, logger)
	if err != nil {
		return fmt.Errorf("embed client: %w", err)
	}

	svc := retrieval.NewService(embedder, vectorStore, retrieval.DefaultOptions(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/search", handleSearch(svc, logger))
	mux.HandleFunc("POST /api/match", handleMatch(svc, logger))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("compliance-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// resolveEmbedKey fetches the provider API key from Secrets Manager when a
// secret name is configured, otherwise falls back to EMBED_API_KEY.
func resolveEmbedKey(ctx context.Context, cfg Config) (string, error) {
	if cfg.EmbedKeySecret == "" {
		return os.Getenv("EMBED_API_KEY"), nil
	}
	mgr, err := secrets.New(ctx, secrets.Config{Region: cfg.AWSRegion})
	if err != nil {
		return "", fmt.Errorf("secrets manager: %w", err)
	}
	key, err := mgr.Get(ctx, cfg.EmbedKeySecret)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", cfg.EmbedKeySecret, err)
	}
	return key, nil
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// matcher is the slice of the retrieval service the handlers use.
type matcher interface {
	Search(ctx context.Context, query string, k int) ([]retrieval.Match, error)
}

// SearchRequest is the JSON body for POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResponse is the JSON response for POST /api/search.
type SearchResponse struct {
	Matches []retrieval.Match `json:"matches"`
}

func handleSearch(svc matcher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
			return
		}

		matches, err := svc.Search(r.Context(), req.Query, req.TopK)
		if err != nil {
			if errors.Is(err, retrieval.ErrEmptyQueryEmbedding) {
				http.Error(w, `{"error":"embedding provider unavailable"}`, http.StatusServiceUnavailable)
				return
			}
			logger.Error("search failed", "err", err)
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{Matches: matches})
	}
}

func handleMatch(svc matcher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req retrieval.MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Violation == "" {
			http.Error(w, `{"error":"violation is required"}`, http.StatusBadRequest)
			return
		}

		matches, err := svc.Search(r.Context(), req.Violation, req.TopK)
		if err != nil {
			if errors.Is(err, retrieval.ErrEmptyQueryEmbedding) {
				http.Error(w, `{"error":"embedding provider unavailable"}`, http.StatusServiceUnavailable)
				return
			}
			logger.Error("match failed", "err", err)
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(retrieval.MatchResponse{Matches: matches})
	}
}
