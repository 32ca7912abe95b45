// Package ingest runs jurisdiction rule files through validation,
// normalization, embedding, and vector-store upserts.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/complyware/retention-engine/engine/domain"
	"github.com/complyware/retention-engine/engine/semantic"
	"github.com/complyware/retention-engine/pkg/fn"
)

// Deps holds the external dependencies of the pipeline.
type Deps struct {
	Embedder Embedder
	Store    VectorWriter
	Params   semantic.IndexParams
	Logger   *slog.Logger

	// StoreRetry overrides the upsert retry policy; zero uses fn.DefaultRetry.
	StoreRetry fn.RetryOpts
}

// Summary is the outcome of an ingestion run. OK is false only when the
// collection bootstrap failed; per-document failures reduce Indexed without
// failing the run.
type Summary struct {
	Indexed int
	Skipped int
	OK      bool
}

// PointID derives the deterministic point UUID for a compliance ID, so
// re-ingestion overwrites rather than duplicates.
func PointID(complianceID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(complianceID)).String()
}

// NewValidate returns the stage that gates raw rules on domain validation.
func NewValidate() fn.Stage[RuleInput, RuleInput] {
	return func(_ context.Context, in RuleInput) fn.Result[RuleInput] {
		if err := domain.ValidateFramework(in.Framework); err != nil {
			return fn.Err[RuleInput](err)
		}
		if err := domain.ValidateRawRule(in.Rule); err != nil {
			return fn.Err[RuleInput](err)
		}
		return fn.Ok(in)
	}
}

// NewNormalize returns the stage that builds the canonical pattern. An empty
// embedding discards the rule: the stage fails for this document only.
func NewNormalize(embedder Embedder) fn.Stage[RuleInput, *domain.CompliancePattern] {
	return func(ctx context.Context, in RuleInput) fn.Result[*domain.CompliancePattern] {
		pattern := Normalize(ctx, embedder, in.Rule, in.Framework)
		if pattern == nil {
			return fn.Errf[*domain.CompliancePattern]("ingest: empty embedding for rule %s", in.Rule.ID)
		}
		return fn.Ok(pattern)
	}
}

// NewStore returns the stage that upserts a pattern keyed by its compliance
// ID and yields that ID.
func NewStore(store VectorWriter) fn.Stage[*domain.CompliancePattern, string] {
	return func(ctx context.Context, p *domain.CompliancePattern) fn.Result[string] {
		record := semantic.VectorRecord{
			ID:        PointID(p.ComplianceID),
			Embedding: p.Embedding,
			Payload: map[string]any{
				"compliance_id":       p.ComplianceID,
				"framework":           string(p.Framework),
				"title":               p.Title,
				"content":             p.Content,
				"category":            p.Category,
				"applies_to":          p.AppliesTo,
				"country":             p.Country,
				"region":              p.Region,
				"risk_level":          string(p.RiskLevel),
				"data_types":          p.DataTypes,
				"violation_patterns":  p.ViolationPatterns,
				"remediation_actions": p.RemediationActions,
				"created_at":          p.CreatedAt,
				"updated_at":          p.UpdatedAt,
			},
		}
		if err := store.Upsert(ctx, []semantic.VectorRecord{record}); err != nil {
			return fn.Err[string](fmt.Errorf("ingest: upsert %s: %w", p.ComplianceID, err))
		}
		return fn.Ok(p.ComplianceID)
	}
}

// NewPipeline composes validate → normalize → store with tracing, retrying
// transient upsert failures.
func NewPipeline(deps Deps) fn.Stage[RuleInput, string] {
	retry := deps.StoreRetry
	if retry.MaxAttempts == 0 {
		retry = fn.DefaultRetry
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	validated := fn.TracedStage("ingest.validate", NewValidate())
	normalized := fn.TracedStage("ingest.normalize", NewNormalize(deps.Embedder))
	classified := fn.TapStage(func(_ context.Context, p *domain.CompliancePattern) {
		log.Debug("ingest: rule classified",
			"compliance_id", p.ComplianceID, "risk", p.RiskLevel, "data_types", p.DataTypes)
	})
	stored := fn.TracedStage("ingest.store", fn.RetryStage(retry, NewStore(deps.Store)))

	return fn.Then(fn.Then(fn.Then(validated, normalized), classified), stored)
}

// Run executes a full ingestion over the given sources. Collection bootstrap
// failure aborts the run; every other failure is scoped to a single source
// file or document.
func Run(ctx context.Context, deps Deps, sources []Source) Summary {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	if err := deps.Store.EnsureCollection(ctx, deps.Params); err != nil {
		log.Error("ingest: collection bootstrap failed", "error", err)
		return Summary{OK: false}
	}

	pipeline := NewPipeline(deps)
	summary := Summary{OK: true}

	for _, src := range sources {
		rules, err := LoadRuleFile(src.Path)
		if err != nil {
			log.Warn("ingest: source unreadable, skipping",
				"path", src.Path, "framework", src.Framework, "error", err)
			continue
		}
		log.Info("ingest: source loaded",
			"path", src.Path, "framework", src.Framework, "rules", len(rules))

		for _, rule := range rules {
			if ctx.Err() != nil {
				log.Warn("ingest: cancelled", "indexed", summary.Indexed)
				return summary
			}

			result := pipeline(ctx, RuleInput{Rule: rule, Framework: src.Framework})
			if result.IsErr() {
				_, perr := result.Unwrap()
				log.Warn("ingest: rule skipped", "rule_id", rule.ID, "error", perr)
				summary.Skipped++
				continue
			}
			id, _ := result.Unwrap()
			log.Info("ingest: rule indexed", "compliance_id", id)
			summary.Indexed++
		}
	}

	if err := deps.Store.Flush(ctx); err != nil {
		log.Warn("ingest: flush failed", "error", err)
	}

	log.Info("ingest: run complete", "indexed", summary.Indexed, "skipped", summary.Skipped)
	return summary
}
