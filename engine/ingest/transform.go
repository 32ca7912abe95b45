package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/complyware/retention-engine/engine/classify"
	"github.com/complyware/retention-engine/engine/domain"
)

// EmbeddingText builds the provider input for a rule: title, content, and
// category joined by single spaces.
func EmbeddingText(rule domain.RawRule) string {
	return strings.Join([]string{rule.Title, rule.Content, rule.Category}, " ")
}

// Normalize assembles the canonical pattern for a raw rule. Returns nil when
// the embedding call yields an empty vector; a discarded pattern must never
// abort the surrounding batch, so no error is involved.
func Normalize(ctx context.Context, embedder Embedder, rule domain.RawRule, fw domain.Framework) *domain.CompliancePattern {
	vec := embedder.Embed(ctx, EmbeddingText(rule))
	if len(vec) == 0 {
		return nil
	}

	j := domain.JurisdictionFor(fw)
	now := time.Now().UTC()

	return &domain.CompliancePattern{
		ComplianceID: fw.IDPrefix() + rule.ID,
		Framework:    fw,
		Title:        rule.Title,
		Content:      rule.Content,
		Category:     rule.Category,
		AppliesTo:    rule.AppliesTo,
		Country:      j.Country,
		Region:       j.Region,

		RiskLevel:          classify.RiskFor(rule.Title, rule.Content),
		DataTypes:          classify.DataTypes(rule.Content),
		ViolationPatterns:  classify.ViolationPattern(rule.Content),
		RemediationActions: classify.RemediationAction(rule.Content),

		Embedding: vec,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
