// Package classify derives structured metadata from free-text rule content
// using ordered keyword tables. All functions are pure and total: every input
// maps to a value, never an error.
package classify

import (
	"strings"

	"github.com/complyware/retention-engine/engine/domain"
)

// riskRule pairs a risk tier with the keywords that trigger it. Rules are
// evaluated top-down; the first match wins, so a HIGH keyword anywhere in the
// text short-circuits regardless of co-occurring MEDIUM keywords.
type riskRule struct {
	level    domain.RiskLevel
	keywords []string
}

var riskRules = []riskRule{
	{domain.RiskHigh, []string{"delete", "erasure", "breach", "penalty", "fine", "violation", "unlawful"}},
	{domain.RiskMedium, []string{"consent", "access", "rectification", "portability", "processing"}},
}

// RiskFor classifies rule text into a risk tier. Both title and content are
// scanned; LOW is the fallback when no keyword set matches.
func RiskFor(title, content string) domain.RiskLevel {
	text := strings.ToLower(title) + " " + strings.ToLower(content)
	for _, r := range riskRules {
		if containsAny(text, r.keywords) {
			return r.level
		}
	}
	return domain.RiskLow
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
