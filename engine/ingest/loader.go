package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/complyware/retention-engine/engine/domain"
	"github.com/complyware/retention-engine/pkg/fn"
)

// Fixed rule-file naming convention: one file per jurisdiction under the
// rules directory.
const (
	PDPARulesFile = "pdpa_rules.json"
	GDPRRulesFile = "gdpr_rules.json"
)

// DefaultSources returns the standard jurisdiction sources under dir.
func DefaultSources(dir string) []Source {
	return []Source{
		{Framework: domain.FrameworkPDPA, Path: filepath.Join(dir, PDPARulesFile)},
		{Framework: domain.FrameworkGDPR, Path: filepath.Join(dir, GDPRRulesFile)},
	}
}

// LoadRuleFile parses a jurisdiction rule file: a JSON array of raw rules.
// Rules without an id are dropped. Callers treat an error as "zero records
// from this source", never as a pipeline abort.
func LoadRuleFile(path string) ([]domain.RawRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	var rules []domain.RawRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("ingest: parse %s: %w", path, err)
	}

	return fn.Filter(rules, func(r domain.RawRule) bool {
		return strings.TrimSpace(r.ID) != ""
	}), nil
}
