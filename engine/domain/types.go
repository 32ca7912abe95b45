// Package domain defines the core entities of the compliance engine and the
// validation gate applied at ingestion entry points.
package domain

import (
	"strings"
	"time"
)

// Framework is a legal regime governing data retention.
type Framework string

const (
	FrameworkPDPA Framework = "PDPA"
	FrameworkGDPR Framework = "GDPR"
)

// ValidFrameworks is the set of supported frameworks.
var ValidFrameworks = map[Framework]bool{
	FrameworkPDPA: true,
	FrameworkGDPR: true,
}

// Jurisdiction is the country/region pair a framework applies to.
type Jurisdiction struct {
	Country string
	Region  string
}

// jurisdictions maps each framework to its fixed jurisdiction metadata.
var jurisdictions = map[Framework]Jurisdiction{
	FrameworkPDPA: {Country: "Singapore", Region: "APAC"},
	FrameworkGDPR: {Country: "European Union", Region: "EU"},
}

// JurisdictionFor returns the jurisdiction metadata for a framework.
func JurisdictionFor(fw Framework) Jurisdiction {
	return jurisdictions[fw]
}

// IDPrefix returns the compliance ID prefix for a framework, e.g. "pdpa_".
func (f Framework) IDPrefix() string {
	return strings.ToLower(string(f)) + "_"
}

// RiskLevel is the coarse severity classification of a compliance rule.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// RawRule is one legal provision as it appears in a jurisdiction rule file.
type RawRule struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	AppliesTo []string `json:"applies_to,omitempty"`
}

// CompliancePattern is the canonical, embedded, indexed representation of one
// legal provision. Once indexed it is immutable except for full-overwrite
// re-ingestion keyed by ComplianceID.
type CompliancePattern struct {
	ComplianceID string    `json:"compliance_id"`
	Framework    Framework `json:"framework"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Category     string    `json:"category"`
	AppliesTo    []string  `json:"applies_to"`
	Country      string    `json:"country"`
	Region       string    `json:"region"`

	RiskLevel          RiskLevel `json:"risk_level"`
	DataTypes          []string  `json:"data_types"`
	ViolationPatterns  string    `json:"violation_patterns"`
	RemediationActions string    `json:"remediation_actions"`

	// Embedding is never empty for an indexed pattern; patterns with an
	// empty embedding are discarded before they reach the store.
	Embedding []float32 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
