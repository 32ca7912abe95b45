package domain

import (
	"errors"
	"testing"
)

func validRule() RawRule {
	return RawRule{
		ID:        "PDPA_001",
		Title:     "Data Retention Requirements",
		Content:   "Personal data must be deleted after 7 years",
		Category:  "data_retention",
		AppliesTo: []string{"customer_records"},
	}
}

func TestValidateRawRule_Valid(t *testing.T) {
	if err := ValidateRawRule(validRule()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRawRule_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawRule)
		want   error
	}{
		{"empty id", func(r *RawRule) { r.ID = "" }, ErrEmptyID},
		{"blank id", func(r *RawRule) { r.ID = "  " }, ErrEmptyID},
		{"empty title", func(r *RawRule) { r.Title = "" }, ErrEmptyTitle},
		{"empty content", func(r *RawRule) { r.Content = "" }, ErrEmptyContent},
		{"empty category", func(r *RawRule) { r.Category = "" }, ErrEmptyCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.mutate(&rule)
			err := ValidateRawRule(rule)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateFramework(t *testing.T) {
	if err := ValidateFramework(FrameworkPDPA); err != nil {
		t.Errorf("PDPA should be valid: %v", err)
	}
	if err := ValidateFramework(FrameworkGDPR); err != nil {
		t.Errorf("GDPR should be valid: %v", err)
	}
	if err := ValidateFramework(Framework("CCPA")); !errors.Is(err, ErrUnknownFramework) {
		t.Errorf("expected ErrUnknownFramework, got %v", err)
	}
}

func TestJurisdictionFor(t *testing.T) {
	pdpa := JurisdictionFor(FrameworkPDPA)
	if pdpa.Country != "Singapore" || pdpa.Region != "APAC" {
		t.Errorf("PDPA jurisdiction = %+v", pdpa)
	}
	gdpr := JurisdictionFor(FrameworkGDPR)
	if gdpr.Country != "European Union" || gdpr.Region != "EU" {
		t.Errorf("GDPR jurisdiction = %+v", gdpr)
	}
}

func TestIDPrefix(t *testing.T) {
	if got := FrameworkPDPA.IDPrefix(); got != "pdpa_" {
		t.Errorf("PDPA prefix = %q", got)
	}
	if got := FrameworkGDPR.IDPrefix(); got != "gdpr_" {
		t.Errorf("GDPR prefix = %q", got)
	}
}
