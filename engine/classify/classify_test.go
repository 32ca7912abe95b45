package classify

import (
	"strings"
	"testing"

	"github.com/complyware/retention-engine/engine/domain"
)

func TestRiskFor(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    domain.RiskLevel
	}{
		{"high from content", "Retention", "Data must be deleted after expiry", domain.RiskHigh},
		{"high from title", "Breach notification", "Notify the commission without undue delay", domain.RiskHigh},
		{"medium consent", "Consent", "Processing requires prior consent", domain.RiskMedium},
		{"medium access", "Subject rights", "Individuals may request access to their records", domain.RiskMedium},
		{"low fallback", "Definitions", "Terms used in this act", domain.RiskLow},
		{"case insensitive", "PENALTY PROVISIONS", "FINES MAY APPLY", domain.RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RiskFor(tt.title, tt.content); got != tt.want {
				t.Errorf("RiskFor(%q, %q) = %s, want %s", tt.title, tt.content, got, tt.want)
			}
		})
	}
}

func TestRiskFor_HighBeatsMedium(t *testing.T) {
	// Content carrying both a MEDIUM and a HIGH keyword must classify HIGH.
	got := RiskFor("", "consent is required and any breach must be reported")
	if got != domain.RiskHigh {
		t.Fatalf("got %s, want HIGH", got)
	}
}

func TestDataTypes_Default(t *testing.T) {
	got := DataTypes("no recognisable keywords here")
	if len(got) != 1 || got[0] == "" {
		t.Fatalf("DataTypes = %v", got)
	}
	if got[0] != DefaultDataType {
		t.Fatalf("default = %q, want %q", got[0], DefaultDataType)
	}
}

func TestDataTypes_NeverEmpty(t *testing.T) {
	for _, content := range []string{"", "xyz", "personal data and health records"} {
		if got := DataTypes(content); len(got) == 0 {
			t.Errorf("DataTypes(%q) returned empty set", content)
		}
	}
}

func TestDataTypes_InsertionOrder(t *testing.T) {
	// Health appears before biometric in the content but after it in neither:
	// output must follow the fixed category order, not text order.
	got := DataTypes("biometric identifiers and health data of customers")
	want := []string{"customer_data", "health_data", "biometric_data"}
	if len(got) != len(want) {
		t.Fatalf("DataTypes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DataTypes = %v, want %v", got, want)
		}
	}
}

func TestViolationPattern_Precedence(t *testing.T) {
	// Retention outranks consent when both cues are present.
	got := ViolationPattern("retention periods apply and consent is needed")
	if !strings.Contains(strings.ToLower(got), "retention") {
		t.Errorf("expected retention-branch description, got %q", got)
	}

	consent := ViolationPattern("processing requires consent")
	if !strings.Contains(strings.ToLower(consent), "consent") {
		t.Errorf("expected consent-branch description, got %q", consent)
	}

	fallback := ViolationPattern("definitions and scope")
	if fallback != genericViolation {
		t.Errorf("expected generic fallback, got %q", fallback)
	}
}

func TestRemediationAction_Precedence(t *testing.T) {
	// Delete outranks retention when both cues are present.
	got := RemediationAction("data must be deleted once retention expires")
	if !strings.Contains(strings.ToLower(got), "delete") {
		t.Errorf("expected delete-branch remediation, got %q", got)
	}

	access := RemediationAction("subjects may access their data")
	if !strings.Contains(strings.ToLower(access), "access") {
		t.Errorf("expected access-branch remediation, got %q", access)
	}

	fallback := RemediationAction("definitions and scope")
	if fallback != genericRemediation {
		t.Errorf("expected generic fallback, got %q", fallback)
	}
}

func TestExtractorsReturnSingleDescription(t *testing.T) {
	// Content with cues for every branch still yields exactly one sentence.
	content := "retention, consent, access, and deletion obligations"
	if v := ViolationPattern(content); v == "" || strings.Contains(v, ";") {
		t.Errorf("unexpected violation description %q", v)
	}
	if r := RemediationAction(content); r == "" || strings.Contains(r, ";") {
		t.Errorf("unexpected remediation description %q", r)
	}
}
