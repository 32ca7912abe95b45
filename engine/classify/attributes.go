package classify

import "strings"

// DefaultDataType tags patterns whose content matches no data-type category.
const DefaultDataType = "personal_data"

// dataTypeRules maps data-type tags to their trigger keywords. Output order
// follows this table (insertion order), not alphabetical order.
var dataTypeRules = []struct {
	tag      string
	keywords []string
}{
	{"personal_data", []string{"personal data", "personal information", "personally identifiable"}},
	{"sensitive_data", []string{"sensitive", "special categor"}},
	{"customer_data", []string{"customer"}},
	{"financial_data", []string{"financial", "payment", "credit card", "bank"}},
	{"health_data", []string{"health", "medical"}},
	{"biometric_data", []string{"biometric", "fingerprint", "facial recognition"}},
	{"location_data", []string{"location", "geolocation", "gps"}},
}

// DataTypes returns the data-type tags whose keywords appear in content.
// The result is never empty: with no matches it is exactly [personal_data].
func DataTypes(content string) []string {
	text := strings.ToLower(content)
	var tags []string
	for _, r := range dataTypeRules {
		if containsAny(text, r.keywords) {
			tags = append(tags, r.tag)
		}
	}
	if len(tags) == 0 {
		return []string{DefaultDataType}
	}
	return tags
}

// matchRule pairs trigger keywords with a canned description. Evaluated
// top-down, first match wins; only one description is ever reported even when
// several categories have textual cues.
type matchRule struct {
	keywords    []string
	description string
}

var violationRules = []matchRule{
	{[]string{"retention"}, "Records retained beyond the permitted retention period"},
	{[]string{"consent"}, "Personal data processed without valid consent"},
	{[]string{"delete", "erasure"}, "Failure to delete or erase personal data once the retention basis has lapsed"},
}

const genericViolation = "Processing of personal data contrary to the cited provision"

// ViolationPattern returns the single violation description for content,
// chosen by the documented precedence order (retention, consent,
// delete/erasure), or a generic fallback.
func ViolationPattern(content string) string {
	return firstMatch(content, violationRules, genericViolation)
}

var remediationRules = []matchRule{
	{[]string{"delete", "erasure"}, "Securely delete or anonymise the affected records and log proof of erasure"},
	{[]string{"consent"}, "Obtain and record valid consent before any further processing"},
	{[]string{"access"}, "Fulfil the outstanding access request within the statutory deadline"},
	{[]string{"retention"}, "Review retention schedules and purge records past their permitted period"},
}

const genericRemediation = "Review processing activities against the cited provision and document corrective action"

// RemediationAction returns the single remediation description for content,
// chosen by precedence (delete/erasure, consent, access, retention), or a
// generic fallback.
func RemediationAction(content string) string {
	return firstMatch(content, remediationRules, genericRemediation)
}

func firstMatch(content string, rules []matchRule, fallback string) string {
	text := strings.ToLower(content)
	for _, r := range rules {
		if containsAny(text, r.keywords) {
			return r.description
		}
	}
	return fallback
}
