package domain

import "strings"

// ValidateRawRule checks a raw rule before it enters the ingestion pipeline.
func ValidateRawRule(rule RawRule) error {
	if strings.TrimSpace(rule.ID) == "" {
		return NewValidationError("id", rule.ID, ErrEmptyID)
	}
	if strings.TrimSpace(rule.Title) == "" {
		return NewValidationError("title", rule.Title, ErrEmptyTitle)
	}
	if strings.TrimSpace(rule.Content) == "" {
		return NewValidationError("content", rule.Content, ErrEmptyContent)
	}
	if strings.TrimSpace(rule.Category) == "" {
		return NewValidationError("category", rule.Category, ErrEmptyCategory)
	}
	return nil
}

// ValidateFramework checks that fw is a supported framework.
func ValidateFramework(fw Framework) error {
	if !ValidFrameworks[fw] {
		return NewValidationError("framework", string(fw), ErrUnknownFramework)
	}
	return nil
}
