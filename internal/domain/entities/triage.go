package entities

import (
	"fmt"
	"strings"
)

// RiskCategory is the coarse triage bucket of a report.
type RiskCategory string

const (
	RiskCategoryHigh   RiskCategory = "HIGH"
	RiskCategoryMedium RiskCategory = "MEDIUM"
	RiskCategoryLow    RiskCategory = "LOW"
)

// RiskCategories lists every category from most to least urgent.
var RiskCategories = []RiskCategory{RiskCategoryHigh, RiskCategoryMedium, RiskCategoryLow}

// Weight maps the category to its queue rank: HIGH 3, MEDIUM 2, LOW 1.
func (r RiskCategory) Weight() int {
	switch r {
	case RiskCategoryHigh:
		return 3
	case RiskCategoryMedium:
		return 2
	case RiskCategoryLow:
		return 1
	}
	return 0
}

// IsValid reports whether r is HIGH, MEDIUM or LOW.
func (r RiskCategory) IsValid() bool {
	return r.Weight() > 0
}

// ParseRiskCategory parses a category case-insensitively.
func ParseRiskCategory(value string) (RiskCategory, error) {
	r := RiskCategory(strings.ToUpper(strings.TrimSpace(value)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid risk category: %q", value)
	}
	return r, nil
}

// Severity score bounds.
const (
	MinSeverityScore = 1
	MaxSeverityScore = 10
)

// ClassificationSource records which path produced a ClassificationResult.
type ClassificationSource string

const (
	ClassificationSourceAI       ClassificationSource = "ai"
	ClassificationSourceFallback ClassificationSource = "fallback"
)

// ClassificationResult is the transient output of the triage classifier.
type ClassificationResult struct {
	SeverityScore int                  `json:"severityScore"`
	RiskCategory  RiskCategory         `json:"riskCategory"`
	Rationale     string               `json:"reasoning"`
	Source        ClassificationSource `json:"source,omitempty"`
}

// TriageRequest is what the classifier sends to the reasoning service.
type TriageRequest struct {
	Symptoms          string   `json:"symptoms"`
	Age               int      `json:"age"`
	ChronicConditions []string `json:"chronicConditions"`
}

// SymptomOptions are the symptom tags offered on the request form.
var SymptomOptions = []string{
	"Fever", "Chest Pain", "Headache", "Dizziness", "Shortness of Breath",
	"Cough", "Nausea", "Fatigue", "Muscle Pain", "Sore Throat",
}

// ChronicConditionOptions are the conditions offered on the request form.
// "None" is a placeholder and is dropped on submission.
var ChronicConditionOptions = []string{
	"Diabetes", "Heart Disease", "Hypertension", "Asthma", "Chronic Kidney Disease", "None",
}
