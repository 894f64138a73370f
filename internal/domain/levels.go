package domain

import "strings"

// RiskLevel is the ordinal risk scale shared by bucket assessments and
// gate thresholds.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var riskOrder = map[RiskLevel]int{
	RiskLow:    0,
	RiskMedium: 1,
	RiskHigh:   2,
}

// NormalizeRiskLevel maps a raw reasoner string onto the ordinal scale.
// Unrecognized values normalize to low rather than failing the run.
func NormalizeRiskLevel(value string) RiskLevel {
	level := RiskLevel(strings.ToLower(value))
	if _, ok := riskOrder[level]; ok {
		return level
	}
	return RiskLow
}

// Exceeds reports whether the level meets or passes the threshold.
// Equality counts: a high risk fails a high threshold.
func (l RiskLevel) Exceeds(threshold RiskLevel) bool {
	return riskOrder[l] >= riskOrder[threshold]
}

// ValidRiskLevel reports whether value is one of the three ordinal levels.
func ValidRiskLevel(value string) bool {
	_, ok := riskOrder[RiskLevel(strings.ToLower(value))]
	return ok
}

// ConfidenceLevel classifies a finding as signal or noise, independent of
// its risk severity.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceNoise  ConfidenceLevel = "noise"
)

// NormalizeConfidence maps a raw reasoner string onto the confidence scale.
// Missing or unrecognized values default to medium.
func NormalizeConfidence(value string) ConfidenceLevel {
	switch ConfidenceLevel(strings.ToLower(value)) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	case ConfidenceNoise:
		return ConfidenceNoise
	default:
		return ConfidenceMedium
	}
}

// Trusted reports whether a finding with this confidence participates in
// gating. Low and noise findings are discarded from risk evaluation.
func (c ConfidenceLevel) Trusted() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium
}

