package domain

import "context"

// AnalysisRequest captures one What-If analysis run originating from the CLI.
type AnalysisRequest struct {
	Context context.Context

	// WhatIfText is the raw change description to analyze.
	WhatIfText string

	// GateMode enables risk assessment and the pass/fail verdict.
	GateMode bool

	// Contextual inputs forwarded to the reasoner in gate mode.
	DiffText      string
	BicepText     string
	PRTitle       string
	PRDescription string

	ModelOverride string

	// PatternsFile is an additional noise pattern source appended after
	// the built-in set.
	PatternsFile string

	// AgentsDir holds custom risk agent definitions.
	AgentsDir string

	// SkipBuckets disables the named buckets for this run.
	SkipBuckets []string

	// Thresholds overrides per-bucket gate thresholds.
	Thresholds map[string]RiskLevel

	// FuzzyThreshold overrides the similarity ratio for fuzzy patterns.
	// Zero means "use the configured default".
	FuzzyThreshold float64

	Debug bool
}

// HasPRMetadata reports whether intent analysis has anything to work with.
func (r AnalysisRequest) HasPRMetadata() bool {
	return r.PRTitle != "" || r.PRDescription != ""
}

// AnalysisService exposes the use-case boundary for running an analysis.
type AnalysisService interface {
	Run(AnalysisRequest) (AnalysisResult, error)
}
