// Package domain defines core business entities for whatif-advisor.
//
// The domain layer is independent of infrastructure concerns: these types
// carry the parsed reasoner output and the gate verdict through the
// pipeline without knowing where either came from.
package domain

// ResourceFinding is one reported change from the reasoner: a resource,
// what happens to it, and how confident the reasoner is that the change
// is real rather than What-If noise.
type ResourceFinding struct {
	ResourceName     string          `json:"resource_name"`
	ResourceType     string          `json:"resource_type"`
	Action           string          `json:"action"`
	Summary          string          `json:"summary"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	ConfidenceReason string          `json:"confidence_reason,omitempty"`

	// Set only in gate mode.
	RiskLevel  RiskLevel `json:"risk_level,omitempty"`
	RiskReason string    `json:"risk_reason,omitempty"`
}

// BucketAssessment is the reasoner's evaluation of a single risk bucket.
type BucketAssessment struct {
	RiskLevel      RiskLevel `json:"risk_level"`
	Concerns       []string  `json:"concerns"`
	ConcernSummary string    `json:"concern_summary,omitempty"`
	Reasoning      string    `json:"reasoning"`
}

// Verdict is the reasoner's overall safety call. The gate decision itself
// is always recomputed locally by the risk evaluator; the verdict is kept
// for its reasoning text.
type Verdict struct {
	Safe              bool      `json:"safe"`
	HighestRiskBucket string    `json:"highest_risk_bucket"`
	OverallRiskLevel  RiskLevel `json:"overall_risk_level"`
	Reasoning         string    `json:"reasoning"`
}

// AnalysisResult is the structured output of a run, handed unchanged to
// rendering and gating collaborators.
type AnalysisResult struct {
	Resources      []ResourceFinding `json:"resources"`
	Noise          []ResourceFinding `json:"noise,omitempty"`
	OverallSummary string            `json:"overall_summary"`

	RiskAssessment map[string]BucketAssessment `json:"risk_assessment,omitempty"`
	Verdict        *Verdict                    `json:"verdict,omitempty"`

	// Gate outcome, computed by the risk evaluator.
	Safe          bool     `json:"safe"`
	FailedBuckets []string `json:"failed_buckets,omitempty"`

	NoiseLinesRemoved int      `json:"noise_lines_removed"`
	Reclassified      int      `json:"reclassified,omitempty"`
	Reanalyzed        bool     `json:"reanalyzed,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}
