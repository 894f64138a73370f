// Package risk compares reported bucket risk levels against their
// thresholds and produces the gate outcome.
package risk

import (
	"github.com/doeshing/whatif-advisor/internal/buckets"
	"github.com/doeshing/whatif-advisor/internal/domain"
)

// GlobalFallbackThreshold applies when neither an explicit override nor a
// bucket default resolves.
const GlobalFallbackThreshold = domain.RiskHigh

// Outcome is the result of evaluating every enabled bucket.
type Outcome struct {
	Safe          bool
	FailedBuckets []string
	// Assessment echoes the evaluated entries; when the reasoner
	// provided none it holds the synthesized default-safe entries.
	Assessment map[string]domain.BucketAssessment
}

// Evaluate checks each enabled bucket's reported risk level against its
// effective threshold. A bucket fails when its level meets or exceeds the
// threshold ("at least this risky"). Optional buckets absent from the
// assessment are skipped silently. A missing assessment altogether yields
// a default-safe outcome rather than an error, so a malformed or partial
// reasoner response never blocks the pipeline on its own.
//
// The assessment is expected to contain only trusted findings' judgments;
// discarded noise never reaches this point.
func Evaluate(
	assessment map[string]domain.BucketAssessment,
	enabledIDs []string,
	thresholds map[string]domain.RiskLevel,
	registry *buckets.Registry,
) Outcome {
	if len(assessment) == 0 {
		synthesized := make(map[string]domain.BucketAssessment, len(enabledIDs))
		for _, id := range enabledIDs {
			synthesized[id] = domain.BucketAssessment{
				RiskLevel: domain.RiskLow,
				Concerns:  []string{},
				Reasoning: "no risk assessment provided",
			}
		}
		return Outcome{Safe: true, Assessment: synthesized}
	}

	var failed []string
	for _, id := range enabledIDs {
		entry, present := assessment[id]
		if !present {
			// Absent buckets are skipped: optional ones legitimately so,
			// required ones were already checked at parse time.
			continue
		}
		level := domain.NormalizeRiskLevel(string(entry.RiskLevel))
		if level.Exceeds(effectiveThreshold(id, thresholds, registry)) {
			failed = append(failed, id)
		}
	}

	return Outcome{
		Safe:          len(failed) == 0,
		FailedBuckets: failed,
		Assessment:    assessment,
	}
}

// effectiveThreshold resolves a bucket's threshold: explicit override,
// else the bucket's own default, else the global fallback.
func effectiveThreshold(id string, thresholds map[string]domain.RiskLevel, registry *buckets.Registry) domain.RiskLevel {
	if t, ok := thresholds[id]; ok && t != "" {
		return t
	}
	if registry != nil {
		if bucket, ok := registry.Resolve(id); ok && bucket.DefaultThreshold != "" {
			return bucket.DefaultThreshold
		}
	}
	return GlobalFallbackThreshold
}
