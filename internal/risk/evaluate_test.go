package risk

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/whatif-advisor/internal/buckets"
	"github.com/doeshing/whatif-advisor/internal/domain"
)

func frozenRegistry(t *testing.T, custom ...domain.RiskBucket) *buckets.Registry {
	t.Helper()
	r := buckets.NewRegistry()
	for _, b := range custom {
		if err := r.Register(b); err != nil {
			t.Fatalf("Register error: %v", err)
		}
	}
	r.Freeze()
	return r
}

func assessment(levels map[string]domain.RiskLevel) map[string]domain.BucketAssessment {
	out := make(map[string]domain.BucketAssessment, len(levels))
	for id, level := range levels {
		out[id] = domain.BucketAssessment{RiskLevel: level, Reasoning: "because"}
	}
	return out
}

func TestEvaluateFailsOnEqualAndAbove(t *testing.T) {
	registry := frozenRegistry(t)
	enabled := []string{"drift", "operations"}

	// Built-in default threshold is high; high meets it and fails.
	outcome := Evaluate(assessment(map[string]domain.RiskLevel{
		"drift":      domain.RiskHigh,
		"operations": domain.RiskMedium,
	}), enabled, nil, registry)

	if outcome.Safe {
		t.Fatal("high risk at high threshold must fail")
	}
	if diff := cmp.Diff([]string{"drift"}, outcome.FailedBuckets); diff != "" {
		t.Fatalf("failed buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateThresholdMonotonicity(t *testing.T) {
	registry := frozenRegistry(t)
	enabled := []string{"drift"}
	report := assessment(map[string]domain.RiskLevel{"drift": domain.RiskMedium})

	for threshold, wantSafe := range map[domain.RiskLevel]bool{
		domain.RiskLow:    false,
		domain.RiskMedium: false,
		domain.RiskHigh:   true,
	} {
		outcome := Evaluate(report, enabled, map[string]domain.RiskLevel{"drift": threshold}, registry)
		if outcome.Safe != wantSafe {
			t.Errorf("medium risk at %s threshold: safe = %v, want %v", threshold, outcome.Safe, wantSafe)
		}
	}
}

func TestEvaluateExplicitOverrideBeatsBucketDefault(t *testing.T) {
	custom := domain.RiskBucket{ID: "sfi", DisplayName: "SFI", DefaultThreshold: domain.RiskLow, Custom: true}
	registry := frozenRegistry(t, custom)
	report := assessment(map[string]domain.RiskLevel{"sfi": domain.RiskMedium})

	// Bucket default (low) would fail; the explicit high override passes it.
	outcome := Evaluate(report, []string{"sfi"}, map[string]domain.RiskLevel{"sfi": domain.RiskHigh}, registry)
	if !outcome.Safe {
		t.Fatal("explicit override should win over the bucket default")
	}

	outcome = Evaluate(report, []string{"sfi"}, nil, registry)
	if outcome.Safe {
		t.Fatal("bucket default should apply without an override")
	}
}

func TestEvaluateAbsentBucketIsSkipped(t *testing.T) {
	registry := frozenRegistry(t)
	report := assessment(map[string]domain.RiskLevel{"drift": domain.RiskLow})

	outcome := Evaluate(report, []string{"drift", "intent"}, nil, registry)
	if !outcome.Safe || len(outcome.FailedBuckets) != 0 {
		t.Fatalf("absent bucket must be skipped, got %+v", outcome)
	}
}

func TestEvaluateEmptyAssessmentSynthesizesDefaultSafe(t *testing.T) {
	registry := frozenRegistry(t)
	enabled := []string{"drift", "operations"}

	outcome := Evaluate(nil, enabled, nil, registry)
	if !outcome.Safe {
		t.Fatal("empty assessment must be safe")
	}
	for _, id := range enabled {
		entry, ok := outcome.Assessment[id]
		if !ok {
			t.Fatalf("missing synthesized entry for %s", id)
		}
		if entry.RiskLevel != domain.RiskLow || entry.Reasoning != "no risk assessment provided" {
			t.Fatalf("unexpected synthesized entry for %s: %+v", id, entry)
		}
		if entry.Concerns == nil {
			t.Fatalf("synthesized concerns for %s should be empty, not absent", id)
		}
	}
}

func TestEvaluateNormalizesUnknownLevels(t *testing.T) {
	registry := frozenRegistry(t)
	report := assessment(map[string]domain.RiskLevel{"drift": domain.RiskLevel("catastrophic")})

	// Unknown levels normalize to low, which passes the high threshold.
	outcome := Evaluate(report, []string{"drift"}, nil, registry)
	if !outcome.Safe {
		t.Fatalf("unknown level should normalize to low, got %+v", outcome)
	}
}
