package analyze

import (
	"context"
	"strings"
	"testing"

	"github.com/doeshing/whatif-advisor/internal/domain"
	"github.com/doeshing/whatif-advisor/internal/ports"
)

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s *stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubFactory struct {
	reasoner ports.Reasoner
}

func (s *stubFactory) ForModel(domain.ModelDefinition) (ports.Reasoner, error) {
	return s.reasoner, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

func testConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "stub", TimeoutSeconds: 5},
		Models: []domain.ModelDefinition{
			{Name: "stub", Endpoint: "http://localhost", ModelID: "stub-1"},
		},
		Filter: domain.FilterSettings{FuzzyThreshold: 0.8},
	}
}

func newService(reasoner ports.Reasoner) *Service {
	return &Service{
		ConfigProvider:  &stubConfigProvider{cfg: testConfig()},
		ReasonerFactory: &stubFactory{reasoner: reasoner},
		Logger:          nopLogger{},
	}
}

// gateResponseWithNoise reports one trusted and one noise finding so the
// first gate round leaves a discarded partition behind.
const gateResponseWithNoise = `{
  "resources": [
    {
      "resource_name": "vnet1",
      "resource_type": "Microsoft.Network/virtualNetworks",
      "action": "Create",
      "summary": "New VNet",
      "risk_level": "low",
      "confidence_level": "high",
      "confidence_reason": "explicit creation"
    },
    {
      "resource_name": "acct",
      "resource_type": "Microsoft.Storage/storageAccounts",
      "action": "Modify",
      "summary": "etag changed",
      "risk_level": "low",
      "confidence_level": "low",
      "confidence_reason": "metadata only"
    }
  ],
  "overall_summary": "1 create, 1 noise",
  "risk_assessment": {
    "drift": {"risk_level": "medium", "concerns": ["etag mismatch"], "reasoning": "possible drift"},
    "operations": {"risk_level": "low", "concerns": [], "reasoning": "routine"}
  },
  "verdict": {"safe": true, "highest_risk_bucket": "drift", "overall_risk_level": "medium", "reasoning": "ok"}
}`

const gateResponseClean = `{
  "resources": [
    {
      "resource_name": "vnet1",
      "resource_type": "Microsoft.Network/virtualNetworks",
      "action": "Create",
      "summary": "New VNet",
      "risk_level": "low",
      "confidence_level": "high",
      "confidence_reason": "explicit creation"
    }
  ],
  "overall_summary": "1 create",
  "risk_assessment": {
    "drift": {"risk_level": "low", "concerns": [], "reasoning": "diff matches"},
    "operations": {"risk_level": "low", "concerns": [], "reasoning": "routine"}
  },
  "verdict": {"safe": true, "highest_risk_bucket": "none", "overall_risk_level": "low", "reasoning": "ok"}
}`

func TestRunStandardModeSingleCall(t *testing.T) {
	reasoner := &stubReasoner{responses: []string{standardResponse}}
	svc := newService(reasoner)

	result, err := svc.Run(domain.AnalysisRequest{WhatIfText: "  ~ Microsoft.Storage/storageAccounts/acct\n"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(reasoner.requests) != 1 {
		t.Fatalf("reasoner calls = %d, want 1", len(reasoner.requests))
	}
	if !result.Safe {
		t.Fatal("standard mode is always safe")
	}
	if len(result.Resources) != 1 || result.Resources[0].ResourceName != "mystorage" {
		t.Fatalf("unexpected resources: %+v", result.Resources)
	}
	if strings.Contains(reasoner.requests[0].System, "risk_assessment") {
		t.Fatal("standard mode must not send the gate schema")
	}
}

func TestRunGateModeCleanRunIsSingleCall(t *testing.T) {
	reasoner := &stubReasoner{responses: []string{gateResponseClean}}
	svc := newService(reasoner)

	result, err := svc.Run(domain.AnalysisRequest{WhatIfText: "whatif", GateMode: true, DiffText: "diff"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(reasoner.requests) != 1 {
		t.Fatalf("reasoner calls = %d, want 1", len(reasoner.requests))
	}
	if result.Reanalyzed {
		t.Fatal("nothing was discarded, no reanalysis expected")
	}
	if !result.Safe || len(result.FailedBuckets) != 0 {
		t.Fatalf("expected safe outcome, got %+v", result)
	}
}

func TestRunGateModeDiscardTriggersExactlyOneReanalysis(t *testing.T) {
	reasoner := &stubReasoner{responses: []string{gateResponseWithNoise, gateResponseClean}}
	svc := newService(reasoner)

	result, err := svc.Run(domain.AnalysisRequest{WhatIfText: "whatif", GateMode: true, DiffText: "diff"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(reasoner.requests) != 2 {
		t.Fatalf("reasoner calls = %d, want 2", len(reasoner.requests))
	}
	if !result.Reanalyzed {
		t.Fatal("result should be marked reanalyzed")
	}
	if len(result.Resources) != 1 || len(result.Noise) != 1 {
		t.Fatalf("partition: %d trusted / %d noise, want 1/1", len(result.Resources), len(result.Noise))
	}
	// The second call's assessment replaces the first.
	if result.RiskAssessment["drift"].RiskLevel != domain.RiskLow {
		t.Fatalf("assessment not replaced: %+v", result.RiskAssessment["drift"])
	}
	if !strings.Contains(reasoner.requests[1].User, "noise findings already removed") {
		t.Fatal("second call must use the reduced document")
	}
}

func TestRunGateModeReanalysisFailureFallsBack(t *testing.T) {
	reasoner := &stubReasoner{responses: []string{gateResponseWithNoise, "garbage"}}
	svc := newService(reasoner)

	result, err := svc.Run(domain.AnalysisRequest{WhatIfText: "whatif", GateMode: true, DiffText: "diff"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(reasoner.requests) != 2 {
		t.Fatalf("reasoner calls = %d, want 2", len(reasoner.requests))
	}
	if result.Reanalyzed {
		t.Fatal("failed reanalysis must not mark the result")
	}
	// First call's assessment is retained.
	if result.RiskAssessment["drift"].RiskLevel != domain.RiskMedium {
		t.Fatalf("original assessment lost: %+v", result.RiskAssessment["drift"])
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "reanalysis response invalid") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fallback warning, got %v", result.Warnings)
	}
}

func TestRunGateModeThresholdFailure(t *testing.T) {
	reasoner := &stubReasoner{responses: []string{gateResponseClean, gateResponseClean}}
	svc := newService(reasoner)

	result, err := svc.Run(domain.AnalysisRequest{
		WhatIfText: "whatif",
		GateMode:   true,
		DiffText:   "diff",
		Thresholds: map[string]domain.RiskLevel{"operations": domain.RiskLow},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if result.Safe {
		t.Fatal("low threshold must fail a low-risk bucket")
	}
	if len(result.FailedBuckets) != 1 || result.FailedBuckets[0] != "operations" {
		t.Fatalf("failed buckets = %v", result.FailedBuckets)
	}
}

func TestRunEmptyBucketSetFailsBeforeReasonerCall(t *testing.T) {
	reasoner := &stubReasoner{responses: []string{gateResponseClean}}
	svc := newService(reasoner)

	_, err := svc.Run(domain.AnalysisRequest{
		WhatIfText:  "whatif",
		GateMode:    true,
		SkipBuckets: []string{"drift", "operations"},
	})
	if err == nil || !strings.Contains(err.Error(), "no risk buckets enabled") {
		t.Fatalf("error = %v, want empty bucket set error", err)
	}
	if len(reasoner.requests) != 0 {
		t.Fatalf("reasoner calls = %d, want 0", len(reasoner.requests))
	}
}

func TestRunFirstCallParseFailureIsFatal(t *testing.T) {
	reasoner := &stubReasoner{responses: []string{"not json"}}
	svc := newService(reasoner)

	_, err := svc.Run(domain.AnalysisRequest{WhatIfText: "whatif"})
	if err == nil {
		t.Fatal("expected error for unparsable first response")
	}
}

func TestRunUnknownModelOverride(t *testing.T) {
	svc := newService(&stubReasoner{responses: []string{standardResponse}})

	_, err := svc.Run(domain.AnalysisRequest{WhatIfText: "whatif", ModelOverride: "nope"})
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("error = %v, want unknown model error", err)
	}
}

func TestRunAppliesBuiltinNoiseFilter(t *testing.T) {
	reasoner := &stubReasoner{responses: []string{standardResponse}}
	svc := newService(reasoner)

	whatIf := "  ~ Microsoft.Storage/storageAccounts/acct\n" +
		"    ~ properties.etag: \"a\" => \"b\"\n" +
		"    ~ properties.accessTier: \"Hot\" => \"Cool\"\n"
	result, err := svc.Run(domain.AnalysisRequest{WhatIfText: whatIf})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if result.NoiseLinesRemoved != 1 {
		t.Fatalf("noise lines removed = %d, want 1", result.NoiseLinesRemoved)
	}
	if strings.Contains(reasoner.requests[0].User, "etag") {
		t.Fatal("etag line must be filtered before the reasoner sees it")
	}
	if !strings.Contains(reasoner.requests[0].User, "accessTier") {
		t.Fatal("real change must survive filtering")
	}
}

func TestRunReclassifiesResourcePatternMatches(t *testing.T) {
	// networkWatchers is a built-in resource: pattern; the reasoner reports
	// it with high confidence and the pipeline demotes it afterwards.
	raw := `{
  "resources": [
    {
      "resource_name": "nw",
      "resource_type": "Microsoft.Network/networkWatchers",
      "action": "Modify",
      "summary": "platform churn",
      "confidence_level": "high"
    }
  ],
  "overall_summary": "1 change"
}`
	reasoner := &stubReasoner{responses: []string{raw}}
	svc := newService(reasoner)

	result, err := svc.Run(domain.AnalysisRequest{WhatIfText: "whatif"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if result.Reclassified != 1 {
		t.Fatalf("reclassified = %d, want 1", result.Reclassified)
	}
	if len(result.Resources) != 0 || len(result.Noise) != 1 {
		t.Fatalf("partition: %d trusted / %d noise, want 0/1", len(result.Resources), len(result.Noise))
	}
	if result.Noise[0].ConfidenceReason != "Matched resource noise pattern" {
		t.Fatalf("unexpected reason: %q", result.Noise[0].ConfidenceReason)
	}
}
