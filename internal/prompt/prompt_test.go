package prompt

import (
	"strings"
	"testing"

	"github.com/doeshing/whatif-advisor/internal/buckets"
	"github.com/doeshing/whatif-advisor/internal/domain"
)

func gateOptions(t *testing.T, enabled []string, custom ...domain.RiskBucket) Options {
	t.Helper()
	registry := buckets.NewRegistry()
	for _, b := range custom {
		if err := registry.Register(b); err != nil {
			t.Fatalf("Register error: %v", err)
		}
	}
	registry.Freeze()
	return Options{GateMode: true, EnabledIDs: enabled, Registry: registry}
}

func TestStandardSystemPrompt(t *testing.T) {
	got := BuildSystemPrompt(Options{})

	for _, want := range []string{
		`"resources"`,
		`"confidence_level"`,
		"## Confidence Assessment",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("standard prompt missing %q", want)
		}
	}
	if strings.Contains(got, "risk_assessment") {
		t.Error("standard prompt must not carry the gate schema")
	}
}

func TestGateSystemPromptListsEnabledBuckets(t *testing.T) {
	opts := gateOptions(t, []string{"drift", "operations"})
	got := BuildSystemPrompt(opts)

	if !strings.Contains(got, "## Risk Bucket 1: Infrastructure Drift") {
		t.Error("drift section missing")
	}
	if !strings.Contains(got, "## Risk Bucket 2:") {
		t.Error("operations section missing")
	}
	if strings.Contains(got, "PR Intent Alignment") {
		t.Error("disabled intent bucket must not appear")
	}
	if !strings.Contains(got, `"drift": {`) || !strings.Contains(got, `"operations": {`) {
		t.Error("risk_assessment schema must enumerate enabled buckets")
	}
	if !strings.Contains(got, `"highest_risk_bucket": "drift|operations|none"`) {
		t.Error("verdict schema must enumerate bucket options")
	}
	if !strings.Contains(got, "2 independent risk buckets") {
		t.Error("bucket count missing")
	}
}

func TestGateSystemPromptIncludesCustomAgentInstructions(t *testing.T) {
	custom := domain.RiskBucket{
		ID:               "sfi",
		DisplayName:      "Secure Future Initiative",
		DefaultThreshold: domain.RiskMedium,
		Custom:           true,
		Instructions:     "Evaluate each change against SFI requirements.",
	}
	opts := gateOptions(t, []string{"drift", "sfi"}, custom)
	got := BuildSystemPrompt(opts)

	if !strings.Contains(got, "Secure Future Initiative") {
		t.Error("custom bucket display name missing")
	}
	if !strings.Contains(got, "Evaluate each change against SFI requirements.") {
		t.Error("custom bucket instructions missing")
	}
}

func TestGateSystemPromptMentionsPRContext(t *testing.T) {
	opts := gateOptions(t, []string{"drift", "intent"})
	opts.PRTitle = "Add storage account"
	got := BuildSystemPrompt(opts)

	if !strings.Contains(got, "pull request title and description") {
		t.Error("PR input line missing when intent is enabled with metadata")
	}
}

func TestBuildUserPromptStandard(t *testing.T) {
	got := BuildUserPrompt("WHATIF", "", "", "", "")
	if !strings.Contains(got, "<whatif_output>\nWHATIF\n</whatif_output>") {
		t.Fatalf("unexpected prompt:\n%s", got)
	}
	if strings.Contains(got, "<code_diff>") {
		t.Fatal("no diff section without a diff")
	}
}

func TestBuildUserPromptGate(t *testing.T) {
	got := BuildUserPrompt("WHATIF", "DIFF", "BICEP", "Title here", "")

	for _, want := range []string{
		"<whatif_output>\nWHATIF\n</whatif_output>",
		"<code_diff>\nDIFF\n</code_diff>",
		"<template_source>\nBICEP\n</template_source>",
		"Title: Title here",
		"Description: Not provided",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
