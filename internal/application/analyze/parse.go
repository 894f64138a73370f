package analyze

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/whatif-advisor/internal/buckets"
	"github.com/doeshing/whatif-advisor/internal/domain"
)

// ErrMalformedResponse marks reasoner output that could not be parsed as
// the expected JSON structure. Distinct from a parsed response that is
// missing a required risk dimension.
var ErrMalformedResponse = errors.New("could not parse structured reasoner output")

// wireResult mirrors the reasoner's JSON schema. Levels arrive as raw
// strings and are normalized during conversion.
type wireResult struct {
	Resources []struct {
		ResourceName     string `json:"resource_name"`
		ResourceType     string `json:"resource_type"`
		Action           string `json:"action"`
		Summary          string `json:"summary"`
		RiskLevel        string `json:"risk_level"`
		RiskReason       string `json:"risk_reason"`
		ConfidenceLevel  string `json:"confidence_level"`
		ConfidenceReason string `json:"confidence_reason"`
	} `json:"resources"`
	OverallSummary string `json:"overall_summary"`
	RiskAssessment map[string]struct {
		RiskLevel      string   `json:"risk_level"`
		Concerns       []string `json:"concerns"`
		ConcernSummary string   `json:"concern_summary"`
		Reasoning      string   `json:"reasoning"`
	} `json:"risk_assessment"`
	Verdict *struct {
		Safe              bool   `json:"safe"`
		HighestRiskBucket string `json:"highest_risk_bucket"`
		OverallRiskLevel  string `json:"overall_risk_level"`
		Reasoning         string `json:"reasoning"`
	} `json:"verdict"`
}

// extractJSON pulls the JSON object out of raw reasoner text, tolerating
// surrounding prose and markdown code fences.
func extractJSON(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if fenced := extractFencedBlock(text); fenced != "" {
		text = fenced
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func extractFencedBlock(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return ""
	}
	rest := text[start+3:]
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	block := rest[:end]
	// drop a language marker such as "json"
	if nl := strings.Index(block, "\n"); nl != -1 {
		first := strings.TrimSpace(block[:nl])
		if first != "" && !strings.HasPrefix(first, "{") {
			block = block[nl+1:]
		}
	}
	return strings.TrimSpace(block)
}

// ParseResult validates raw reasoner output and converts it to the domain
// result. In gate mode, every enabled non-optional bucket must be present
// in the risk assessment; a violation names the missing bucket and is
// reported separately from a JSON parse failure.
func ParseResult(raw string, gateMode bool, enabledIDs []string, registry *buckets.Registry) (domain.AnalysisResult, error) {
	text, ok := extractJSON(raw)
	if !ok {
		return domain.AnalysisResult{}, ErrMalformedResponse
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.Resources == nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: missing required key \"resources\"", ErrMalformedResponse)
	}

	result := domain.AnalysisResult{
		OverallSummary: wire.OverallSummary,
	}
	for _, r := range wire.Resources {
		finding := domain.ResourceFinding{
			ResourceName:     r.ResourceName,
			ResourceType:     r.ResourceType,
			Action:           r.Action,
			Summary:          r.Summary,
			ConfidenceLevel:  domain.NormalizeConfidence(r.ConfidenceLevel),
			ConfidenceReason: r.ConfidenceReason,
		}
		if gateMode {
			finding.RiskLevel = domain.NormalizeRiskLevel(r.RiskLevel)
			finding.RiskReason = r.RiskReason
		}
		result.Resources = append(result.Resources, finding)
	}

	if !gateMode {
		return result, nil
	}

	result.RiskAssessment = make(map[string]domain.BucketAssessment, len(wire.RiskAssessment))
	for id, entry := range wire.RiskAssessment {
		result.RiskAssessment[id] = domain.BucketAssessment{
			RiskLevel:      domain.NormalizeRiskLevel(entry.RiskLevel),
			Concerns:       entry.Concerns,
			ConcernSummary: entry.ConcernSummary,
			Reasoning:      entry.Reasoning,
		}
	}

	// Required dimensions must be present once the structure parsed.
	// Optional buckets may legitimately be absent.
	if len(wire.RiskAssessment) > 0 {
		for _, id := range enabledIDs {
			if _, present := result.RiskAssessment[id]; present {
				continue
			}
			if bucket, ok := registry.Resolve(id); ok && bucket.Optional {
				continue
			}
			return domain.AnalysisResult{}, fmt.Errorf("reasoner response parsed but is missing required risk dimension %q", id)
		}
	}

	if wire.Verdict != nil {
		result.Verdict = &domain.Verdict{
			Safe:              wire.Verdict.Safe,
			HighestRiskBucket: wire.Verdict.HighestRiskBucket,
			OverallRiskLevel:  domain.NormalizeRiskLevel(wire.Verdict.OverallRiskLevel),
			Reasoning:         wire.Verdict.Reasoning,
		}
	}

	return result, nil
}
