// Package prompt assembles the system and user prompts sent to the
// reasoner. The system prompt carries the response schema; in gate mode
// the schema and instruction sections are generated per enabled bucket
// from the registry, so custom agents participate with no special casing.
package prompt

import (
	"fmt"
	"strings"

	"github.com/doeshing/whatif-advisor/internal/buckets"
)

// Options selects prompt variant and context.
type Options struct {
	GateMode      bool
	PRTitle       string
	PRDescription string
	EnabledIDs    []string
	Registry      *buckets.Registry
}

const confidenceInstructions = `

## Confidence Assessment

For each resource, assess confidence that the change is REAL vs What-If noise:

**HIGH confidence (real changes):**
- Resource creation, deletion, or state changes
- Configuration modifications with clear intent
- Security, networking, or compute changes

**MEDIUM confidence (potentially real but uncertain):**
- Retention policies or analytics settings
- Subnet references changing from hardcoded to dynamic
- Configuration changes that might be platform-managed

**LOW confidence (likely What-If noise):**
- Metadata-only changes (etag, id, provisioningState, type)
- Computed properties (resourceGuid)
- Read-only or system-managed properties

Use your judgment - these are guidelines, not rigid patterns.`

// BuildSystemPrompt returns the system prompt for the run.
func BuildSystemPrompt(opts Options) string {
	if opts.GateMode {
		return buildGateSystemPrompt(opts)
	}
	return buildStandardSystemPrompt()
}

func buildStandardSystemPrompt() string {
	return `You are an Azure infrastructure expert. You analyze Azure Resource Manager
What-If deployment output and produce concise, accurate summaries.

You must respond with ONLY valid JSON matching this schema, no other text:

{
  "resources": [
    {
      "resource_name": "string - the short resource name",
      "resource_type": "string - the resource type, abbreviated",
      "action": "string - Create, Modify, Delete, Deploy, NoChange, Ignore",
      "summary": "string - plain English explanation of this change",
      "confidence_level": "low|medium|high - confidence this is a real change vs What-If noise",
      "confidence_reason": "string - brief explanation of confidence assessment"
    }
  ],
  "overall_summary": "string - brief summary with action counts and intent"
}` + confidenceInstructions
}

func buildGateSystemPrompt(opts Options) string {
	var b strings.Builder

	b.WriteString(`You are an infrastructure deployment safety reviewer. You are given:
1. The What-If output showing planned infrastructure changes
2. The source code diff that produced these changes`)

	hasIntent := contains(opts.EnabledIDs, "intent")
	if (opts.PRTitle != "" || opts.PRDescription != "") && hasIntent {
		b.WriteString("\n3. The pull request title and description stating the INTENDED purpose of this change")
	}

	word := "buckets"
	if len(opts.EnabledIDs) == 1 {
		word = "bucket"
	}
	fmt.Fprintf(&b, "\n\nEvaluate the deployment for safety and correctness across %d independent risk %s:\n",
		len(opts.EnabledIDs), word)

	for i, id := range opts.EnabledIDs {
		bucket, ok := opts.Registry.Resolve(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## Risk Bucket %d: %s\n%s\n", i+1, bucket.DisplayName, bucket.Instructions)
	}

	b.WriteString(confidenceInstructions)

	b.WriteString("\n\nRespond with ONLY valid JSON matching this schema:\n\n")
	b.WriteString(`{
  "resources": [
    {
      "resource_name": "string",
      "resource_type": "string",
      "action": "string - Create, Modify, Delete, Deploy, NoChange, Ignore",
      "summary": "string - what this change does",
      "risk_level": "low|medium|high",
      "risk_reason": "string or null - why this is risky, if applicable",
      "confidence_level": "low|medium|high - confidence this is a real change vs What-If noise",
      "confidence_reason": "string - brief explanation of confidence assessment"
    }
  ],
  "overall_summary": "string",
  `)
	b.WriteString(riskAssessmentSchema(opts.EnabledIDs))
	b.WriteString(",\n  ")
	b.WriteString(verdictSchema(opts.EnabledIDs))
	b.WriteString("\n}")

	return b.String()
}

func riskAssessmentSchema(enabledIDs []string) string {
	var entries []string
	for _, id := range enabledIDs {
		entries = append(entries, fmt.Sprintf(`    %q: {
      "risk_level": "low|medium|high",
      "concerns": ["array of specific concerns"],
      "concern_summary": "1-2 sentence summary of all concerns, or 'None' if no concerns",
      "reasoning": "explanation of risk assessment"
    }`, id))
	}
	return "\"risk_assessment\": {\n" + strings.Join(entries, ",\n") + "\n  }"
}

func verdictSchema(enabledIDs []string) string {
	options := strings.Join(enabledIDs, "|")
	return fmt.Sprintf(`"verdict": {
    "safe": true/false,
    "highest_risk_bucket": "%s|none",
    "overall_risk_level": "low|medium|high",
    "reasoning": "string - 2-3 sentence explanation considering all buckets"
  }`, options)
}

// BuildUserPrompt wraps the What-If text and contextual inputs in tagged
// sections. Diff and PR metadata only appear in gate mode.
func BuildUserPrompt(whatIf, diff, bicep, prTitle, prDescription string) string {
	if diff == "" {
		return fmt.Sprintf(`Analyze the following What-If output:

<whatif_output>
%s
</whatif_output>`, whatIf)
	}

	var b strings.Builder
	b.WriteString("Review this deployment for safety.")

	if prTitle != "" || prDescription != "" {
		fmt.Fprintf(&b, `

<pull_request_intent>
Title: %s
Description: %s
</pull_request_intent>`, orNotProvided(prTitle), orNotProvided(prDescription))
	}

	fmt.Fprintf(&b, `

<whatif_output>
%s
</whatif_output>

<code_diff>
%s
</code_diff>`, whatIf, diff)

	if bicep != "" {
		fmt.Fprintf(&b, `

<template_source>
%s
</template_source>`, bicep)
	}

	return b.String()
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

func contains(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
