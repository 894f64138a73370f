package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/whatif-advisor/internal/buckets"
	"github.com/doeshing/whatif-advisor/internal/domain"
	"github.com/doeshing/whatif-advisor/internal/ports"
	"github.com/doeshing/whatif-advisor/internal/prompt"
)

// reanalysisState tracks whether discarding noisy findings has
// invalidated the first risk assessment.
type reanalysisState int

const (
	stateStable reanalysisState = iota
	stateNeedsReanalysis
)

// coordinator drives the optional second reasoning round. It runs at most
// once per analysis: either the first assessment stands, or one reanalysis
// replaces its risk portions, and the state returns to stable.
type coordinator struct {
	state reanalysisState
}

// observe transitions to NeedsReanalysis iff the run gates and the
// discarded partition is non-empty.
func (c *coordinator) observe(gateMode bool, discarded int) {
	if gateMode && discarded > 0 {
		c.state = stateNeedsReanalysis
	}
}

func (c *coordinator) pending() bool {
	return c.state == stateNeedsReanalysis
}

// run re-invokes the reasoner over a reduced description built from the
// trusted findings only, keeping the original diff and PR context. On a
// valid parse it overwrites only the risk assessment and verdict of
// result; the resource list and summaries stay untouched. On failure the
// first call's assessment is retained and a warning is returned instead.
// Either way the coordinator ends stable.
func (c *coordinator) run(
	ctx context.Context,
	reasoner ports.Reasoner,
	req domain.AnalysisRequest,
	trusted []domain.ResourceFinding,
	enabledIDs []string,
	registry *buckets.Registry,
	result *domain.AnalysisResult,
) (warning string) {
	defer func() { c.state = stateStable }()

	system := prompt.BuildSystemPrompt(prompt.Options{
		GateMode:      true,
		PRTitle:       req.PRTitle,
		PRDescription: req.PRDescription,
		EnabledIDs:    enabledIDs,
		Registry:      registry,
	})
	user := prompt.BuildUserPrompt(syntheticDocument(trusted), req.DiffText, req.BicepText, req.PRTitle, req.PRDescription)

	raw, err := reasoner.Complete(ctx, ports.CompletionRequest{System: system, User: user})
	if err != nil {
		return fmt.Sprintf("reanalysis call failed, keeping original assessment: %v", err)
	}

	second, err := ParseResult(raw, true, enabledIDs, registry)
	if err != nil {
		return fmt.Sprintf("reanalysis response invalid, keeping original assessment: %v", err)
	}

	result.RiskAssessment = second.RiskAssessment
	result.Verdict = second.Verdict
	result.Reanalyzed = true
	return ""
}

// syntheticDocument reconstructs a minimal change description from the
// trusted findings. Deliberately lossy: original formatting and property
// detail are gone, only the surviving resources and their summaries remain.
func syntheticDocument(trusted []domain.ResourceFinding) string {
	var b strings.Builder
	b.WriteString("Planned changes (noise findings already removed):\n\n")
	for _, f := range trusted {
		symbol := actionSymbol(f.Action)
		fmt.Fprintf(&b, "  %s %s (%s)\n", symbol, f.ResourceType, f.ResourceName)
		if f.Summary != "" {
			fmt.Fprintf(&b, "      %s\n", f.Summary)
		}
	}
	return b.String()
}

func actionSymbol(action string) string {
	switch strings.ToLower(action) {
	case "create":
		return "+"
	case "delete":
		return "-"
	case "deploy":
		return "="
	case "nochange":
		return "*"
	case "ignore":
		return "x"
	default:
		return "~"
	}
}
