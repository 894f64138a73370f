package buckets

import "github.com/doeshing/whatif-advisor/internal/domain"

// builtins returns the built-in risk buckets in registration order. Their
// identifiers are reserved; custom agents may not reuse them.
func builtins() []domain.RiskBucket {
	return []domain.RiskBucket{
		{
			ID:               "drift",
			DisplayName:      "Infrastructure Drift",
			Description:      "Compares What-If output to the code diff to detect out-of-band changes",
			DefaultThreshold: domain.RiskHigh,
			Display:          domain.DisplaySummary,
			Instructions: `**Infrastructure Drift Risk:**
Compare the What-If output to the code diff. If the What-If shows
changes that aren't in the diff, this indicates infrastructure drift
(manual changes made directly in the cloud).

Risk levels for drift:
- high: Critical resources drifting (security, identity, stateful
  resources like databases/storage), broad scope drift (many
  resources), drift that could cause data loss or security issues
- medium: Multiple resources drifting, configuration drift on
  important resources, drift that could affect application behavior
- low: Minor drift (tags, display names, non-critical metadata),
  single resource drift on non-critical resources`,
		},
		{
			ID:               "intent",
			DisplayName:      "PR Intent Alignment",
			Description:      "Compares What-If output to the PR title/description to catch unintended changes",
			DefaultThreshold: domain.RiskHigh,
			Display:          domain.DisplaySummary,
			Optional:         true, // only evaluated when PR metadata exists
			Instructions: `**PR Intent Alignment Risk:**
Compare the What-If output to the PR title and description. Identify
changes that seem unrelated to the stated intent.

Risk levels for intent:
- high: Destructive changes (Delete) not mentioned in the PR
  title/description, security/authentication changes not mentioned,
  changes that contradict PR intent
- medium: Resource modifications not aligned with PR intent,
  unexpected resource types being modified, scope significantly
  broader than the PR description
- low: New resources not mentioned but aligned with overall intent,
  minor scope differences, additional changes that support the
  main intent`,
		},
		{
			ID:               "operations",
			DisplayName:      "Risky Operations",
			Description:      "Evaluates inherent risk of the operations performed (deletions, security changes, etc.)",
			DefaultThreshold: domain.RiskHigh,
			Display:          domain.DisplaySummary,
			Instructions: `**Risky Operations Risk:**
Evaluate the inherent risk of the operations being performed,
regardless of drift or intent.

Risk levels for operations:
- high: Deletion of stateful resources (databases, storage accounts,
  key vaults), deletion of identity/RBAC resources, network security
  changes that open broad access, encryption setting modifications,
  SKU downgrades that could cause data loss
- medium: Modifications to existing resources that change behavior
  (policy changes, scaling configuration), new public endpoints,
  firewall rule changes, significant configuration updates
- low: Adding new resources, modifying tags, adding
  diagnostic/monitoring resources, modifying display
  names/descriptions`,
		},
	}
}

// IsBuiltinID reports whether id is reserved by a built-in bucket.
func IsBuiltinID(id string) bool {
	for _, b := range builtins() {
		if b.ID == id {
			return true
		}
	}
	return false
}
