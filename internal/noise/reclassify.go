package noise

import (
	"strings"

	"github.com/doeshing/whatif-advisor/internal/domain"
)

// validOperations are the operation names a resource: pattern may pin.
var validOperations = map[string]string{
	"modify":   "Modify",
	"create":   "Create",
	"delete":   "Delete",
	"deploy":   "Deploy",
	"nochange": "NoChange",
	"ignore":   "Ignore",
}

const reclassifyReason = "Matched resource noise pattern"

// extractARMType collapses the name segments out of a full What-If
// resource path. The path interleaves names between type segments:
//
//	Microsoft.Storage/storageAccounts/myacct/blobServices/default
//
// becomes
//
//	Microsoft.Storage/storageAccounts/blobServices
func extractARMType(fullPath string) string {
	parts := strings.Split(fullPath, "/")
	if len(parts) < 2 {
		return fullPath
	}
	segments := []string{parts[0]}
	for i := 1; i < len(parts); i += 2 {
		segments = append(segments, parts[i])
	}
	return strings.Join(segments, "/")
}

// matchesResourcePattern tests a finding's resource type and action
// against a resource: pattern. The pattern value is a case-insensitive
// type substring, optionally suffixed with ":<Operation>". An unknown
// operation suffix falls back to matching the whole value as a type
// substring, since the colon may belong to the type itself.
func matchesResourcePattern(resourceType, action string, p Pattern) bool {
	typeMatches := func(needle string) bool {
		needle = strings.ToLower(needle)
		return strings.Contains(strings.ToLower(resourceType), needle) ||
			strings.Contains(strings.ToLower(extractARMType(resourceType)), needle)
	}

	value := p.Value
	if idx := strings.LastIndex(value, ":"); idx >= 0 {
		typePart := strings.TrimSpace(value[:idx])
		opPart := strings.TrimSpace(value[idx+1:])
		if op, ok := validOperations[strings.ToLower(opPart)]; ok {
			return typeMatches(typePart) && strings.EqualFold(action, op)
		}
	}
	return typeMatches(value)
}

// Reclassify demotes findings matching a resource: pattern to low
// confidence after the reasoner has run, so they land in the noise
// partition instead of being silently removed. Findings already at low or
// noise confidence are left alone. Returns the number demoted.
func Reclassify(findings []domain.ResourceFinding, resourcePatterns []Pattern) int {
	if len(resourcePatterns) == 0 || len(findings) == 0 {
		return 0
	}
	count := 0
	for i := range findings {
		if !domain.NormalizeConfidence(string(findings[i].ConfidenceLevel)).Trusted() {
			continue
		}
		for _, p := range resourcePatterns {
			if matchesResourcePattern(findings[i].ResourceType, findings[i].Action, p) {
				findings[i].ConfidenceLevel = domain.ConfidenceLow
				findings[i].ConfidenceReason = reclassifyReason
				count++
				break
			}
		}
	}
	return count
}
