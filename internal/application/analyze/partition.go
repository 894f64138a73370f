package analyze

import "github.com/doeshing/whatif-advisor/internal/domain"

// Partition splits findings into trusted and discarded sets by confidence
// label: low and noise are discarded, medium and high (and anything
// unrecognized, which normalizes to medium) are trusted. The split is
// total, disjoint, and order-preserving. Bucket-level assessment state
// travels with the trusted partition only; discarded findings are out of
// gating entirely.
func Partition(findings []domain.ResourceFinding) (trusted, discarded []domain.ResourceFinding) {
	for _, f := range findings {
		if domain.NormalizeConfidence(string(f.ConfidenceLevel)).Trusted() {
			trusted = append(trusted, f)
		} else {
			discarded = append(discarded, f)
		}
	}
	return trusted, discarded
}
