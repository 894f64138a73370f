// Package buckets holds the catalog of risk dimensions evaluated in gate
// mode. A Registry is built once per run — built-ins first, then custom
// agents — frozen, and thereafter read-only, so concurrent runs within one
// process can never observe a half-populated catalog.
package buckets

import (
	"fmt"
	"strings"

	"github.com/doeshing/whatif-advisor/internal/domain"
)

// CollisionError reports an attempt to register a bucket under an
// identifier that is already taken.
type CollisionError struct {
	ID string
}

func (e *CollisionError) Error() string {
	if IsBuiltinID(e.ID) {
		return fmt.Sprintf("risk bucket id %q collides with a built-in bucket", e.ID)
	}
	return fmt.Sprintf("duplicate risk bucket id %q", e.ID)
}

// Registry is the catalog of risk buckets for a run. Build with
// NewRegistry, register custom buckets, then Freeze before use.
type Registry struct {
	order  []string
	byID   map[string]domain.RiskBucket
	frozen bool
}

// NewRegistry creates a registry pre-populated with the built-in buckets.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]domain.RiskBucket)}
	for _, b := range builtins() {
		r.order = append(r.order, b.ID)
		r.byID[b.ID] = b
	}
	return r
}

// Register adds a custom bucket. It fails with a CollisionError when the
// identifier is taken (built-in or custom) and with a plain error once the
// registry is frozen.
func (r *Registry) Register(b domain.RiskBucket) error {
	if r.frozen {
		return fmt.Errorf("registry is frozen; cannot register %q", b.ID)
	}
	if _, exists := r.byID[b.ID]; exists {
		return &CollisionError{ID: b.ID}
	}
	r.order = append(r.order, b.ID)
	r.byID[b.ID] = b
	return nil
}

// Freeze makes the registry read-only for the remainder of the run.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Resolve looks up a bucket by identifier.
func (r *Registry) Resolve(id string) (domain.RiskBucket, bool) {
	b, ok := r.byID[id]
	return b, ok
}

// IDs returns all registered bucket identifiers in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// CustomIDs returns identifiers of user-defined buckets only.
func (r *Registry) CustomIDs() []string {
	var ids []string
	for _, id := range r.order {
		if r.byID[id].Custom {
			ids = append(ids, id)
		}
	}
	return ids
}

// EnabledIDs composes the enabled bucket set for a run: every registered
// bucket, minus optional buckets when no PR metadata is available, minus
// explicit skips. An empty result is a hard configuration error, surfaced
// before any reasoner call is spent.
func (r *Registry) EnabledIDs(skips []string, hasPRMetadata bool) ([]string, error) {
	skipped := make(map[string]bool, len(skips))
	for _, id := range skips {
		skipped[strings.TrimSpace(id)] = true
	}

	var enabled []string
	for _, id := range r.order {
		if skipped[id] {
			continue
		}
		if r.byID[id].Optional && !hasPRMetadata {
			continue
		}
		enabled = append(enabled, id)
	}

	if len(enabled) == 0 {
		return nil, fmt.Errorf("no risk buckets enabled: all of [%s] are skipped or unavailable",
			strings.Join(r.order, ", "))
	}
	return enabled, nil
}
