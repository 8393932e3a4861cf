// Package registry holds the immutable catalog of submission regions.
// The catalog is built once at startup from static configuration and shared
// by reference for the process lifetime; it performs no I/O.
package registry

import (
	"fmt"
	"sort"

	"github.com/bam-labs/bamroute/internal/domain"
)

// Registry is the process-wide region catalog. Safe for concurrent use;
// nothing mutates it after New returns.
type Registry struct {
	byCode map[string]domain.Region
}

// New builds a registry from already-validated catalog entries. Two entries
// sharing a code fail with domain.ErrDuplicateRegion; the selector's
// tie-break rule depends on code uniqueness. Entries without their own
// submission endpoint get the shared fallback endpoint.
func New(regions []domain.Region, fallbackTxURL string) (*Registry, error) {
	byCode := make(map[string]domain.Region, len(regions))
	for _, r := range regions {
		if _, dup := byCode[r.Code]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateRegion, r.Code)
		}
		if r.TxURL == "" {
			r.TxURL = fallbackTxURL
		}
		byCode[r.Code] = r
	}
	return &Registry{byCode: byCode}, nil
}

// All returns every region, sorted by code for stable iteration.
func (r *Registry) All() []domain.Region {
	out := make([]domain.Region, 0, len(r.byCode))
	for _, region := range r.byCode {
		out = append(out, region)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Lookup returns the region for code, or domain.ErrUnknownRegion.
func (r *Registry) Lookup(code string) (domain.Region, error) {
	region, ok := r.byCode[code]
	if !ok {
		return domain.Region{}, fmt.Errorf("%w: %q", domain.ErrUnknownRegion, code)
	}
	return region, nil
}

// Len returns the number of regions in the catalog.
func (r *Registry) Len() int { return len(r.byCode) }
