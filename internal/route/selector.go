// Package route turns probe measurements into a fallback chain and walks
// that chain until a submission lands. Ordering (parallel-probe derived,
// stateless) and fallback (sequential, state-carrying) are kept in separate
// types on purpose: their concurrency needs differ.
package route

import (
	"sort"

	"github.com/bam-labs/bamroute/internal/domain"
)

// Select builds a best-first fallback chain from a measurement set.
//
// Regions with successful measurements come first, strictly ascending by
// latency; failed regions follow, ascending by code. Latency ties also break
// by ascending code so the order is deterministic. A nonempty override is
// pinned to position 0 even when its measurement failed or is missing
// entirely; the rest of the chain is still built so fallback works.
//
// Returns domain.ErrNoRegions only when the resulting chain would be empty.
// An all-failed nonempty set is still a valid chain: a probe failure does
// not prove the submission endpoint is down, since the two endpoints differ.
func Select(measurements map[string]domain.Measurement, override string) (domain.Order, error) {
	codes := make([]string, 0, len(measurements))
	for code := range measurements {
		if code == override {
			continue
		}
		codes = append(codes, code)
	}

	sort.Slice(codes, func(i, j int) bool {
		a, b := measurements[codes[i]], measurements[codes[j]]
		if a.OK != b.OK {
			return a.OK
		}
		if a.OK && a.RTT != b.RTT {
			return a.RTT < b.RTT
		}
		return codes[i] < codes[j]
	})

	if override != "" {
		codes = append([]string{override}, codes...)
	}
	if len(codes) == 0 {
		return domain.Order{}, domain.ErrNoRegions
	}

	return domain.Order{Regions: codes, Measurements: measurements}, nil
}
