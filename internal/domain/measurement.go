package domain

import "time"

// Measurement is the outcome of one latency probe against a region.
// A fresh set is produced on every probing pass and never mutated; the next
// pass supersedes it.
type Measurement struct {
	// Region is the probed region's code.
	Region string

	// RTT is the connect-to-handshake round-trip time. Only meaningful
	// when OK is true.
	RTT time.Duration

	// OK reports whether the probe succeeded.
	OK bool

	// Err describes why the probe failed (timeout, refused, resolution).
	Err string

	// ProbedAt is when the measurement was taken.
	ProbedAt time.Time
}

// Order is a best-first sequence of region codes derived from a measurement
// set, optionally with an override pinned at position 0.
//
// Invariants: every region with a successful measurement precedes every
// region with a failed one; successes are strictly ascending by RTT; ties
// and failures order by ascending code.
type Order struct {
	// Regions holds the region codes, best candidate first.
	Regions []string

	// Measurements maps region code to the measurement the order was
	// built from. An override region may be absent from the map.
	Measurements map[string]Measurement
}

// Len returns the number of candidate regions in the order.
func (o Order) Len() int { return len(o.Regions) }

// Fastest returns the code at position 0, or "" for an empty order.
func (o Order) Fastest() string {
	if len(o.Regions) == 0 {
		return ""
	}
	return o.Regions[0]
}
