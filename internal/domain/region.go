package domain

// Region is one candidate network location offering a latency-probe endpoint
// and a transaction-submission endpoint. Regions are immutable after registry
// construction.
type Region struct {
	// Code is the short unique identifier (e.g. "ny", "dallas", "slc").
	Code string

	// Label is the human-readable name shown in listings.
	Label string

	// ProbeURL is the endpoint dialed for latency measurement.
	ProbeURL string

	// TxURL is the JSON-RPC endpoint transactions are submitted to.
	// May be empty in raw catalog input; the registry substitutes the
	// shared fallback endpoint before the region is used.
	TxURL string
}
