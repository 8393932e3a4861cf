// Package domain contains the core value types and errors for bamroute.
//
// It has no dependencies on infrastructure concerns (networking, file
// system, logging) and is shared by every other internal package.
//
//   - [Region]: one candidate location with probe and submission endpoints
//   - [Measurement]: the outcome of one latency probe
//   - [Order]: a best-first fallback chain derived from measurements
//   - [Attempt]: one submission try, kept for diagnostics
//
// Probe failures are values inside [Measurement], never errors; submission
// failures carry a [FailureClass] that drives the router's fallback
// decision.
package domain
