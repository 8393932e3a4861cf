package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors returned by the public API; check with errors.Is / errors.As.
var (
	// ErrDuplicateRegion is returned when two catalog entries share a code.
	ErrDuplicateRegion = errors.New("bamroute: duplicate region code")

	// ErrUnknownRegion is returned when a lookup or override names a code
	// absent from the catalog.
	ErrUnknownRegion = errors.New("bamroute: unknown region code")

	// ErrNoRegions is returned when the candidate region set itself is
	// empty. Distinct from ExhaustedError, which means every candidate
	// was tried and failed.
	ErrNoRegions = errors.New("bamroute: no candidate regions")
)

// FailureClass tells the router whether a submission failure is worth
// retrying against a different region.
type FailureClass int

const (
	// Retryable marks failures local to one endpoint: unreachable,
	// overloaded, transient RPC errors. The router advances the chain.
	Retryable FailureClass = iota

	// Fatal marks failures deterministic in the payload: malformed
	// transaction, invalid signature. Retrying elsewhere cannot succeed,
	// so the router stops immediately.
	Fatal
)

func (c FailureClass) String() string {
	if c == Fatal {
		return "fatal"
	}
	return "retryable"
}

// SubmitError is a single submission attempt's classified failure.
type SubmitError struct {
	Class FailureClass

	// Code is the JSON-RPC error code, 0 for transport-level failures.
	Code int

	Msg string

	// Cause is the underlying transport error, if any.
	Cause error
}

func (e *SubmitError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("submit failed (%s, rpc %d): %s", e.Class, e.Code, e.Msg)
	}
	return fmt.Sprintf("submit failed (%s): %s", e.Class, e.Msg)
}

func (e *SubmitError) Unwrap() error { return e.Cause }

// ExhaustedError is the terminal failure when every attempted region
// rejected the submission. It carries the full attempt sequence so callers
// can report which regions were tried and why each failed.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bamroute: all %d regions exhausted", len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %v", a.Region, a.Err)
	}
	return b.String()
}
