package domain

import (
	"encoding/json"
	"time"
)

// Attempt records one submission try against one region. Attempts exist only
// for the duration of a single submit call, for diagnostics.
type Attempt struct {
	// Region is the code of the region the submission was sent to.
	Region string

	// Ordinal is the zero-based position of this attempt in the sequence.
	Ordinal int

	// Result is the opaque JSON-RPC result on success, nil otherwise.
	Result json.RawMessage

	// Err is the classified failure, nil on success.
	Err error

	// Elapsed is how long the attempt took.
	Elapsed time.Duration
}

// Succeeded reports whether the attempt produced a result.
func (a Attempt) Succeeded() bool { return a.Err == nil }
