package rpc

import "github.com/bam-labs/bamroute/internal/domain"

// fatalCodes is the policy table mapping JSON-RPC error codes to the
// fatal-payload class. Protocol-level codes mean the request itself is
// malformed; the preflight and signature codes mean the endpoint
// deterministically rejected the transaction, so another region would
// reject it the same way.
//
// Codes absent from the table classify as retryable-elsewhere: a
// misclassified transient error must never strand a good payload.
var fatalCodes = map[int]bool{
	-32700: true, // parse error
	-32600: true, // invalid request
	-32602: true, // invalid params
	-32002: true, // transaction simulation / preflight failure
	-32003: true, // signature verification failure
}

// classify maps a JSON-RPC error code to a failure class.
func classify(code int) domain.FailureClass {
	if fatalCodes[code] {
		return domain.Fatal
	}
	return domain.Retryable
}

// classifyStatus maps an HTTP status to a failure class. 4xx payload
// rejections are deterministic; everything else (5xx, 429) is endpoint
// trouble worth retrying elsewhere.
func classifyStatus(status int) domain.FailureClass {
	switch status {
	case 400, 413, 422:
		return domain.Fatal
	}
	return domain.Retryable
}
