package rpc

import (
	"testing"

	"github.com/bam-labs/bamroute/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code int
		want domain.FailureClass
	}{
		{-32700, domain.Fatal},     // parse error
		{-32600, domain.Fatal},     // invalid request
		{-32602, domain.Fatal},     // invalid params
		{-32002, domain.Fatal},     // preflight failure
		{-32003, domain.Fatal},     // signature failure
		{-32005, domain.Retryable}, // node behind
		{-32601, domain.Retryable}, // method not found: endpoint quirk
		{0, domain.Retryable},
		{99999, domain.Retryable}, // unknown codes never strand a payload
	}
	for _, tt := range tests {
		if got := classify(tt.code); got != tt.want {
			t.Fatalf("classify(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   domain.FailureClass
	}{
		{400, domain.Fatal},
		{413, domain.Fatal},
		{422, domain.Fatal},
		{429, domain.Retryable},
		{500, domain.Retryable},
		{502, domain.Retryable},
		{503, domain.Retryable},
	}
	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Fatalf("classifyStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}
