// Package rpc submits signed transactions to region endpoints over JSON-RPC
// and classifies submission failures for the router's fallback decision.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bam-labs/bamroute/internal/domain"
)

const sendTransactionMethod = "sendTransaction"

// maxErrorBody caps how much of a failed response body is read back for
// diagnostics.
const maxErrorBody = 4 << 10

// HTTPClient abstracts HTTP for dependency injection; *http.Client
// satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Submitter sends one transaction to one region endpoint. It performs no
// retries of its own; fallback lives entirely in the router.
type Submitter struct {
	client              HTTPClient
	encoding            Encoding
	skipPreflight       bool
	preflightCommitment string
	log                 zerolog.Logger
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithEncoding sets the payload encoding hint. Default is auto-detection.
func WithEncoding(enc Encoding) SubmitterOption {
	return func(s *Submitter) { s.encoding = enc }
}

// WithSkipPreflight asks the endpoint to skip preflight simulation.
func WithSkipPreflight(skip bool) SubmitterOption {
	return func(s *Submitter) { s.skipPreflight = skip }
}

// WithPreflightCommitment sets the commitment level used for preflight.
func WithPreflightCommitment(level string) SubmitterOption {
	return func(s *Submitter) { s.preflightCommitment = level }
}

// WithHTTPClient overrides the HTTP client, for tests.
func WithHTTPClient(c HTTPClient) SubmitterOption {
	return func(s *Submitter) { s.client = c }
}

// NewSubmitter creates a Submitter with the given logger and options.
func NewSubmitter(log zerolog.Logger, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		client:              &http.Client{Timeout: 30 * time.Second},
		encoding:            EncodingAuto,
		preflightCommitment: "confirmed",
		log:                 log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Submit posts a sendTransaction request to the region's submission
// endpoint. The returned error is always a *domain.SubmitError carrying the
// retryable/fatal classification, except for payload encoding problems,
// which surface as plain errors before any network activity.
func (s *Submitter) Submit(ctx context.Context, region domain.Region, payload []byte) (json.RawMessage, error) {
	text, wire, err := encodePayload(payload, s.encoding)
	if err != nil {
		return nil, err
	}

	opts := map[string]any{"encoding": wire}
	if s.skipPreflight {
		opts["skipPreflight"] = true
	}
	if s.preflightCommitment != "" {
		opts["preflightCommitment"] = s.preflightCommitment
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  sendTransactionMethod,
		Params:  []any{text, opts},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, region.TxURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	s.log.Debug().Str("region", region.Code).Str("endpoint", region.TxURL).Int("chars", len(text)).Msg("submitting transaction")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.SubmitError{Class: domain.Retryable, Msg: "endpoint unreachable", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.SubmitError{
			Class: classifyStatus(resp.StatusCode),
			Msg:   fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(respBody)),
		}
	}

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &domain.SubmitError{Class: domain.Retryable, Msg: "malformed endpoint response", Cause: err}
	}
	if parsed.Error != nil {
		return nil, &domain.SubmitError{
			Class: classify(parsed.Error.Code),
			Code:  parsed.Error.Code,
			Msg:   parsed.Error.Message,
		}
	}
	if parsed.Result == nil {
		return nil, &domain.SubmitError{Class: domain.Retryable, Msg: "response missing result field"}
	}
	return parsed.Result, nil
}
