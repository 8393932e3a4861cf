package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bam-labs/bamroute/internal/domain"
	"github.com/bam-labs/bamroute/internal/registry"
)

// Submitter sends one payload to one region's submission endpoint and
// returns the opaque JSON-RPC result or a classified *domain.SubmitError.
type Submitter interface {
	Submit(ctx context.Context, region domain.Region, payload []byte) (json.RawMessage, error)
}

// Result is a successful routed submission.
type Result struct {
	// Region is the code of the region that accepted the transaction.
	Region string

	// Response is the opaque JSON-RPC result object.
	Response json.RawMessage

	// Attempts is the full attempt sequence, the winner last.
	Attempts []domain.Attempt
}

// Router walks a fallback chain sequentially, one attempt in flight at a
// time: each fallback decision depends on the prior attempt's outcome.
// It performs no probing; it only consumes an already-built order.
type Router struct {
	reg            *registry.Registry
	sub            Submitter
	maxAttempts    int
	attemptTimeout time.Duration
	log            zerolog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMaxAttempts bounds how many regions are tried. Zero means the full
// chain length; the bound exists to cap worst-case latency on long chains.
func WithMaxAttempts(n int) RouterOption {
	return func(r *Router) { r.maxAttempts = n }
}

// WithAttemptTimeout bounds each individual submission attempt.
func WithAttemptTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		if d > 0 {
			r.attemptTimeout = d
		}
	}
}

// NewRouter creates a Router over the given catalog and submitter.
func NewRouter(reg *registry.Registry, sub Submitter, log zerolog.Logger, opts ...RouterOption) *Router {
	r := &Router{reg: reg, sub: sub, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit tries the chain in order until a region accepts the payload.
//
// A retryable failure advances to the next region. A fatal-payload failure
// (malformed transaction, invalid signature) stops immediately: the same
// bytes cannot succeed elsewhere. When the chain or the attempt budget runs
// out without a success, the terminal error is a *domain.ExhaustedError
// carrying every attempt for diagnostics.
func (r *Router) Submit(ctx context.Context, payload []byte, order domain.Order) (*Result, error) {
	if order.Len() == 0 {
		return nil, domain.ErrNoRegions
	}

	limit := order.Len()
	if r.maxAttempts > 0 && r.maxAttempts < limit {
		limit = r.maxAttempts
	}

	attempts := make([]domain.Attempt, 0, limit)
	for i := 0; i < limit; i++ {
		code := order.Regions[i]
		region, err := r.reg.Lookup(code)
		if err != nil {
			return nil, err
		}

		resp, elapsed, err := r.attempt(ctx, region, payload)
		attempts = append(attempts, domain.Attempt{
			Region:  code,
			Ordinal: i,
			Result:  resp,
			Err:     err,
			Elapsed: elapsed,
		})

		if err == nil {
			r.log.Info().Str("region", code).Int("attempt", i).Dur("elapsed", elapsed).Msg("transaction accepted")
			return &Result{Region: code, Response: resp, Attempts: attempts}, nil
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("submit canceled after %d attempts: %w", len(attempts), ctx.Err())
		}

		var se *domain.SubmitError
		if errors.As(err, &se) && se.Class == domain.Fatal {
			r.log.Error().Str("region", code).Err(err).Msg("fatal payload rejection, not retrying elsewhere")
			return nil, err
		}
		r.log.Warn().Str("region", code).Err(err).Msg("submission failed, advancing fallback chain")
	}

	return nil, &domain.ExhaustedError{Attempts: attempts}
}

func (r *Router) attempt(ctx context.Context, region domain.Region, payload []byte) (json.RawMessage, time.Duration, error) {
	actx := ctx
	if r.attemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := r.sub.Submit(actx, region, payload)
	return resp, time.Since(start), err
}
