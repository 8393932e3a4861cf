// Package probe measures connection-level latency to region endpoints.
// A probe is a bare TCP handshake; no application data is exchanged.
package probe

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bam-labs/bamroute/internal/domain"
)

const (
	// DefaultTimeout bounds one dial attempt.
	DefaultTimeout = 750 * time.Millisecond

	// DefaultSamples is the number of dials per region; successful
	// samples are averaged.
	DefaultSamples = 1
)

// DialFunc opens a transport connection. Tests substitute their own.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Prober measures round-trip handshake latency to a set of regions.
// Every Probe call produces a fresh measurement set; nothing is cached,
// so selection always reflects current conditions.
type Prober struct {
	timeout time.Duration
	samples int
	dial    DialFunc
	log     zerolog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the per-region dial timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithSamples sets how many dials are taken per region.
func WithSamples(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.samples = n
		}
	}
}

// WithDialFunc overrides the dialer, for tests.
func WithDialFunc(d DialFunc) Option {
	return func(p *Prober) { p.dial = d }
}

// New creates a Prober with the given logger and options.
func New(log zerolog.Logger, opts ...Option) *Prober {
	d := &net.Dialer{}
	p := &Prober{
		timeout: DefaultTimeout,
		samples: DefaultSamples,
		dial:    d.DialContext,
		log:     log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe dials every region concurrently and returns one measurement per
// distinct region code. Failures (timeout, refusal, resolution) become
// failed measurements, never errors: one dead region must not abort
// measurement of the rest. The call returns once every probe has completed
// or timed out, so total duration is bounded by one timeout per sample,
// not the sum across regions.
func (p *Prober) Probe(ctx context.Context, regions []domain.Region) map[string]domain.Measurement {
	results := make(map[string]domain.Measurement, len(regions))
	if len(regions) == 0 {
		return results
	}

	var mu sync.Mutex
	var g errgroup.Group
	seen := make(map[string]bool, len(regions))

	for _, r := range regions {
		if seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		region := r
		g.Go(func() error {
			m := p.probeOne(ctx, region)
			mu.Lock()
			results[region.Code] = m
			mu.Unlock()
			return nil
		})
	}

	// Goroutines never return errors; Wait is a join point only.
	_ = g.Wait()
	return results
}

// probeOne takes up to p.samples dials and averages the successes.
func (p *Prober) probeOne(ctx context.Context, region domain.Region) domain.Measurement {
	addr := probeAddr(region.ProbeURL)

	var total time.Duration
	var ok int
	var lastErr string

	for i := 0; i < p.samples; i++ {
		rtt, err := p.dialOnce(ctx, addr)
		if err != nil {
			lastErr = err.Error()
			continue
		}
		total += rtt
		ok++
	}

	m := domain.Measurement{Region: region.Code, ProbedAt: time.Now()}
	if ok == 0 {
		m.Err = lastErr
		p.log.Debug().Str("region", region.Code).Str("addr", addr).Str("error", lastErr).Msg("probe failed")
		return m
	}
	m.OK = true
	m.RTT = total / time.Duration(ok)
	p.log.Debug().Str("region", region.Code).Dur("rtt", m.RTT).Msg("probe ok")
	return m
}

func (p *Prober) dialOnce(ctx context.Context, addr string) (time.Duration, error) {
	dctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dial(dctx, "tcp", addr)
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)
	conn.Close()
	return elapsed, nil
}

// probeAddr extracts host:port from an endpoint URL, defaulting the port
// from the scheme (443 for https, 80 otherwise).
func probeAddr(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}
