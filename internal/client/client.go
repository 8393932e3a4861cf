// Package client wires the registry, prober, selector and router behind the
// two operations the CLI consumes: list regions and send a transaction.
package client

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bam-labs/bamroute/internal/domain"
	"github.com/bam-labs/bamroute/internal/registry"
	"github.com/bam-labs/bamroute/internal/route"
)

// Prober measures latency to a set of regions.
type Prober interface {
	Probe(ctx context.Context, regions []domain.Region) map[string]domain.Measurement
}

// Router submits a payload along a fallback chain.
type Router interface {
	Submit(ctx context.Context, payload []byte, order domain.Order) (*route.Result, error)
}

// RegionStatus pairs a region with its latest measurement for display.
type RegionStatus struct {
	Region      domain.Region
	Measurement domain.Measurement

	// Fastest marks the selected best region.
	Fastest bool
}

// SendOptions tune a single SendTransaction call.
type SendOptions struct {
	// Region forces the named region to the front of the chain.
	Region string

	// SkipProbe bypasses latency probing entirely. Only valid together
	// with a forced region; the chain then contains that region alone.
	SkipProbe bool
}

// Client is the composition root. Each call owns its own measurement set,
// order and attempt sequence; concurrent callers share only the immutable
// registry.
type Client struct {
	reg    *registry.Registry
	prober Prober
	router Router
	log    zerolog.Logger
}

// New creates a Client over the given collaborators.
func New(reg *registry.Registry, prober Prober, router Router, log zerolog.Logger) *Client {
	return &Client{reg: reg, prober: prober, router: router, log: log}
}

// ListRegions probes the full catalog and returns every region paired with
// its fresh measurement, in selection order. Results are never cached:
// each call reflects current conditions.
func (c *Client) ListRegions(ctx context.Context) ([]RegionStatus, error) {
	measurements := c.prober.Probe(ctx, c.reg.All())
	order, err := route.Select(measurements, "")
	if err != nil {
		return nil, err
	}

	statuses := make([]RegionStatus, 0, order.Len())
	for i, code := range order.Regions {
		region, err := c.reg.Lookup(code)
		if err != nil {
			return nil, err
		}
		m := measurements[code]
		statuses = append(statuses, RegionStatus{
			Region:      region,
			Measurement: m,
			Fastest:     i == 0 && m.OK,
		})
	}
	return statuses, nil
}

// SendTransaction routes the payload: probe, select, submit with fallback.
// A forced region occupies position 0 of the chain; with SkipProbe set the
// probe pass is skipped entirely and the chain is that region alone (the
// zero-overhead forced path). An unknown forced region fails before any
// network activity.
func (c *Client) SendTransaction(ctx context.Context, payload []byte, opts SendOptions) (*route.Result, error) {
	if opts.SkipProbe && opts.Region == "" {
		return nil, fmt.Errorf("skip-probe requires a forced region")
	}
	if opts.Region != "" {
		if _, err := c.reg.Lookup(opts.Region); err != nil {
			return nil, err
		}
	}

	var measurements map[string]domain.Measurement
	if opts.SkipProbe {
		c.log.Debug().Str("region", opts.Region).Msg("probe skipped, forced region only")
		measurements = map[string]domain.Measurement{}
	} else {
		measurements = c.prober.Probe(ctx, c.reg.All())
	}

	order, err := route.Select(measurements, opts.Region)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Strs("chain", order.Regions).Msg("fallback chain built")

	return c.router.Submit(ctx, payload, order)
}
