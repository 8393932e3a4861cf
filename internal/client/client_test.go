package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bam-labs/bamroute/internal/domain"
	"github.com/bam-labs/bamroute/internal/registry"
	"github.com/bam-labs/bamroute/internal/route"
)

type fakeProber struct {
	measurements map[string]domain.Measurement
	calls        int
}

func (f *fakeProber) Probe(ctx context.Context, regions []domain.Region) map[string]domain.Measurement {
	f.calls++
	out := make(map[string]domain.Measurement, len(regions))
	for _, r := range regions {
		if m, ok := f.measurements[r.Code]; ok {
			out[r.Code] = m
		}
	}
	return out
}

type fakeRouter struct {
	gotOrder domain.Order
	result   *route.Result
	err      error
}

func (f *fakeRouter) Submit(ctx context.Context, payload []byte, order domain.Order) (*route.Result, error) {
	f.gotOrder = order
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &route.Result{Region: order.Fastest(), Response: json.RawMessage(`"sig"`)}, nil
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]domain.Region{
		{Code: "dallas", Label: "Dallas", ProbeURL: "http://dallas", TxURL: "http://dallas/tx"},
		{Code: "ny", Label: "New York", ProbeURL: "http://ny", TxURL: "http://ny/tx"},
		{Code: "slc", Label: "Salt Lake City", ProbeURL: "http://slc"},
	}, registry.FallbackTxURL)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func okIn(d time.Duration) domain.Measurement {
	return domain.Measurement{OK: true, RTT: d, ProbedAt: time.Now()}
}

func TestListRegions_SelectionOrderAndFastestMarker(t *testing.T) {
	prober := &fakeProber{measurements: map[string]domain.Measurement{
		"ny":     okIn(40 * time.Millisecond),
		"dallas": okIn(10 * time.Millisecond),
		"slc":    {Err: "timeout", ProbedAt: time.Now()},
	}}
	c := New(newTestRegistry(t), prober, &fakeRouter{}, zerolog.Nop())

	statuses, err := c.ListRegions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].Region.Code != "dallas" || !statuses[0].Fastest {
		t.Fatalf("expected dallas fastest first, got %+v", statuses[0])
	}
	if statuses[1].Fastest || statuses[2].Fastest {
		t.Fatal("only position 0 may carry the fastest marker")
	}
	if statuses[2].Region.Code != "slc" || statuses[2].Measurement.OK {
		t.Fatalf("expected unreachable slc last, got %+v", statuses[2])
	}
}

func TestListRegions_FreshProbeEveryCall(t *testing.T) {
	prober := &fakeProber{measurements: map[string]domain.Measurement{
		"ny": okIn(time.Millisecond), "dallas": okIn(time.Millisecond), "slc": okIn(time.Millisecond),
	}}
	c := New(newTestRegistry(t), prober, &fakeRouter{}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := c.ListRegions(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if prober.calls != 3 {
		t.Fatalf("expected 3 probe passes, got %d", prober.calls)
	}
}

func TestSendTransaction_ProbesThenRoutes(t *testing.T) {
	prober := &fakeProber{measurements: map[string]domain.Measurement{
		"ny":     okIn(5 * time.Millisecond),
		"dallas": okIn(50 * time.Millisecond),
		"slc":    okIn(20 * time.Millisecond),
	}}
	router := &fakeRouter{}
	c := New(newTestRegistry(t), prober, router, zerolog.Nop())

	res, err := c.SendTransaction(context.Background(), []byte("tx"), SendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Region != "ny" {
		t.Fatalf("expected fastest region ny to win, got %s", res.Region)
	}
	want := []string{"ny", "slc", "dallas"}
	for i, code := range want {
		if router.gotOrder.Regions[i] != code {
			t.Fatalf("chain position %d: expected %s, got %s", i, code, router.gotOrder.Regions[i])
		}
	}
}

func TestSendTransaction_OverrideStillProbesForFallback(t *testing.T) {
	prober := &fakeProber{measurements: map[string]domain.Measurement{
		"ny":     okIn(5 * time.Millisecond),
		"dallas": okIn(50 * time.Millisecond),
		"slc":    okIn(20 * time.Millisecond),
	}}
	router := &fakeRouter{}
	c := New(newTestRegistry(t), prober, router, zerolog.Nop())

	if _, err := c.SendTransaction(context.Background(), []byte("tx"), SendOptions{Region: "dallas"}); err != nil {
		t.Fatal(err)
	}
	if prober.calls != 1 {
		t.Fatalf("expected probing to still run with an override, got %d passes", prober.calls)
	}
	if router.gotOrder.Fastest() != "dallas" {
		t.Fatalf("expected override at position 0, got %s", router.gotOrder.Fastest())
	}
	if router.gotOrder.Len() != 3 {
		t.Fatalf("expected full chain behind the override, got %v", router.gotOrder.Regions)
	}
}

func TestSendTransaction_SkipProbeForcedPath(t *testing.T) {
	prober := &fakeProber{}
	router := &fakeRouter{}
	c := New(newTestRegistry(t), prober, router, zerolog.Nop())

	if _, err := c.SendTransaction(context.Background(), []byte("tx"), SendOptions{Region: "slc", SkipProbe: true}); err != nil {
		t.Fatal(err)
	}
	if prober.calls != 0 {
		t.Fatalf("expected zero probe passes on the forced path, got %d", prober.calls)
	}
	if router.gotOrder.Len() != 1 || router.gotOrder.Fastest() != "slc" {
		t.Fatalf("expected single-region chain [slc], got %v", router.gotOrder.Regions)
	}
}

func TestSendTransaction_SkipProbeWithoutRegionRejected(t *testing.T) {
	c := New(newTestRegistry(t), &fakeProber{}, &fakeRouter{}, zerolog.Nop())
	if _, err := c.SendTransaction(context.Background(), []byte("tx"), SendOptions{SkipProbe: true}); err == nil {
		t.Fatal("expected an error for skip-probe without a forced region")
	}
}

func TestSendTransaction_UnknownOverrideFailsBeforeProbing(t *testing.T) {
	prober := &fakeProber{}
	c := New(newTestRegistry(t), prober, &fakeRouter{}, zerolog.Nop())

	_, err := c.SendTransaction(context.Background(), []byte("tx"), SendOptions{Region: "atlantis"})
	if !errors.Is(err, domain.ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}
	if prober.calls != 0 {
		t.Fatal("expected no probing for an unknown override")
	}
}

func TestSendTransaction_RouterErrorPropagates(t *testing.T) {
	prober := &fakeProber{measurements: map[string]domain.Measurement{
		"ny": okIn(time.Millisecond), "dallas": okIn(time.Millisecond), "slc": okIn(time.Millisecond),
	}}
	wantErr := &domain.ExhaustedError{Attempts: []domain.Attempt{{Region: "ny"}}}
	c := New(newTestRegistry(t), prober, &fakeRouter{err: wantErr}, zerolog.Nop())

	_, err := c.SendTransaction(context.Background(), []byte("tx"), SendOptions{})
	var ex *domain.ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected ExhaustedError to propagate, got %v", err)
	}
}
