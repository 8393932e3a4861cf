package registry

import (
	"errors"
	"testing"

	"github.com/bam-labs/bamroute/internal/domain"
)

func TestNew_RejectsDuplicateCodes(t *testing.T) {
	_, err := New([]domain.Region{
		{Code: "ny", ProbeURL: "http://a", TxURL: "http://a/tx"},
		{Code: "ny", ProbeURL: "http://b", TxURL: "http://b/tx"},
	}, FallbackTxURL)
	if !errors.Is(err, domain.ErrDuplicateRegion) {
		t.Fatalf("expected ErrDuplicateRegion, got %v", err)
	}
}

func TestNew_SubstitutesFallbackTxURL(t *testing.T) {
	reg, err := New([]domain.Region{
		{Code: "slc", ProbeURL: "http://slc"},
	}, "http://fallback/tx")
	if err != nil {
		t.Fatal(err)
	}
	r, err := reg.Lookup("slc")
	if err != nil {
		t.Fatal(err)
	}
	if r.TxURL != "http://fallback/tx" {
		t.Fatalf("expected fallback tx url, got %q", r.TxURL)
	}
}

func TestLookup_UnknownCode(t *testing.T) {
	reg := Default()
	if _, err := reg.Lookup("atlantis"); !errors.Is(err, domain.ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}
}

func TestAll_SortedByCode(t *testing.T) {
	reg, err := New([]domain.Region{
		{Code: "slc", ProbeURL: "http://slc", TxURL: "http://slc/tx"},
		{Code: "dallas", ProbeURL: "http://dallas", TxURL: "http://dallas/tx"},
		{Code: "ny", ProbeURL: "http://ny", TxURL: "http://ny/tx"},
	}, FallbackTxURL)
	if err != nil {
		t.Fatal(err)
	}
	all := reg.All()
	want := []string{"dallas", "ny", "slc"}
	if len(all) != len(want) {
		t.Fatalf("expected %d regions, got %d", len(want), len(all))
	}
	for i, code := range want {
		if all[i].Code != code {
			t.Fatalf("position %d: expected %q, got %q", i, code, all[i].Code)
		}
	}
}

func TestDefault_HasThreeRegions(t *testing.T) {
	reg := Default()
	if reg.Len() != 3 {
		t.Fatalf("expected 3 built-in regions, got %d", reg.Len())
	}
	for _, r := range reg.All() {
		if r.TxURL == "" {
			t.Fatalf("region %s has no tx endpoint after construction", r.Code)
		}
	}
}
