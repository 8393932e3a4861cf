package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
probe_timeout = "200ms"
probe_samples = 5
submit_timeout = "10s"
max_attempts = 2
encoding = "base58"
skip_preflight = true
preflight_commitment = "processed"
region = "dallas"
spool_dir = "/var/spool/bamroute"

[[regions]]
code = "fra"
label = "Frankfurt"
probe_url = "http://fra.example.com"
tx_url = "http://fra.example.com/tx"

[[regions]]
code = "ams"
label = "Amsterdam"
probe_url = "http://ams.example.com"
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatal(err)
	}

	if cfg.ProbeTimeout != 200*time.Millisecond {
		t.Fatalf("probe timeout: got %v", cfg.ProbeTimeout)
	}
	if cfg.ProbeSamples != 5 {
		t.Fatalf("probe samples: got %d", cfg.ProbeSamples)
	}
	if cfg.SubmitTimeout != 10*time.Second {
		t.Fatalf("submit timeout: got %v", cfg.SubmitTimeout)
	}
	if cfg.MaxAttempts != 2 {
		t.Fatalf("max attempts: got %d", cfg.MaxAttempts)
	}
	if cfg.Encoding != "base58" {
		t.Fatalf("encoding: got %q", cfg.Encoding)
	}
	if !cfg.SkipPreflight {
		t.Fatal("expected skip_preflight true")
	}
	if cfg.PreflightCommitment != "processed" {
		t.Fatalf("commitment: got %q", cfg.PreflightCommitment)
	}
	if cfg.Region != "dallas" {
		t.Fatalf("region: got %q", cfg.Region)
	}
	if cfg.SpoolDir != "/var/spool/bamroute" {
		t.Fatalf("spool dir: got %q", cfg.SpoolDir)
	}
	if len(cfg.Regions) != 2 || cfg.Regions[0].Code != "fra" || cfg.Regions[1].Code != "ams" {
		t.Fatalf("regions table: got %+v", cfg.Regions)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}
}

func TestApplyFileConfig_RespectsChangedFlags(t *testing.T) {
	path := writeConfig(t, `
probe_timeout = "200ms"
region = "dallas"
`)
	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Region = "ny"
	changed := map[string]bool{"region": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatal(err)
	}

	if cfg.Region != "ny" {
		t.Fatalf("explicit flag must win over file, got %q", cfg.Region)
	}
	if cfg.ProbeTimeout != 200*time.Millisecond {
		t.Fatalf("unflagged setting should come from file, got %v", cfg.ProbeTimeout)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	path := writeConfig(t, `probe_timeout = "soon"`)
	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadFileConfig_MissingFile(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
