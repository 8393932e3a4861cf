package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to keep the TOML
// friendly.
type FileConfig struct {
	ProbeTimeout        string         `toml:"probe_timeout"`
	ProbeSamples        int            `toml:"probe_samples"`
	SubmitTimeout       string         `toml:"submit_timeout"`
	MaxAttempts         int            `toml:"max_attempts"`
	Encoding            string         `toml:"encoding"`
	SkipPreflight       *bool          `toml:"skip_preflight"`
	PreflightCommitment string         `toml:"preflight_commitment"`
	Region              string         `toml:"region"`
	SpoolDir            string         `toml:"spool_dir"`
	Regions             []RegionConfig `toml:"regions"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.bamroute/config.toml when the user home
// directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".bamroute", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values onto cfg, skipping settings whose
// flags were set explicitly.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setDuration("probe-timeout", fc.ProbeTimeout, &cfg.ProbeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.SubmitTimeout, &cfg.SubmitTimeout); err != nil {
		return err
	}
	s.setInt("probe-samples", fc.ProbeSamples, &cfg.ProbeSamples)
	s.setInt("max-attempts", fc.MaxAttempts, &cfg.MaxAttempts)
	s.setString("encoding", fc.Encoding, &cfg.Encoding)
	s.setBool("skip-preflight", fc.SkipPreflight, &cfg.SkipPreflight)
	s.setString("commitment", fc.PreflightCommitment, &cfg.PreflightCommitment)
	s.setString("region", fc.Region, &cfg.Region)
	s.setString("spool-dir", fc.SpoolDir, &cfg.SpoolDir)

	// The regions table has no flag counterpart; file wins when present.
	if len(fc.Regions) > 0 {
		cfg.Regions = fc.Regions
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
