package cliconfig

import "os"

// ApplyEnvConfig applies configuration from BAMROUTE_* environment
// variables. Env overrides the file but loses to explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setDuration("probe-timeout", os.Getenv("BAMROUTE_PROBE_TIMEOUT"), &cfg.ProbeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("BAMROUTE_SUBMIT_TIMEOUT"), &cfg.SubmitTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("probe-samples", os.Getenv("BAMROUTE_PROBE_SAMPLES"), &cfg.ProbeSamples); err != nil {
		return err
	}
	if err := s.setIntFromString("max-attempts", os.Getenv("BAMROUTE_MAX_ATTEMPTS"), &cfg.MaxAttempts); err != nil {
		return err
	}

	s.setString("encoding", os.Getenv("BAMROUTE_ENCODING"), &cfg.Encoding)
	s.setString("commitment", os.Getenv("BAMROUTE_PREFLIGHT_COMMITMENT"), &cfg.PreflightCommitment)
	s.setString("region", os.Getenv("BAMROUTE_REGION"), &cfg.Region)
	s.setString("spool-dir", os.Getenv("BAMROUTE_SPOOL_DIR"), &cfg.SpoolDir)
	s.setBoolFromString("skip-preflight", os.Getenv("BAMROUTE_SKIP_PREFLIGHT"), &cfg.SkipPreflight)

	return nil
}
