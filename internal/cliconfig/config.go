// Package cliconfig layers bamroute configuration the usual way:
// defaults, then the TOML config file, then BAMROUTE_* environment
// variables, then explicitly set flags, each overriding the last.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bam-labs/bamroute/internal/rpc"
)

// Config holds CLI configuration for bamroute.
type Config struct {
	ProbeTimeout time.Duration
	ProbeSamples int

	SubmitTimeout time.Duration
	MaxAttempts   int

	Encoding            string
	SkipPreflight       bool
	PreflightCommitment string

	// Region forces submissions to the named region by default.
	Region string

	// SpoolDir is the directory watched by the watch command.
	SpoolDir string

	// Regions replaces the built-in catalog when nonempty.
	Regions []RegionConfig
}

// RegionConfig is one catalog entry as configured.
type RegionConfig struct {
	Code     string `toml:"code"`
	Label    string `toml:"label"`
	ProbeURL string `toml:"probe_url"`
	TxURL    string `toml:"tx_url"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ProbeTimeout:        750 * time.Millisecond,
		ProbeSamples:        3,
		SubmitTimeout:       30 * time.Second,
		MaxAttempts:         0, // full chain
		Encoding:            string(rpc.EncodingAuto),
		PreflightCommitment: "confirmed",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	if c.ProbeSamples <= 0 {
		return fmt.Errorf("probe samples must be positive")
	}
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("submit timeout must be positive")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative")
	}
	if _, err := rpc.ParseEncoding(c.Encoding); err != nil {
		return err
	}
	for _, r := range c.Regions {
		if r.Code == "" {
			return fmt.Errorf("configured region missing code")
		}
		if r.ProbeURL == "" {
			return fmt.Errorf("region %q missing probe_url", r.Code)
		}
	}
	return nil
}

// configSetter applies configuration values while respecting flag
// precedence: values are skipped when the corresponding flag was set
// explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
