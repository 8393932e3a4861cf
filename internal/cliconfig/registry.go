package cliconfig

import (
	"github.com/bam-labs/bamroute/internal/domain"
	"github.com/bam-labs/bamroute/internal/registry"
)

// BuildRegistry constructs the region catalog: the configured [[regions]]
// table when present, the built-in testnet catalog otherwise.
func BuildRegistry(cfg Config) (*registry.Registry, error) {
	if len(cfg.Regions) == 0 {
		return registry.Default(), nil
	}
	regions := make([]domain.Region, 0, len(cfg.Regions))
	for _, rc := range cfg.Regions {
		regions = append(regions, domain.Region{
			Code:     rc.Code,
			Label:    rc.Label,
			ProbeURL: rc.ProbeURL,
			TxURL:    rc.TxURL,
		})
	}
	return registry.New(regions, registry.FallbackTxURL)
}
