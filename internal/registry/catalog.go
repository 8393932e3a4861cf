package registry

import "github.com/bam-labs/bamroute/internal/domain"

// FallbackTxURL is the catch-all testnet submission endpoint used for
// regions that do not expose their own; the provider routes it to a region
// of its choosing.
const FallbackTxURL = "https://testnet.block-engine.jito.wtf/api/v1/transactions"

// defaultCatalog is the built-in BAM testnet region set. A [[regions]]
// table in the config file replaces it entirely.
var defaultCatalog = []domain.Region{
	{
		Code:     "ny",
		Label:    "New York",
		ProbeURL: "http://ny.testnet.bam.jito.wtf",
		TxURL:    "https://ny.testnet.block-engine.jito.wtf/api/v1/transactions",
	},
	{
		Code:     "dallas",
		Label:    "Dallas",
		ProbeURL: "http://dallas.testnet.bam.jito.wtf",
		TxURL:    "https://dallas.testnet.block-engine.jito.wtf/api/v1/transactions",
	},
	{
		Code:     "slc",
		Label:    "Salt Lake City",
		ProbeURL: "http://slc.testnet.bam.jito.wtf",
		// No region-local tx endpoint exposed yet; falls back.
	},
}

// Default returns a registry over the built-in catalog.
func Default() *Registry {
	r, err := New(defaultCatalog, FallbackTxURL)
	if err != nil {
		// The built-in catalog is code-reviewed data; a duplicate here
		// is a programming error.
		panic(err)
	}
	return r
}
