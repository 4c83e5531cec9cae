package core

import (
	"fmt"
	"strings"
)

type ChainConfig struct {
	ID   uint64 `koanf:"id" mapstructure:"id"`
	Name string `koanf:"name" mapstructure:"name"`
}

type StorageConfig struct {
	RecentConnectorKey string `koanf:"recent_connector_key" mapstructure:"recent_connector_key"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	Chains      []ChainConfig `koanf:"chains" mapstructure:"chains"`
	Storage     StorageConfig `koanf:"storage" mapstructure:"storage"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "wallet",
		Chains: []ChainConfig{
			{ID: 1, Name: "Ethereum"},
		},
		Storage: StorageConfig{
			RecentConnectorKey: "wallet.recent_connector_id",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if len(c.Chains) == 0 {
		return fmt.Errorf("core: at least one chain is required")
	}
	seen := map[uint64]struct{}{}
	for _, chain := range c.Chains {
		if chain.ID == 0 {
			return fmt.Errorf("core: chain id 0 is not valid")
		}
		if _, ok := seen[chain.ID]; ok {
			return fmt.Errorf("core: duplicate chain id %d", chain.ID)
		}
		seen[chain.ID] = struct{}{}
	}
	return nil
}

func (c Config) ChainByID(id ChainID) (Chain, bool) {
	for _, chain := range c.Chains {
		if ChainID(chain.ID) == id {
			return Chain{ID: ChainID(chain.ID), Name: chain.Name}, true
		}
	}
	return Chain{}, false
}

// ResolveChain returns the configured descriptor for id, or a
// synthesized one when the chain is unknown.
func (c Config) ResolveChain(id ChainID) Chain {
	if chain, ok := c.ChainByID(id); ok {
		return chain
	}
	return SynthesizeChain(id)
}

func (c Config) chainList() []Chain {
	out := make([]Chain, 0, len(c.Chains))
	for _, chain := range c.Chains {
		out = append(out, Chain{ID: ChainID(chain.ID), Name: chain.Name})
	}
	return out
}

// DefaultChainID is the chain the state starts on.
func (c Config) DefaultChainID() ChainID {
	if len(c.Chains) == 0 {
		return 0
	}
	return ChainID(c.Chains[0].ID)
}
