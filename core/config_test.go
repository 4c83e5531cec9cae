package core

import (
	"context"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.DefaultChainID() != 1 {
		t.Fatalf("expected default chain 1, got %d", cfg.DefaultChainID())
	}
}

func TestConfigValidateRejectsBadChains(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chains = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty chains to be rejected")
	}

	cfg = DefaultConfig()
	cfg.Chains = []ChainConfig{{ID: 0, Name: "zero"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected chain id 0 to be rejected")
	}

	cfg = DefaultConfig()
	cfg.Chains = []ChainConfig{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected duplicate chain ids to be rejected")
	}
}

func TestResolveChainSynthesizesUnknownChains(t *testing.T) {
	cfg := DefaultConfig()
	chain := cfg.ResolveChain(1)
	if chain.Name != "Ethereum" {
		t.Fatalf("expected configured name, got %s", chain.Name)
	}
	chain = cfg.ResolveChain(31337)
	if chain.ID != 31337 || chain.Name != "Chain 31337" {
		t.Fatalf("expected synthesized descriptor, got %+v", chain)
	}
}

func TestCfgxConfigProviderAppliesLoadedValues(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"service_name": "wallet-test",
		"chains": []map[string]any{
			{"id": uint64(10), "name": "Optimism"},
		},
	}})

	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServiceName != "wallet-test" {
		t.Fatalf("expected loaded service name, got %s", cfg.ServiceName)
	}
	if len(cfg.Chains) != 1 || cfg.Chains[0].ID != 10 {
		t.Fatalf("expected loaded chains, got %+v", cfg.Chains)
	}
	if cfg.Storage.RecentConnectorKey == "" {
		t.Fatal("defaults should backfill unset sections")
	}
}

func TestGoOptionsResolverLayering(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{ServiceName: "from-config"}
	runtime := Config{Storage: StorageConfig{RecentConnectorKey: "runtime.key"}}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.ServiceName != "from-config" {
		t.Fatalf("config layer should override defaults, got %s", resolved.ServiceName)
	}
	if resolved.Storage.RecentConnectorKey != "runtime.key" {
		t.Fatalf("runtime layer should win, got %s", resolved.Storage.RecentConnectorKey)
	}
	if len(resolved.Chains) == 0 {
		t.Fatal("defaults should survive when no layer overrides chains")
	}
}

func TestGoOptionsResolverRuntimeOverridesConfig(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{ServiceName: "from-config"}
	runtime := Config{ServiceName: "from-runtime"}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.ServiceName != "from-runtime" {
		t.Fatalf("runtime layer should win, got %s", resolved.ServiceName)
	}
}
