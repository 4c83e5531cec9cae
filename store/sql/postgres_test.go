package sqlstore

import (
	"testing"
	"time"
)

func TestPostgresConfig_Defaults(t *testing.T) {
	cfg := PostgresConfig{DSN: "postgres://localhost:5432/wallet"}

	if cfg.GetDriver() != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.GetDriver())
	}
	if cfg.GetServer() != "postgres://localhost:5432/wallet" {
		t.Fatalf("unexpected server: %q", cfg.GetServer())
	}
	if cfg.GetPingTimeout() != 5*time.Second {
		t.Fatalf("expected default ping timeout, got %v", cfg.GetPingTimeout())
	}
	if cfg.GetOtelIdentifier() != "go-wallet" {
		t.Fatalf("expected default otel identifier, got %q", cfg.GetOtelIdentifier())
	}

	cfg.PingTimeout = time.Second
	cfg.OtelIdentifier = "wallet-api"
	if cfg.GetPingTimeout() != time.Second {
		t.Fatalf("expected configured ping timeout, got %v", cfg.GetPingTimeout())
	}
	if cfg.GetOtelIdentifier() != "wallet-api" {
		t.Fatalf("expected configured otel identifier, got %q", cfg.GetOtelIdentifier())
	}
}

func TestNewPostgresClient_RequiresDSN(t *testing.T) {
	if _, err := NewPostgresClient(PostgresConfig{}); err == nil {
		t.Fatalf("expected dsn required error")
	}
}
