package otel

import (
	"context"
	"testing"
)

func TestConfigFromEnv(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		t.Setenv("OTEL_SERVICE_NAME", "")
		t.Setenv("OTEL_ENABLED", "")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

		cfg := ConfigFromEnv()

		if cfg.ServiceName != "idman-gateway" {
			t.Errorf("expected ServiceName 'idman-gateway', got %s", cfg.ServiceName)
		}
		if !cfg.Enabled {
			t.Error("expected Enabled to be true by default")
		}
		if cfg.OTLPEndpoint != "http://localhost:4318" {
			t.Errorf("unexpected default endpoint %s", cfg.OTLPEndpoint)
		}
	})

	t.Run("disabled via env", func(t *testing.T) {
		t.Setenv("OTEL_ENABLED", "false")

		cfg := ConfigFromEnv()
		if cfg.Enabled {
			t.Error("expected Enabled to be false")
		}
	})
}

func TestInitProvider_Disabled(t *testing.T) {
	cfg := Config{
		ServiceName:  "test",
		Enabled:      false,
		OTLPEndpoint: "http://localhost:4318",
	}

	shutdown, err := InitProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown returned error: %v", err)
	}
}
