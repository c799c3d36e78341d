package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServiceName != "meridian" {
		t.Fatalf("service = %q", cfg.ServiceName)
	}
	if cfg.Publisher != "log" {
		t.Fatalf("publisher = %q, want broker-less default", cfg.Publisher)
	}
	if cfg.SyncInterval != 5*time.Minute || cfg.SyncLookback != time.Hour {
		t.Fatalf("sync timing = %v/%v", cfg.SyncInterval, cfg.SyncLookback)
	}
	if cfg.OutboxIdleDelay != 2*time.Second || cfg.OutboxFaultDelay != 5*time.Second {
		t.Fatalf("outbox delays = %v/%v", cfg.OutboxIdleDelay, cfg.OutboxFaultDelay)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
service:
  name: file-name
  http_port: "9000"
publisher:
  mode: kafka
  event_topic: file.events
cloud_sync:
  url: https://file.example
  timeout_seconds: 5
dependencies:
  kafka_brokers:
    - file-broker:9092
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVICE_NAME", "env-name")
	t.Setenv("CLOUD_SYNC_URL", "https://env.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServiceName != "env-name" {
		t.Fatalf("service = %q, env must win", cfg.ServiceName)
	}
	if cfg.HTTPPort != "9000" {
		t.Fatalf("port = %q, file must apply when env is silent", cfg.HTTPPort)
	}
	if cfg.Publisher != "kafka" || cfg.EventTopic != "file.events" {
		t.Fatalf("publisher = %q/%q", cfg.Publisher, cfg.EventTopic)
	}
	if cfg.CloudSyncURL != "https://env.example" {
		t.Fatalf("cloud url = %q, env must win", cfg.CloudSyncURL)
	}
	if cfg.CloudSyncTimeout != 5*time.Second {
		t.Fatalf("cloud timeout = %v", cfg.CloudSyncTimeout)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "file-broker:9092" {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
}

func TestLoadRejectsUnknownPublisher(t *testing.T) {
	t.Setenv("PUBLISHER", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown publisher mode")
	}
}
