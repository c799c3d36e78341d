package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// Publisher selects the outbox event publisher: "kafka" or "log".
	Publisher    string
	KafkaBrokers []string
	EventTopic   string
	TopicByEvent map[string]string

	CloudSyncURL     string
	CloudSyncTimeout time.Duration
	SyncInterval     time.Duration
	SyncLookback     time.Duration

	OutboxIdleDelay  time.Duration
	OutboxFaultDelay time.Duration

	NotifyTimeout time.Duration
}

type configFile struct {
	Service struct {
		Name     string `yaml:"name"`
		HTTPPort string `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresDSN  string   `yaml:"postgres_dsn"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Publisher struct {
		Mode         string            `yaml:"mode"`
		EventTopic   string            `yaml:"event_topic"`
		TopicByEvent map[string]string `yaml:"topic_by_event"`
	} `yaml:"publisher"`
	CloudSync struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"cloud_sync"`
}

// Load builds config from environment variables with an optional YAML file
// (CONFIG_FILE) merged underneath; env always wins.
func Load() (Config, error) {
	cfg := Config{
		ServiceName:      "meridian",
		HTTPPort:         "8080",
		Publisher:        "log",
		EventTopic:       "meridian.events",
		CloudSyncTimeout: 30 * time.Second,
		SyncInterval:     5 * time.Minute,
		SyncLookback:     time.Hour,
		OutboxIdleDelay:  2 * time.Second,
		OutboxFaultDelay: 5 * time.Second,
		NotifyTimeout:    10 * time.Second,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var f configFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		if f.Service.Name != "" {
			cfg.ServiceName = f.Service.Name
		}
		if f.Service.HTTPPort != "" {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresDSN != "" {
			cfg.PostgresDSN = f.Dependencies.PostgresDSN
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Publisher.Mode != "" {
			cfg.Publisher = f.Publisher.Mode
		}
		if f.Publisher.EventTopic != "" {
			cfg.EventTopic = f.Publisher.EventTopic
		}
		if len(f.Publisher.TopicByEvent) > 0 {
			cfg.TopicByEvent = f.Publisher.TopicByEvent
		}
		if f.CloudSync.URL != "" {
			cfg.CloudSyncURL = f.CloudSync.URL
		}
		if f.CloudSync.TimeoutSeconds > 0 {
			cfg.CloudSyncTimeout = time.Duration(f.CloudSync.TimeoutSeconds) * time.Second
		}
	}

	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		cfg.HTTPPort = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("PUBLISHER"); v != "" {
		cfg.Publisher = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("EVENT_TOPIC"); v != "" {
		cfg.EventTopic = v
	}
	if v := os.Getenv("CLOUD_SYNC_URL"); v != "" {
		cfg.CloudSyncURL = v
	}
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SYNC_INTERVAL: %w", err)
		}
		cfg.SyncInterval = d
	}
	if v := os.Getenv("SYNC_LOOKBACK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SYNC_LOOKBACK: %w", err)
		}
		cfg.SyncLookback = d
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) > 0 {
		cfg.KafkaBrokers = brokers
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}

	if cfg.Publisher != "kafka" && cfg.Publisher != "log" {
		return Config{}, fmt.Errorf("unknown publisher mode %q", cfg.Publisher)
	}
	return cfg, nil
}
