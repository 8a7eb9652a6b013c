package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr        string
	KafkaEnabled      bool
	KafkaBrokers      []string
	FeedTopic         string
	OutboxTopic       string
	JournalDir        string
	OutboxDir         string
	BroadcastInterval time.Duration
}

// Load reads configuration from the environment, with an optional .env
// file for local runs. Missing keys fall back to local defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:        ":8080",
		KafkaBrokers:      []string{"localhost:9092"},
		FeedTopic:         "trades",
		OutboxTopic:       "trades.audit",
		JournalDir:        "./journal",
		OutboxDir:         "./outbox",
		BroadcastInterval: 250 * time.Millisecond,
	}

	if v := os.Getenv("FLOE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("FLOE_KAFKA_ENABLED"); v == "1" || strings.EqualFold(v, "true") {
		cfg.KafkaEnabled = true
	}
	if v := os.Getenv("FLOE_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv("FLOE_FEED_TOPIC"); v != "" {
		cfg.FeedTopic = v
	}
	if v := os.Getenv("FLOE_OUTBOX_TOPIC"); v != "" {
		cfg.OutboxTopic = v
	}
	if v := os.Getenv("FLOE_JOURNAL_DIR"); v != "" {
		cfg.JournalDir = v
	}
	if v := os.Getenv("FLOE_OUTBOX_DIR"); v != "" {
		cfg.OutboxDir = v
	}
	if v := os.Getenv("FLOE_BROADCAST_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("[config] bad FLOE_BROADCAST_INTERVAL %q: %v", v, err)
		} else {
			cfg.BroadcastInterval = d
		}
	}
	return cfg
}
