package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultTopic is the Kafka topic outcome events are published to when
// KAFKA_TOPIC is unset.
const DefaultTopic = "transaction_events"

// Config carries the optional external sinks. Empty values disable the
// corresponding sink: without brokers events are discarded, without a DSN the
// final snapshots go only to stdout.
type Config struct {
	KafkaBrokers []string
	KafkaTopic   string
	PostgresDSN  string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present in the working directory.
func Load() Config {
	// a missing .env is not an error
	_ = godotenv.Load()

	cfg := Config{
		KafkaTopic:  os.Getenv("KAFKA_TOPIC"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = DefaultTopic
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	return cfg
}
