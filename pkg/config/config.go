package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/paperkite/paperkite/internal/broker/kite"
	"github.com/paperkite/paperkite/internal/stream"
	"github.com/paperkite/paperkite/pkg/questdb"
	"github.com/paperkite/paperkite/pkg/redis"
)

// Config represents the application configuration.
type Config struct {
	App       AppConfig           `envPrefix:"APP_"`
	Kite      kite.Config         `envPrefix:"KITE_"`
	QuestDB   questdb.Config      `envPrefix:"QUESTDB_"`
	Redis     redis.Config        `envPrefix:"REDIS_"`
	Feed      stream.TickerConfig `envPrefix:"FEED_"`
	TickKafka TickKafkaConfig     `envPrefix:"TICK_KAFKA_"`
	Sim       SimConfig           `envPrefix:"SIM_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"paperkite"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// TickKafkaConfig represents the raw tick topic configuration.
type TickKafkaConfig struct {
	Enabled       bool     `env:"ENABLED" envDefault:"false"`
	Brokers       []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic         string   `env:"TOPIC" envDefault:"ticks"`
	ConsumerGroup string   `env:"CONSUMER_GROUP" envDefault:"paperkite"`
	MaxRetries    int      `env:"MAX_RETRIES" envDefault:"3"`
}

// SimConfig represents the paper-trading session configuration.
type SimConfig struct {
	Symbol          string  `env:"SYMBOL" envDefault:"NIFTY 50"`
	InstrumentToken string  `env:"INSTRUMENT_TOKEN" envDefault:"256265"`
	Exchange        string  `env:"EXCHANGE" envDefault:"NFO"`
	Underlying      string  `env:"UNDERLYING" envDefault:"NIFTY"`
	InitialCapital  float64 `env:"INITIAL_CAPITAL" envDefault:"1000000"`
	TradeQuantity   int64   `env:"TRADE_QUANTITY" envDefault:"1"`
	TickBufferSize  int     `env:"TICK_BUFFER_SIZE" envDefault:"5000"`
	EvalIntervalMS  int     `env:"EVAL_INTERVAL_MS" envDefault:"1000"`
	HistoryDays     int     `env:"HISTORY_DAYS" envDefault:"60"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
