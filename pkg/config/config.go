package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Market MarketConfig `mapstructure:"market"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Logger LoggerConfig `mapstructure:"logger"`
}

type AppConfig struct {
	Port       string `mapstructure:"port"`
	Env        string `mapstructure:"env"` // e.g., "local", "prod"
	CORSOrigin string `mapstructure:"cors_origin"`
}

type MarketConfig struct {
	OpenTime   string `mapstructure:"open_time"`  // "08:00"
	CloseTime  string `mapstructure:"close_time"` // "21:00"
	Timezone   string `mapstructure:"timezone"`
	RosterFile string `mapstructure:"roster_file"` // optional JSON seed, built-in roster when empty
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"` // "console" or "json"
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Load .env file into System Environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Set Defaults (12-Factor App: Dev/Prod Parity)
	v.SetDefault("app.port", ":3000")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.cors_origin", "*")

	v.SetDefault("market.open_time", "08:00")
	v.SetDefault("market.close_time", "21:00")
	v.SetDefault("market.timezone", "America/New_York")
	v.SetDefault("market.roster_file", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "vote_events")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	// 3. Configure Viper to read Environment Variables
	// Maps dot-notation to underscores (e.g., "app.port" -> "APP_PORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Explicitly Bind Env Vars to Keys
	// Crucial for Viper to map flat Env Vars (APP_PORT) to nested structs (App.Port)
	bindEnv(v, "app.port", "app.env", "app.cors_origin")
	bindEnv(v, "market.open_time", "market.close_time", "market.timezone", "market.roster_file")
	bindEnv(v, "redis.addr", "redis.password", "redis.db")
	bindEnv(v, "kafka.brokers", "kafka.topic")
	bindEnv(v, "logger.level", "logger.encoding")

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	// 6. Basic Validation
	if err := validateClockTime(cfg.Market.OpenTime); err != nil {
		return nil, fmt.Errorf("market.open_time: %w", err)
	}
	if err := validateClockTime(cfg.Market.CloseTime); err != nil {
		return nil, fmt.Errorf("market.close_time: %w", err)
	}

	return &cfg, nil
}

func validateClockTime(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return fmt.Errorf("expected HH:MM, got %q", s)
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
