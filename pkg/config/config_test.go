package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.App.Port != ":3000" {
		t.Errorf("Default port = %q, want :3000", cfg.App.Port)
	}
	if cfg.App.CORSOrigin != "*" {
		t.Errorf("Default CORS origin = %q, want *", cfg.App.CORSOrigin)
	}
	if cfg.Market.OpenTime != "08:00" || cfg.Market.CloseTime != "21:00" {
		t.Errorf("Default market window = %s-%s, want 08:00-21:00", cfg.Market.OpenTime, cfg.Market.CloseTime)
	}
	if cfg.Market.Timezone != "America/New_York" {
		t.Errorf("Default timezone = %q", cfg.Market.Timezone)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Default redis addr = %q", cfg.Redis.Addr)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("Kafka brokers default to empty (journal disabled), got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topic != "vote_events" {
		t.Errorf("Default kafka topic = %q", cfg.Kafka.Topic)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Encoding != "json" {
		t.Errorf("Default logger = %s/%s, want info/json", cfg.Logger.Level, cfg.Logger.Encoding)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":8080")
	t.Setenv("MARKET_OPEN_TIME", "09:00")
	t.Setenv("MARKET_CLOSE_TIME", "17:00")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("LOGGER_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.App.Port != ":8080" {
		t.Errorf("APP_PORT override lost, got %q", cfg.App.Port)
	}
	if cfg.Market.OpenTime != "09:00" || cfg.Market.CloseTime != "17:00" {
		t.Errorf("Market window override lost, got %s-%s", cfg.Market.OpenTime, cfg.Market.CloseTime)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("REDIS_ADDR override lost, got %q", cfg.Redis.Addr)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "kafka-1:9092" {
		t.Errorf("KAFKA_BROKERS must split on commas, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("LOGGER_LEVEL override lost, got %q", cfg.Logger.Level)
	}
}

func TestLoadConfig_InvalidClockTime(t *testing.T) {
	t.Setenv("MARKET_OPEN_TIME", "8am")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("Malformed market.open_time must be rejected")
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "debug", Encoding: "console"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Configured level must be applied")
	}

	if _, err := NewLogger(LoggerConfig{Level: "verbose", Encoding: "json"}); err == nil {
		t.Error("Unknown levels must be rejected")
	}
}
