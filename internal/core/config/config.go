package config

import (
	"time"

	"github.com/vietddude/fridgechef/internal/genai"
	redisclient "github.com/vietddude/fridgechef/internal/infra/redis"
	"github.com/vietddude/fridgechef/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	GenAI    genai.Config       `yaml:"genai"`
	Database postgres.Config    `yaml:"database"`
	Redis    redisclient.Config `yaml:"redis"`
	Quota    QuotaConfig        `yaml:"quota"`
	Cache    CacheConfig        `yaml:"cache"`
	History  HistoryConfig      `yaml:"history"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP and gRPC listener settings.
type ServerConfig struct {
	Port     int `yaml:"port"`
	GRPCPort int `yaml:"grpc_port"` // 0 = disabled
}

// QuotaConfig limits model calls per user.
type QuotaConfig struct {
	DailyGenerations int `yaml:"daily_generations"` // 0 = unlimited
}

// CacheConfig controls the generated recipe cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// HistoryConfig controls how long interaction history is kept.
type HistoryConfig struct {
	Retention time.Duration `yaml:"retention"` // 0 = keep forever
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
