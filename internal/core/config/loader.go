package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// APIKeyEnv is consulted when genai.api_key is left empty.
const APIKeyEnv = "GEMINI_API_KEY"

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	var cfg AppConfig
	cfg.applyDefaults()
	return &cfg
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.GenAI.APIKey == "" {
		cfg.GenAI.APIKey = os.Getenv(APIKeyEnv)
	}
	cfg.GenAI = cfg.GenAI.WithDefaults()
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 6 * time.Hour
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
}

// Validate reports configuration that cannot start a server.
func (cfg *AppConfig) Validate() error {
	if strings.TrimSpace(cfg.GenAI.APIKey) == "" {
		return fmt.Errorf("genai.api_key is empty and %s is not set", APIKeyEnv)
	}
	if cfg.Quota.DailyGenerations < 0 {
		return fmt.Errorf("quota.daily_generations must not be negative")
	}
	if cfg.Server.GRPCPort != 0 && cfg.Server.GRPCPort == cfg.Server.Port {
		return fmt.Errorf("server.grpc_port must differ from server.port")
	}
	return nil
}
