package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (lowsodiumd.toml)
// 3. Environment variables (LOWSODIUM_ prefix)
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		if err := loadConfigFile(v, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	v.SetEnvPrefix("LOWSODIUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.configPath = configPath

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func loadConfigFile(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("delay_seconds", 86400)
	v.SetDefault("allow_zero_amount", false)
	v.SetDefault("database_path", "")
	v.SetDefault("compression", "lz4")
	v.SetDefault("history_path", "")
	v.SetDefault("grpc.address", "127.0.0.1:50051")
	v.SetDefault("feed.enabled", false)
	v.SetDefault("feed.address", "127.0.0.1:6006")
}

// SaveExampleConfig writes an example configuration file.
func SaveExampleConfig(configPath string) error {
	v := viper.New()

	for key, value := range map[string]interface{}{
		"owner":             "alice",
		"ledger_account":    "vault",
		"delay_seconds":     86400,
		"allow_zero_amount": false,
		"database_path":     "/var/lib/lowsodiumd/db",
		"compression":       "lz4",
		"history_path":      "/var/lib/lowsodiumd/history.db",
		"grpc.address":      "127.0.0.1:50051",
		"feed.enabled":      true,
		"feed.address":      "127.0.0.1:6006",
	} {
		v.Set(key, value)
	}

	v.SetConfigFile(configPath)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}

	return nil
}
