// Package config defines the daemon configuration and its loader.
package config

import (
	"fmt"
	"net"
)

// Config is the full daemon configuration.
type Config struct {
	// Owner is the identity allowed to order, amend and cancel transfers.
	Owner string `mapstructure:"owner"`

	// LedgerAccount is the identity under which the queue holds funds.
	// Orders may not name it as their destination.
	LedgerAccount string `mapstructure:"ledger_account"`

	// DelaySeconds is the maturity delay applied to every order.
	DelaySeconds int64 `mapstructure:"delay_seconds"`

	// AllowZeroAmount permits zero-amount orders when true.
	AllowZeroAmount bool `mapstructure:"allow_zero_amount"`

	// DatabasePath is the directory holding the pebble state database.
	// Empty means run on an in-memory store.
	DatabasePath string `mapstructure:"database_path"`

	// Compression names the codec for persisted records ("lz4" or "none").
	Compression string `mapstructure:"compression"`

	// HistoryPath is the sqlite event archive location. Empty disables the
	// archive; ":memory:" keeps it ephemeral.
	HistoryPath string `mapstructure:"history_path"`

	// GRPC configures the operation API server.
	GRPC GRPCConfig `mapstructure:"grpc"`

	// Feed configures the WebSocket event feed.
	Feed FeedConfig `mapstructure:"feed"`

	// Genesis seeds balances on first start. Ignored once the state
	// database holds balances.
	Genesis []GenesisEntry `mapstructure:"genesis"`

	configPath string
}

// GRPCConfig configures the gRPC listener.
type GRPCConfig struct {
	Address string `mapstructure:"address"`
}

// FeedConfig configures the WebSocket event feed listener.
type FeedConfig struct {
	// Enabled turns the feed on.
	Enabled bool `mapstructure:"enabled"`

	Address string `mapstructure:"address"`
}

// GenesisEntry seeds one holding of the queue account.
type GenesisEntry struct {
	// Asset is "native" or a token contract identifier.
	Asset string `mapstructure:"asset"`

	Amount uint64 `mapstructure:"amount"`
}

// GetConfigPath returns the path the config was loaded from.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if c.LedgerAccount == "" {
		return fmt.Errorf("ledger_account is required")
	}
	if c.Owner == c.LedgerAccount {
		return fmt.Errorf("owner and ledger_account must differ")
	}
	if c.DelaySeconds <= 0 {
		return fmt.Errorf("delay_seconds must be positive")
	}
	if c.Compression != "lz4" && c.Compression != "none" {
		return fmt.Errorf("compression must be lz4 or none, got %q", c.Compression)
	}
	if _, _, err := net.SplitHostPort(c.GRPC.Address); err != nil {
		return fmt.Errorf("invalid grpc address: %w", err)
	}
	if c.Feed.Enabled {
		if _, _, err := net.SplitHostPort(c.Feed.Address); err != nil {
			return fmt.Errorf("invalid feed address: %w", err)
		}
	}
	for i, g := range c.Genesis {
		if g.Amount == 0 {
			return fmt.Errorf("genesis entry %d: amount must be positive", i)
		}
	}
	return nil
}
