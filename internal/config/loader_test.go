package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lowsodiumd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
owner = "alice"
ledger_account = "vault"
delay_seconds = 3600
database_path = "/tmp/lowsodiumd"
history_path = ":memory:"

[grpc]
address = "127.0.0.1:9999"

[feed]
enabled = true
address = "127.0.0.1:6006"

[[genesis]]
asset = "native"
amount = 100000
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Owner)
	assert.Equal(t, "vault", cfg.LedgerAccount)
	assert.Equal(t, int64(3600), cfg.DelaySeconds)
	assert.Equal(t, "127.0.0.1:9999", cfg.GRPC.Address)
	assert.True(t, cfg.Feed.Enabled)
	require.Len(t, cfg.Genesis, 1)
	assert.Equal(t, uint64(100000), cfg.Genesis[0].Amount)
	// Defaults fill what the file omits.
	assert.Equal(t, "lz4", cfg.Compression)
	assert.False(t, cfg.AllowZeroAmount)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
owner = "alice"
ledger_account = "vault"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(86400), cfg.DelaySeconds)
	assert.Equal(t, "127.0.0.1:50051", cfg.GRPC.Address)
	assert.False(t, cfg.Feed.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Owner:         "alice",
		LedgerAccount: "vault",
		DelaySeconds:  86400,
		Compression:   "lz4",
		GRPC:          GRPCConfig{Address: "127.0.0.1:50051"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing owner", func(c *Config) { c.Owner = "" }},
		{"missing ledger account", func(c *Config) { c.LedgerAccount = "" }},
		{"owner equals ledger account", func(c *Config) { c.LedgerAccount = "alice" }},
		{"zero delay", func(c *Config) { c.DelaySeconds = 0 }},
		{"negative delay", func(c *Config) { c.DelaySeconds = -1 }},
		{"unknown compression", func(c *Config) { c.Compression = "zstd" }},
		{"bad grpc address", func(c *Config) { c.GRPC.Address = "nope" }},
		{"bad feed address", func(c *Config) { c.Feed = FeedConfig{Enabled: true, Address: "nope"} }},
		{"zero genesis amount", func(c *Config) { c.Genesis = []GenesisEntry{{Asset: "native", Amount: 0}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
