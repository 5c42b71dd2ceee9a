// Package config loads process configuration from the environment. It is
// deliberately separate from the core packages (protocol, store, shard,
// cluster), which stay env/flag-agnostic and independently testable.
package config

import (
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"

	"github.com/Le-Stef/ferrumdb/internal/aof"
)

// Config is the process-wide configuration for one FerrumDB instance.
type Config struct {
	Bind                   string `env:"FERRUMDB_BIND" envDefault:"127.0.0.1:6379"`
	MetricsBind            string `env:"FERRUMDB_METRICS_BIND" envDefault:"127.0.0.1:9121"`
	Shards                 int    `env:"FERRUMDB_SHARDS" envDefault:"0"`
	AOFDir                 string `env:"FERRUMDB_AOF_DIR" envDefault:"."`
	SyncPolicyName         string `env:"FERRUMDB_SYNC_POLICY" envDefault:"everysec"`
	ActiveExpireSampleSize int    `env:"FERRUMDB_ACTIVE_EXPIRE_SAMPLE" envDefault:"20"`
	ActiveExpireEvery      int    `env:"FERRUMDB_ACTIVE_EXPIRE_EVERY" envDefault:"100"`
	InboxCapacity          int    `env:"FERRUMDB_INBOX_CAPACITY" envDefault:"1024"`
}

// Load parses Config from the environment. Shard count and sync policy are
// resolved to their runtime values separately, by ShardCount and SyncPolicy.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// ShardCount resolves the configured shard count to N = min(16, max(1,
// cores)) when Shards is 0 (auto-detect), per the fixed shard-count rule.
func (c Config) ShardCount() int {
	if c.Shards > 0 {
		return c.Shards
	}
	n := runtime.NumCPU()
	if n > 16 {
		n = 16
	}
	if n < 1 {
		n = 1
	}
	return n
}

// SyncPolicy resolves the configured policy name to an aof.SyncPolicy.
func (c Config) SyncPolicy() (aof.SyncPolicy, error) {
	return aof.ParseSyncPolicy(c.SyncPolicyName)
}
