package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dgraph-io/badger/v4"
	"github.com/urfave/cli/v3"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/slidewin/record"
	"github.com/zephyrtronium/slidewin/record/kvrecord"
	"github.com/zephyrtronium/slidewin/record/sqlrecord"
)

// Load loads a slidewin configuration from TOML.
func Load(r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	expandcfg(&cfg, os.Getenv)
	return &cfg, &md, nil
}

// loadConfig loads the configuration named by the config flag.
func loadConfig(cmd *cli.Command) (*Config, *toml.MetaData, error) {
	name := cmd.String("config")
	if name == "" {
		return nil, nil, fmt.Errorf("no config file; use -config")
	}
	r, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, md, err := Load(r)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, md, nil
}

// loadRecorder opens the scan history named in the config. The result is nil
// with a nil error when no history is configured. The Badger handle is
// non-nil only for the kv backend, for callers that run its value log GC;
// closing the recorder closes it.
func loadRecorder(ctx context.Context, cfg DBCfg) (record.Recorder, *badger.DB, error) {
	if cfg.Records != "" && cfg.KVRecords != "" {
		return nil, nil, fmt.Errorf("multiple history backends requested; use at most one")
	}
	switch {
	case cfg.KVRecords != "":
		slog.DebugContext(ctx, "using kv history", slog.String("path", cfg.KVRecords))
		opts := badger.DefaultOptions(cfg.KVRecords)
		opts = opts.WithLogger(nil)
		kv, err := badger.Open(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't open kv history: %w", err)
		}
		return kvrecord.New(kv), kv, nil
	case cfg.Records != "":
		slog.DebugContext(ctx, "using sql history", slog.String("dsn", cfg.Records))
		pool, err := sqlitex.NewPool(cfg.Records, sqlitex.PoolOptions{})
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't open sql history: %w", err)
		}
		rec, err := sqlrecord.Open(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("couldn't open recorder: %w", err)
		}
		return rec, nil, nil
	default:
		return nil, nil, nil
	}
}

// Config is a slidewin configuration.
type Config struct {
	// Listen is the address serving scans and metrics.
	Listen string `toml:"listen"`
	// DB is the table of scan history stores.
	DB DBCfg `toml:"db"`
	// Rate is the per-connection request rate limit.
	Rate Rate `toml:"rate"`
}

// DBCfg is the configuration of scan history stores.
type DBCfg struct {
	// Records is the SQLite DSN of the scan history.
	Records string `toml:"records"`
	// KVRecords is the Badger directory of the scan history. At most one of
	// Records and KVRecords may be set.
	KVRecords string `toml:"kvrecords"`
}

// Rate is a rate limit configuration.
type Rate struct {
	Every float64 `toml:"every"`
	Num   int     `toml:"num"`
}

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.Listen,
		&cfg.DB.Records,
		&cfg.DB.KVRecords,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
}
