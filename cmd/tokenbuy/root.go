package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rubin.dev/tokenbuy/node"
	"rubin.dev/tokenbuy/node/store"
)

// Version is stamped at build time.
var Version = "dev"

const envPrefix = "TOKENBUY"

// app carries the state every subcommand shares once the root has loaded config.
type app struct {
	v      *viper.Viper
	cfg    node.Config
	logs   node.Loggers
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}
	var cfgFile string

	root := &cobra.Command{
		Use:           "tokenbuy",
		Short:         "Verify token-buy escrow transactions against a local cell store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cfgFile)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	defaults := node.DefaultConfig()
	fs := root.PersistentFlags()
	fs.StringVar(&cfgFile, "config", "", "config file (json, yaml or toml)")
	fs.String("data-dir", defaults.DataDir, "data directory holding the cell store")
	fs.String("store-backend", defaults.StoreBackend, "cell store backend: bolt|pebble")
	fs.String("log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.String("log-format", defaults.LogFormat, "log format: console|json")
	fs.String("lock-code-hash", defaults.LockCodeHash, "code hash the token-buy lock is registered under")
	fs.String("legacy-lock-code-hash", "", "code hash of the single-cell legacy layout (optional)")
	fs.Int("cache-size", defaults.CacheSize, "cells kept in the read cache (0 disables)")
	fs.Int("workers", defaults.Workers, "concurrent verifications for verify-batch")
	for _, name := range []string{
		"data-dir", "store-backend", "log-level", "log-format",
		"lock-code-hash", "legacy-lock-code-hash", "cache-size", "workers",
	} {
		// config keys use the json names, so --data-dir binds data_dir.
		_ = a.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), fs.Lookup(name))
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newVerifyCmd(a),
		newVerifyBatchCmd(a),
		newCellsCmd(a),
		newScriptHashCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) load(cfgFile string) error {
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	var cfg node.Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := node.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logs, err := node.InitLogging(node.LogOptions{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: a.errOut})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logs = logs
	a.logs.CLI.Debug().
		Str("data_dir", cfg.DataDir).
		Str("backend", cfg.StoreBackend).
		Int("workers", cfg.Workers).
		Msg("config loaded")
	return nil
}

func (a *app) openStore() (*store.CellStore, error) {
	return store.Open(a.cfg.StoreOptions(a.logs))
}
