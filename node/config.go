package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"rubin.dev/tokenbuy/consensus"
	"rubin.dev/tokenbuy/node/store"
)

type Config struct {
	DataDir            string `json:"data_dir" mapstructure:"data_dir"`
	StoreBackend       string `json:"store_backend" mapstructure:"store_backend"`
	LogLevel           string `json:"log_level" mapstructure:"log_level"`
	LogFormat          string `json:"log_format" mapstructure:"log_format"`
	LockCodeHash       string `json:"lock_code_hash" mapstructure:"lock_code_hash"`
	LegacyLockCodeHash string `json:"legacy_lock_code_hash" mapstructure:"legacy_lock_code_hash"`
	CacheSize          int    `json:"cache_size" mapstructure:"cache_size"`
	Workers            int    `json:"workers" mapstructure:"workers"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// DefaultLockCodeHash is the code hash the token-buy lock is registered under
// when none is configured.
const DefaultLockCodeHash = "0x7b00000000000000000000000000000000000000000000000000000000000000"

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".tokenbuy"
	}
	return filepath.Join(home, ".tokenbuy")
}

func DefaultConfig() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		StoreBackend: store.BackendBolt,
		LogLevel:     "info",
		LogFormat:    LogFormatConsole,
		LockCodeHash: DefaultLockCodeHash,
		CacheSize:    1024,
		Workers:      4,
	}
}

// ValidateConfig reports every problem in cfg, not just the first.
func ValidateConfig(cfg Config) error {
	var result *multierror.Error
	if strings.TrimSpace(cfg.DataDir) == "" {
		result = multierror.Append(result, errors.New("data_dir is required"))
	}
	switch cfg.StoreBackend {
	case store.BackendBolt, store.BackendPebble:
	default:
		result = multierror.Append(result, fmt.Errorf("invalid store_backend %q", cfg.StoreBackend))
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		result = multierror.Append(result, fmt.Errorf("invalid log_level %q", cfg.LogLevel))
	}
	switch cfg.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		result = multierror.Append(result, fmt.Errorf("invalid log_format %q", cfg.LogFormat))
	}
	lock, err := consensus.ParseHash(cfg.LockCodeHash)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid lock_code_hash: %w", err))
	}
	if strings.TrimSpace(cfg.LegacyLockCodeHash) != "" {
		legacy, err := consensus.ParseHash(cfg.LegacyLockCodeHash)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid legacy_lock_code_hash: %w", err))
		} else if legacy == lock {
			result = multierror.Append(result, errors.New("legacy_lock_code_hash must differ from lock_code_hash"))
		}
	}
	if cfg.CacheSize < 0 {
		result = multierror.Append(result, errors.New("cache_size must be >= 0"))
	}
	if cfg.Workers <= 0 {
		result = multierror.Append(result, errors.New("workers must be > 0"))
	}
	if cfg.Workers > 256 {
		result = multierror.Append(result, errors.New("workers must be <= 256"))
	}
	return result.ErrorOrNil()
}

// Registry builds the predicate registry cfg describes. cfg must be valid.
func (cfg Config) Registry() (*consensus.Registry, error) {
	reg := consensus.NewRegistry()
	lock, err := consensus.ParseHash(cfg.LockCodeHash)
	if err != nil {
		return nil, fmt.Errorf("lock_code_hash: %w", err)
	}
	reg.Register(lock, consensus.ValidateTokenBuyLock)
	if strings.TrimSpace(cfg.LegacyLockCodeHash) != "" {
		legacy, err := consensus.ParseHash(cfg.LegacyLockCodeHash)
		if err != nil {
			return nil, fmt.Errorf("legacy_lock_code_hash: %w", err)
		}
		reg.Register(legacy, consensus.ValidateLegacyTokenBuyLock)
	}
	return reg, nil
}

func (cfg Config) StoreOptions(log Loggers) store.Options {
	return store.Options{
		DataDir:   cfg.DataDir,
		Backend:   cfg.StoreBackend,
		CacheSize: cfg.CacheSize,
		Log:       log.Store,
	}
}
