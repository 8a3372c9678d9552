// Package config loads the resolver configuration from flags, environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bidon15/lotteryresolver/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyRPCURL         = "rpc_url"
	KeyPrivateKey     = "private_key"
	KeyLotteryAddress = "lottery_address"
	KeyHeadMode       = "head_mode"
	KeyPollInterval   = "poll_interval"
	KeyTxTimeout      = "tx_timeout"
	KeyMetricsAddr    = "metrics_addr"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
)

// EnvPrefix prefixes every environment variable the resolver reads.
const EnvPrefix = "RESOLVER"

// DefaultConfigName is the config file looked up when none is given.
const DefaultConfigName = "resolver"

// Defaults
const (
	DefaultHeadMode     = chain.ModeAuto
	DefaultPollInterval = chain.DefaultPollInterval
	DefaultTxTimeout    = 5 * time.Minute
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Sentinel errors
var (
	ErrMissingRPCURL         = errors.New("config: rpc_url is required")
	ErrMissingPrivateKey     = errors.New("config: private_key is required")
	ErrMissingLotteryAddress = errors.New("config: lottery_address is required")
	ErrInvalidLotteryAddress = errors.New("config: lottery_address is not a hex address")
	ErrInvalidPrivateKey     = errors.New("config: private_key is not a secp256k1 hex key")
	ErrInvalidHeadMode       = errors.New("config: head_mode must be auto, subscribe or poll")
	ErrInvalidPollInterval   = errors.New("config: poll_interval must be positive")
	ErrInvalidTxTimeout      = errors.New("config: tx_timeout must be positive")
	ErrInvalidLogLevel       = errors.New("config: log_level must be debug, info, warn or error")
	ErrInvalidLogFormat      = errors.New("config: log_format must be text or json")
)

// Config is the resolved resolver configuration.
type Config struct {
	RPCURL         string        `yaml:"rpc_url"`
	PrivateKey     string        `yaml:"private_key"`
	LotteryAddress string        `yaml:"lottery_address"`
	HeadMode       string        `yaml:"head_mode"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	TxTimeout      time.Duration `yaml:"tx_timeout"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
}

// envNames lists the variables bound to each key, highest priority first.
// The three required values also accept their unprefixed names.
var envNames = map[string][]string{
	KeyRPCURL:         {"RESOLVER_RPC_URL", "RPC_URL"},
	KeyPrivateKey:     {"RESOLVER_PRIVATE_KEY", "PRIVATE_KEY"},
	KeyLotteryAddress: {"RESOLVER_LOTTERY_ADDRESS", "LOTTERY_ADDRESS"},
	KeyHeadMode:       {"RESOLVER_HEAD_MODE"},
	KeyPollInterval:   {"RESOLVER_POLL_INTERVAL"},
	KeyTxTimeout:      {"RESOLVER_TX_TIMEOUT"},
	KeyMetricsAddr:    {"RESOLVER_METRICS_ADDR"},
	KeyLogLevel:       {"RESOLVER_LOG_LEVEL"},
	KeyLogFormat:      {"RESOLVER_LOG_FORMAT"},
}

// Prepare sets defaults and environment bindings on v.
func Prepare(v *viper.Viper) {
	v.SetDefault(KeyHeadMode, DefaultHeadMode)
	v.SetDefault(KeyPollInterval, DefaultPollInterval)
	v.SetDefault(KeyTxTimeout, DefaultTxTimeout)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, names := range envNames {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// ReadFile reads the config file at path. With an empty path it looks for
// resolver.yaml in the working directory and the home directory and ignores
// a missing file.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(DefaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".resolver"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// FromViper resolves a Config from v without validating it.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		RPCURL:         strings.TrimSpace(v.GetString(KeyRPCURL)),
		PrivateKey:     strings.TrimSpace(v.GetString(KeyPrivateKey)),
		LotteryAddress: strings.TrimSpace(v.GetString(KeyLotteryAddress)),
		HeadMode:       strings.ToLower(v.GetString(KeyHeadMode)),
		PollInterval:   v.GetDuration(KeyPollInterval),
		TxTimeout:      v.GetDuration(KeyTxTimeout),
		MetricsAddr:    v.GetString(KeyMetricsAddr),
		LogLevel:       strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:      strings.ToLower(v.GetString(KeyLogFormat)),
	}
}

// Load reads the optional config file and returns a validated Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.RPCURL == "" {
		errs = append(errs, ErrMissingRPCURL)
	}

	switch {
	case c.PrivateKey == "":
		errs = append(errs, ErrMissingPrivateKey)
	default:
		if _, err := chain.ParsePrivateKey(c.PrivateKey); err != nil {
			errs = append(errs, ErrInvalidPrivateKey)
		}
	}

	switch {
	case c.LotteryAddress == "":
		errs = append(errs, ErrMissingLotteryAddress)
	case !common.IsHexAddress(c.LotteryAddress):
		errs = append(errs, ErrInvalidLotteryAddress)
	}

	if !chain.ValidMode(c.HeadMode) {
		errs = append(errs, ErrInvalidHeadMode)
	}
	if c.PollInterval <= 0 {
		errs = append(errs, ErrInvalidPollInterval)
	}
	if c.TxTimeout <= 0 {
		errs = append(errs, ErrInvalidTxTimeout)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, ErrInvalidLogFormat)
	}

	return errors.Join(errs...)
}

// Address returns the lottery contract address.
func (c *Config) Address() common.Address {
	return common.HexToAddress(c.LotteryAddress)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	out.PrivateKey = maskKey(c.PrivateKey)
	return out
}

// maskKey masks the private key for display.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 12 {
		return "****"
	}
	return key[:6] + "..." + key[len(key)-4:]
}
