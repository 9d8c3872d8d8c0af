package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	L1RPCURL string
	L2RPCURL string

	Mint             string
	FeeConfigAddr    string
	ValidatorProgram string
	BridgeVault      string
	Foundation       string

	CanonicalSupply uint64 // whole tokens
	Decimals        uint8

	PollInterval time.Duration
	ChainTimeout time.Duration
	PriceTimeout time.Duration

	JupiterURL   string
	CoinGeckoURL string
	CoinGeckoID  string
	LaunchpadURL string

	HistoryFile  string
	HistoryMax   int
	PersistEvery time.Duration
	PGDSN        string

	Listen   string
	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("canonical-supply", uint64(1_000_000_000))
	v.SetDefault("decimals", 9)
	v.SetDefault("poll-interval", time.Minute)
	v.SetDefault("chain-timeout", 8*time.Second)
	v.SetDefault("price-timeout", 6*time.Second)
	v.SetDefault("jupiter-url", "https://lite-api.jup.ag")
	v.SetDefault("coingecko-url", "https://api.coingecko.com")
	v.SetDefault("launchpad-url", "https://frontend-api.pump.fun")
	v.SetDefault("history-file", "./data/burn_history.json")
	v.SetDefault("history-max", 2016)
	v.SetDefault("persist-every", 5*time.Minute)
	v.SetDefault("listen", ":8080")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		L1RPCURL:         v.GetString("l1-rpc"),
		L2RPCURL:         v.GetString("l2-rpc"),
		Mint:             v.GetString("mint"),
		FeeConfigAddr:    v.GetString("fee-config"),
		ValidatorProgram: v.GetString("validator-program"),
		BridgeVault:      v.GetString("bridge-vault"),
		Foundation:       v.GetString("foundation"),
		CanonicalSupply:  v.GetUint64("canonical-supply"),
		Decimals:         uint8(v.GetUint("decimals")),
		PollInterval:     v.GetDuration("poll-interval"),
		ChainTimeout:     v.GetDuration("chain-timeout"),
		PriceTimeout:     v.GetDuration("price-timeout"),
		JupiterURL:       v.GetString("jupiter-url"),
		CoinGeckoURL:     v.GetString("coingecko-url"),
		CoinGeckoID:      v.GetString("coingecko-id"),
		LaunchpadURL:     v.GetString("launchpad-url"),
		HistoryFile:      v.GetString("history-file"),
		HistoryMax:       v.GetInt("history-max"),
		PersistEvery:     v.GetDuration("persist-every"),
		PGDSN:            v.GetString("pg-dsn"),
		Listen:           v.GetString("listen"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}
