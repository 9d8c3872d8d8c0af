package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"supplyscope/internal/chain"
	"supplyscope/internal/config"
	"supplyscope/internal/history"
	"supplyscope/internal/price"
	"supplyscope/internal/reconcile"
	"supplyscope/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:          "oracle",
		Short:        "Dual-ledger token supply oracle",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the oracle service",
		RunE:  runOracle,
	}
	addOracleFlags(runCmd)
	runCmd.Flags().String("listen", ":8080", "HTTP listen address")
	root.AddCommand(runCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Run one reconciliation cycle and print the snapshot",
		RunE:  runSnapshot,
	}
	addOracleFlags(snapshotCmd)
	root.AddCommand(snapshotCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a raw account blob",
		RunE:  runDecode,
	}
	decodeCmd.Flags().String("schema", "fee-config", "schema (fee-config or validator)")
	decodeCmd.Flags().String("in", "", "path to raw account bytes")
	decodeCmd.Flags().String("base64", "", "account bytes as base64 (alternative to --in)")
	root.AddCommand(decodeCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print persisted burn history",
		RunE:  runHistory,
	}
	historyCmd.Flags().String("history-file", "./data/burn_history.json", "history file path")
	historyCmd.Flags().String("period", "24h", "window (1h, 24h, 7d, or a duration)")
	historyCmd.Flags().Int("limit", 0, "max entries, most recent first kept")
	root.AddCommand(historyCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addOracleFlags(cmd *cobra.Command) {
	cmd.Flags().String("l1-rpc", "", "L1 (public chain) RPC URL")
	cmd.Flags().String("l2-rpc", "", "L2 (project chain) RPC URL")
	cmd.Flags().String("mint", "", "token mint address on L1")
	cmd.Flags().String("fee-config", "", "fee config account address on L2")
	cmd.Flags().String("validator-program", "", "validator registry program id on L2")
	cmd.Flags().String("bridge-vault", "", "bridge vault token account on L1")
	cmd.Flags().String("foundation", "", "foundation reserve address on L2")
	cmd.Flags().Uint64("canonical-supply", 1_000_000_000, "canonical total supply in whole tokens")
	cmd.Flags().Uint("decimals", 9, "token decimals")
	cmd.Flags().Duration("poll-interval", time.Minute, "reconciliation interval")
	cmd.Flags().Duration("chain-timeout", 8*time.Second, "per-query chain RPC timeout")
	cmd.Flags().Duration("price-timeout", 6*time.Second, "per-provider price timeout")
	cmd.Flags().String("jupiter-url", "https://lite-api.jup.ag", "price provider A base URL")
	cmd.Flags().String("coingecko-url", "https://api.coingecko.com", "price provider B base URL")
	cmd.Flags().String("coingecko-id", "", "coingecko coin id")
	cmd.Flags().String("launchpad-url", "https://frontend-api.pump.fun", "launchpad API base URL")
	cmd.Flags().String("history-file", "./data/burn_history.json", "burn history file path")
	cmd.Flags().Int("history-max", 2016, "max retained history entries")
	cmd.Flags().Duration("persist-every", 5*time.Minute, "history persistence interval")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN for history")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// buildEngine wires the chain clients, price providers, history store, and
// engine from config. The returned cleanup closes the Postgres pool when
// one was opened.
func buildEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*reconcile.Engine, *history.Store, func(), error) {
	if cfg.L1RPCURL == "" || cfg.L2RPCURL == "" {
		return nil, nil, nil, fmt.Errorf("both l1-rpc and l2-rpc are required")
	}

	addrs := struct {
		mint, feeConfig, program, vault, foundation solana.PublicKey
	}{}
	for _, field := range []struct {
		name  string
		value string
		out   *solana.PublicKey
	}{
		{"mint", cfg.Mint, &addrs.mint},
		{"fee-config", cfg.FeeConfigAddr, &addrs.feeConfig},
		{"validator-program", cfg.ValidatorProgram, &addrs.program},
		{"bridge-vault", cfg.BridgeVault, &addrs.vault},
		{"foundation", cfg.Foundation, &addrs.foundation},
	} {
		if field.value == "" {
			return nil, nil, nil, fmt.Errorf("%s address is required", field.name)
		}
		pk, err := solana.PublicKeyFromBase58(field.value)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid %s address %q: %w", field.name, field.value, err)
		}
		*field.out = pk
	}

	l1 := chain.NewClient("l1", cfg.L1RPCURL, cfg.ChainTimeout)
	l2 := chain.NewClient("l2", cfg.L2RPCURL, cfg.ChainTimeout)

	var secondary price.Provider
	if cfg.CoinGeckoID != "" {
		secondary = price.NewCoinGecko(cfg.CoinGeckoURL, cfg.CoinGeckoID, cfg.PriceTimeout)
	}
	aggregator := price.NewAggregator(
		price.NewJupiter(cfg.JupiterURL, cfg.Mint, cfg.PriceTimeout),
		secondary,
		price.NewLaunchpad(cfg.LaunchpadURL, cfg.Mint, cfg.PriceTimeout),
		cfg.PriceTimeout,
		logger,
	)

	cleanup := func() {}
	var sink history.Sink
	if cfg.PGDSN != "" {
		pg, err := history.NewPGStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		sink = pg
		cleanup = pg.Close
	} else {
		sink = history.NewFileStore(cfg.HistoryFile)
	}

	hist := history.NewStore(cfg.HistoryMax, sink, cfg.PersistEvery, logger)
	if err := hist.Restore(); err != nil {
		logger.Warn("history restore failed, starting empty", zap.Error(err))
	}

	decimals := cfg.Decimals
	canonicalRaw := cfg.CanonicalSupply
	for i := uint8(0); i < decimals; i++ {
		canonicalRaw *= 10
	}

	engine := reconcile.NewEngine(reconcile.Config{
		Mint:             addrs.mint,
		FeeConfigAddr:    addrs.feeConfig,
		ValidatorProgram: addrs.program,
		BridgeVault:      addrs.vault,
		Foundation:       addrs.foundation,
		CanonicalTotal:   canonicalRaw,
		Decimals:         decimals,
	}, l1, l2, aggregator, hist, logger)

	return engine, hist, cleanup, nil
}

func runOracle(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, hist, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("oracle start",
		zap.String("l1_rpc", cfg.L1RPCURL),
		zap.String("l2_rpc", cfg.L2RPCURL),
		zap.String("mint", cfg.Mint),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.String("listen", cfg.Listen),
		zap.Int("history_entries", hist.Len()),
	)

	srv := server.New(engine.Holder(), hist, 3*cfg.PollInterval, cfg.Decimals, logger)
	httpErr := make(chan error, 1)
	go func() {
		if err := srv.Run(cfg.Listen); err != nil && err != http.ErrServerClosed {
			httpErr <- err
		}
	}()

	scheduler := reconcile.NewScheduler(cfg.PollInterval, engine, hist, logger)
	schedErr := make(chan error, 1)
	go func() { schedErr <- scheduler.Run(ctx) }()

	select {
	case err := <-httpErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	case err := <-schedErr:
		if err != nil && err != context.Canceled {
			return err
		}
	}

	// Final flush so a restart resumes from the freshest series.
	if err := hist.Flush(); err != nil {
		logger.Warn("final history flush failed", zap.Error(err))
	}
	logger.Info("oracle stopped")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
