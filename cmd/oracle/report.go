package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"supplyscope/internal/config"
	"supplyscope/internal/history"
)

// runSnapshot executes a single reconciliation cycle and prints the result.
func runSnapshot(cmd *cobra.Command, _ []string) error {
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

	snap := engine.RunCycle(ctx)
	if err := hist.Flush(); err != nil {
		logger.Warn("history flush failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// runHistory prints persisted burn history without touching the network.
func runHistory(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("history-file")
	period, _ := cmd.Flags().GetString("period")
	limit, _ := cmd.Flags().GetInt("limit")

	window, err := history.ParsePeriod(period)
	if err != nil {
		return err
	}

	store := history.NewStore(0, history.NewFileStore(path), 0, nil)
	if err := store.Restore(); err != nil {
		return err
	}

	entries := store.Query(window, limit)
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
