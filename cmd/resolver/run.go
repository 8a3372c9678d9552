package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bidon15/lotteryresolver/internal/chain"
	"github.com/Bidon15/lotteryresolver/internal/config"
	"github.com/Bidon15/lotteryresolver/internal/lottery"
	"github.com/Bidon15/lotteryresolver/internal/metrics"
	"github.com/Bidon15/lotteryresolver/internal/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the lottery and commit/reveal when due",
	Long: `Run the lottery monitor until interrupted.

Required configuration: RPC_URL, PRIVATE_KEY and LOTTERY_ADDRESS. The
resolver exits immediately if any of them is missing or malformed.

The committed preimage is held in memory only. Stopping the process between
commit and reveal forfeits the stake.`,
	RunE: runResolver,
}

func runResolver(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, logger)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	key, err := chain.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return err
	}

	client, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return err
	}
	defer client.Close()

	auth, err := chain.NewTransactor(ctx, client, key)
	if err != nil {
		return err
	}

	contract, err := lottery.NewClient(cfg.Address(), client, auth,
		lottery.WithTxTimeout(cfg.TxTimeout),
		lottery.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mt, err := metrics.New(reg)
	if err != nil {
		return err
	}

	heads, err := chain.NewHeads(client, cfg.HeadMode, cfg.PollInterval, logger)
	if err != nil {
		return err
	}

	mon := monitor.New(contract,
		monitor.WithMetrics(mt),
		monitor.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, logger); err != nil {
				logger.Error("metrics server stopped", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("starting lottery monitor",
		slog.String("lottery", contract.Address().Hex()),
		slog.String("account", contract.From().Hex()),
		slog.String("head_mode", cfg.HeadMode),
	)

	blocks := make(chan uint64, 16)
	headErr := make(chan error, 1)
	go func() {
		headErr <- heads.Run(ctx, blocks)
	}()

	mon.Run(ctx, blocks)
	cancel()

	if p := mon.Pending(); p != nil {
		logger.Warn("exiting with an unrevealed commitment, its preimage is lost",
			slog.String("round", p.Round.String()),
			slog.Uint64("lottery_id", uint64(p.LotteryID)),
			slog.Uint64("commit_block", p.CommitBlock),
		)
	}

	if err := <-headErr; err != nil {
		return fmt.Errorf("block source: %w", err)
	}
	return nil
}
