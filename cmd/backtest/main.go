package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/tmbacktest/config"
	"github.com/alejandrodnm/tmbacktest/internal/adapters/chart"
	"github.com/alejandrodnm/tmbacktest/internal/adapters/dataset"
	"github.com/alejandrodnm/tmbacktest/internal/adapters/notify"
	"github.com/alejandrodnm/tmbacktest/internal/adapters/storage"
	"github.com/alejandrodnm/tmbacktest/internal/backtest"
	"github.com/alejandrodnm/tmbacktest/internal/domain"
	"github.com/alejandrodnm/tmbacktest/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	dataPath := flag.String("data", "", "dataset JSON path (overrides config; empty uses built-in sample)")
	capital := flag.Float64("capital", 0, "initial capital (overrides config)")
	table := flag.Bool("table", false, "print full tables + metrics (default: compact 1-line)")
	validate := flag.Bool("validate", false, "print step-by-step classification for every record")
	chartPath := flag.String("chart", "", "write equity curve HTML to this path (overrides config)")
	history := flag.Int("history", 0, "print the N most recent stored runs and exit")
	noStore := flag.Bool("no-store", false, "do not persist this run")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *dataPath != "" {
		cfg.Dataset.Path = *dataPath
	}
	if *capital > 0 {
		cfg.Backtest.InitialCapital = *capital
	}
	if *chartPath != "" {
		cfg.Chart.Path = *chartPath
	}
	setupLogger(cfg.Log)

	console := notify.NewConsole(*table)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *history > 0 {
		runHistory(ctx, cfg.Storage.DSN, console, *history)
		return
	}

	var src ports.RecordSource = dataset.SampleSource{}
	if cfg.Dataset.Path != "" {
		src = dataset.NewFile(cfg.Dataset.Path)
	}

	slog.Info("tmbacktest starting",
		"config", *configPath,
		"dataset", src.Name(),
		"initial_capital", cfg.Backtest.InitialCapital,
		"validate", *validate,
	)

	records, err := src.Records(ctx)
	if err != nil {
		slog.Error("failed to load dataset", "err", err, "dataset", src.Name())
		os.Exit(1)
	}
	if len(records) == 0 {
		slog.Warn("dataset is empty, nothing to evaluate", "dataset", src.Name())
		return
	}

	if *validate {
		console.PrintValidation(records)
	}

	runner := backtest.New()
	runner.Prices = backtest.PriceModel{Base: cfg.Backtest.BasePrice}.Prices
	runner.Sizing = backtest.AllocationPolicy{
		SignalReversal: cfg.Backtest.Allocation.SignalReversal,
		LongTermHold:   cfg.Backtest.Allocation.LongTermHold,
		TrendFollowing: cfg.Backtest.Allocation.TrendFollowing,
	}

	sum, err := runner.Run(records, cfg.Backtest.InitialCapital)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	if err := console.Notify(ctx, sum); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if !*noStore {
		saveRun(ctx, cfg, src.Name(), sum)
	}

	if cfg.Chart.Path != "" && sum.HasTrades() {
		eq := chart.NewEquity()
		if err := eq.WriteHTML(cfg.Chart.Path, src.Name(), sum); err != nil {
			slog.Warn("failed to write equity chart", "err", err, "path", cfg.Chart.Path)
		} else {
			slog.Info("equity chart written", "path", cfg.Chart.Path)
		}
	}

	slog.Info("backtest finished",
		"records", sum.Records,
		"trades", sum.TotalTrades(),
		"rejected", len(sum.Rejected),
		"final_capital", sum.FinalCapital,
	)
}

// saveRun persists the run; storage failures never abort the backtest.
func saveRun(ctx context.Context, cfg *config.Config, datasetName string, sum domain.Summary) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Warn("failed to open storage, run not persisted", "err", err, "dsn", cfg.Storage.DSN)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, datasetName, sum)
	if err != nil {
		slog.Warn("failed to persist run", "err", err)
		return
	}
	slog.Debug("run persisted", "id", id)

	if err := store.Prune(ctx, cfg.Storage.KeepRuns); err != nil {
		slog.Warn("failed to prune old runs", "err", err)
	}
}

func runHistory(ctx context.Context, dsn string, console *notify.Console, limit int) {
	store, err := storage.NewSQLiteStorage(dsn)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", dsn)
		os.Exit(1)
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		slog.Error("failed to list runs", "err", err)
		os.Exit(1)
	}
	console.PrintHistory(runs)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
