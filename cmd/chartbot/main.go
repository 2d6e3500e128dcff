package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/chartbot/internal/app"
	"github.com/dgnsrekt/chartbot/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.Info("chartbot config loaded",
		"transport", cfg.Transport,
		"dexscreener_base_url", cfg.DexScreenerBaseURL,
		"alchemy_base_url", cfg.AlchemyBaseURL,
		"window", []int{cfg.WindowWidth, cfg.WindowHeight},
		"settle_ms", cfg.SettleMS,
		"ready_selector", cfg.ReadySelector,
		"capture_timeout_ms", cfg.CaptureTimeoutMS,
		"archive_dir", cfg.ArchiveDir,
		"admin_bind_addr", cfg.AdminBindAddr,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		slog.Warn("application close failed", "error", err)
	}
	if runErr != nil {
		slog.Error("chartbot stopped", "error", runErr)
		os.Exit(1)
	}
	slog.Info("chartbot stopped")
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
