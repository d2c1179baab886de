// sleepdetect-monitor 是监测会话代理：向本机检测后端启停监测、轮询遥测，
// 并通过本地 HTTP API 提供给看板，可选转发到 Redis Streams / MQTT。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/xjzhong-027/sleepDetect/common/logger"
	"github.com/xjzhong-027/sleepDetect/internal/config"
	"github.com/xjzhong-027/sleepDetect/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   string
		backendURL   string
		interval     time.Duration
		httpAddr     string
		cameraDevice string
		skipProbe    bool
		stopOnExit   bool
		logLevel     string
		logFormat    string
	)

	flagSet := pflag.NewFlagSet("sleepdetect-monitor", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	flagSet.StringVar(&backendURL, "backend", "", "detection backend base URL")
	flagSet.DurationVar(&interval, "interval", 0, "telemetry polling interval")
	flagSet.StringVar(&httpAddr, "http-addr", "", "dashboard API listen address")
	flagSet.StringVar(&cameraDevice, "camera-device", "", "video device to probe (default: scan /dev/video*)")
	flagSet.BoolVar(&skipProbe, "skip-probe", false, "skip the local camera permission probe")
	flagSet.BoolVar(&stopOnExit, "stop-on-exit", false, "ask the backend to stop monitoring on shutdown")
	flagSet.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flagSet.StringVar(&logFormat, "log-format", "", "log format (json, console)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数优先级最高，只覆盖显式指定的项
	if flagSet.Changed("backend") {
		cfg.Backend.BaseURL = backendURL
	}
	if flagSet.Changed("interval") {
		cfg.Monitor.PollingInterval = interval
	}
	if flagSet.Changed("http-addr") {
		cfg.HTTP.Addr = httpAddr
	}
	if flagSet.Changed("camera-device") {
		cfg.Camera.Device = cameraDevice
	}
	if flagSet.Changed("skip-probe") {
		cfg.Camera.SkipProbe = skipProbe
	}
	if flagSet.Changed("stop-on-exit") {
		cfg.Monitor.StopOnExit = stopOnExit
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flagSet.Changed("log-format") {
		cfg.Log.Format = logFormat
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "sleepdetect-monitor")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting sleepdetect-monitor",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Duration("polling_interval", cfg.Monitor.PollingInterval),
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("mqtt_enabled", cfg.MQTT.Enabled),
	)

	svc, err := service.NewMonitorService(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monitor service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor service: %w", err)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	// 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}
	cancel()

	log.Info("Service stopped")
	return nil
}
