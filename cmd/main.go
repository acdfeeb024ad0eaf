package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/goalwatch/internal/adapters/http/api"
	"github.com/okian/goalwatch/internal/adapters/http/swagger"
	"github.com/okian/goalwatch/internal/adapters/notify"
	"github.com/okian/goalwatch/internal/adapters/provider"
	"github.com/okian/goalwatch/internal/adapters/repository"
	service "github.com/okian/goalwatch/internal/app"
	"github.com/okian/goalwatch/internal/app/analyzer"
	"github.com/okian/goalwatch/internal/config"
	"github.com/okian/goalwatch/internal/domain/dedupe"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// We export our own system gauges instead of the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Defaults -> optional file -> env.
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	applyLogLevel(ctx, log, cfg.LogLevel)

	svc, alerts, err := build(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	defer func() { _ = alerts.Close() }()

	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	if path := os.Getenv(config.EnvConfigPath); path != "" {
		go watchConfig(ctx, log, path, svc)
	}

	apiServer := api.NewServer(svc, api.WithLogger(log.Named("http")))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Handler(swagger.Register),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// build wires the provider client, analyzer, dispatcher and alert store
// into a scanner service.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, *repository.AlertStore, error) {
	pc := cfg.Provider
	client := provider.New(
		provider.WithBaseURL(pc.BaseURL),
		provider.WithAPIKey(pc.APIKey),
		provider.WithTimeout(pc.Timeout),
		provider.WithRetries(pc.MaxRetries, pc.BackoffFactor, pc.BackoffUnit),
		provider.WithQuota(pc.DailyLimit, pc.HourlyLimit, pc.EmergencyBuffer),
		provider.WithBreaker(pc.Breaker),
		provider.WithCacheTTL(pc.CacheTTL),
		provider.WithLogger(log.Named("provider")),
	)

	an, err := analyzer.New(client, cfg.Engine,
		analyzer.WithCache(dedupe.NewInMemoryCache(dedupe.WithMaxSize(cfg.Scanner.CacheSize))),
		analyzer.WithLogger(log.Named("analyzer")),
	)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := notify.NewDispatcher(sinks(cfg.Dispatch, log),
		notify.WithTimeout(cfg.Dispatch.Timeout),
		notify.WithLogger(log.Named("notify")),
	)

	alerts := repository.NewAlertStore(ctx,
		repository.WithMemoryWindow(cfg.Tracker.MemoryWindow),
		repository.WithCleanupInterval(cfg.Scanner.CleanupInterval),
	)

	svc := service.New(client, an, dispatcher, alerts,
		service.WithScannerConfig(cfg.Scanner),
		service.WithLogger(log.Named("scanner")),
	)
	return svc, alerts, nil
}

// sinks returns the configured alert destinations. An empty result makes
// the dispatcher fall back to logging.
func sinks(dc config.DispatchConfig, log logger.Logger) []notify.Sink {
	hc := &http.Client{Timeout: dc.Timeout}

	var out []notify.Sink
	if dc.TelegramToken != "" {
		out = append(out, notify.NewTelegramSink(hc, dc.TelegramBaseURL, dc.TelegramToken, dc.TelegramChatID))
	}
	for _, u := range dc.Webhooks {
		out = append(out, notify.NewWebhookSink(hc, u))
	}
	if len(out) == 0 {
		log.Warn(context.Background(), "no alert destinations configured; alerts will only be logged")
	}
	return out
}

func applyLogLevel(ctx context.Context, log logger.Logger, level string) {
	if err := logger.SetLevelString(level); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

// watchConfig hot-reloads the engine thresholds and the log level. Scanner,
// provider and dispatch settings need a restart.
func watchConfig(ctx context.Context, log logger.Logger, path string, svc *service.Service) {
	err := config.Watch(ctx, path, func(cfg *config.Config) {
		applyLogLevel(ctx, log, cfg.LogLevel)
		if err := svc.SetEngineConfig(cfg.Engine); err != nil {
			log.Error(ctx, "engine config rejected", logger.Error(err))
			return
		}
		log.Info(ctx, "engine config applied")
	})
	if err != nil {
		log.Error(ctx, "config watcher stopped", logger.String("path", path), logger.Error(err))
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
