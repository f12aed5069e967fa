package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	catalogapp "github.com/amishe1/lubex-bot/internal/application/catalog"
	cartapp "github.com/amishe1/lubex-bot/internal/application/cart"
	checkoutapp "github.com/amishe1/lubex-bot/internal/application/checkout"
	"github.com/amishe1/lubex-bot/internal/infrastructure/api"
	"github.com/amishe1/lubex-bot/internal/infrastructure/config"
	"github.com/amishe1/lubex-bot/internal/infrastructure/host"
	"github.com/amishe1/lubex-bot/internal/infrastructure/logger"
	"github.com/amishe1/lubex-bot/internal/infrastructure/persistence"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"github.com/amishe1/lubex-bot/internal/interfaces/cli"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, cleanup := cli.NewStorefrontCommand(build, os.Stdin, os.Stdout)
	err := cmd.ExecuteContext(ctx)
	cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lubex:", err)
		os.Exit(1)
	}
}

// build wires the storefront from configuration
func build(ctx context.Context, opts cli.GlobalOptions) (*cli.Storefront, func(), error) {
	cfg, err := config.LoadFrom(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		_ = logger.Sync(log)
	}

	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Debug("Tracing shutdown failed", zap.Error(err))
		}
	})

	metrics := telemetry.NewMetrics()
	if cfg.Metrics.Addr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		closers = append(closers, cancel)
		go func() {
			if err := metrics.Serve(metricsCtx, cfg.Metrics.Addr); err != nil {
				log.Warn("Metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	client, err := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	}, api.WithMetrics(metrics), api.WithLogger(log))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	storage, closeStorage, err := openCartStorage(ctx, cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, closeStorage)

	carts := cartapp.NewStore(ctx, storage, cfg.Cart.Key,
		cartapp.WithLogger(log),
		cartapp.WithDiagnosticSink(cartapp.NewLogSink(log, metrics)),
	)

	surface := host.New(host.WebhookConfig{
		ExpandURL: cfg.Host.ExpandURL,
		CloseURL:  cfg.Host.CloseURL,
		Timeout:   cfg.Host.Timeout,
	}, log)

	log.Debug("Storefront ready",
		zap.String("api", client.BaseURL()),
		zap.String("cart_backend", cfg.Cart.Backend),
		zap.Int("cart_count", carts.Count()),
	)

	return &cli.Storefront{
		Catalog: catalogapp.NewStore(client, cfg.Catalog.Categories, log),
		Cart:    carts,
		Checkout: checkoutapp.NewCoordinator(client, carts,
			checkoutapp.WithHost(surface),
			checkoutapp.WithMetrics(metrics),
			checkoutapp.WithLogger(log),
		),
		Host:   surface,
		Render: cli.NewRenderer(cfg.App.CurrencyLabel),
	}, cleanup, nil
}

// openCartStorage opens the configured cart backend
func openCartStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (cartapp.Storage, func(), error) {
	switch cfg.Cart.Backend {
	case config.CartBackendRedis:
		s, err := persistence.NewRedisStorage(ctx, persistence.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.CartBackendSQLite:
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
		s, err := persistence.NewSQLiteStorage(cfg.Cart.SQLitePath, gormLog)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return persistence.NewFileStorage(cfg.Cart.FilePath), func() {}, nil
	}
}
