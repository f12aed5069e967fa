package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	adminapp "github.com/amishe1/lubex-bot/internal/application/admin"
	"github.com/amishe1/lubex-bot/internal/infrastructure/api"
	"github.com/amishe1/lubex-bot/internal/infrastructure/config"
	"github.com/amishe1/lubex-bot/internal/infrastructure/logger"
	"github.com/amishe1/lubex-bot/internal/infrastructure/storage"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"github.com/amishe1/lubex-bot/internal/interfaces/cli"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, cleanup := cli.NewAdminCommand(build, os.Stdout)
	err := cmd.ExecuteContext(ctx)
	cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lubex-admin:", err)
		os.Exit(1)
	}
}

// build wires the admin console. The --token flag wins over admin.token.
func build(ctx context.Context, opts cli.AdminOptions) (*cli.AdminConsole, func(), error) {
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
	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: "lubex-admin",
	})
	if err != nil {
		_ = logger.Sync(log)
		return nil, nil, err
	}
	cleanup := func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Debug("Tracing shutdown failed", zap.Error(err))
		}
		_ = logger.Sync(log)
	}

	client, err := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	}, api.WithLogger(log))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	token := opts.Token
	if token == "" {
		token = cfg.Admin.Token
	}

	coordinatorOpts := []adminapp.Option{adminapp.WithLogger(log)}
	if cfg.Storage.Enabled() {
		images, err := storage.NewImageStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		coordinatorOpts = append(coordinatorOpts, adminapp.WithImageUploader(images))
		log.Debug("Image uploads enabled", zap.String("bucket", images.Bucket()))
	}

	return &cli.AdminConsole{
		Admin:  adminapp.NewCoordinator(client, client.Admin(cfg.Admin.Header, token), coordinatorOpts...),
		Render: cli.NewRenderer(cfg.App.CurrencyLabel),
	}, cleanup, nil
}
