package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	"github.com/goliatone/go-audience-dashboard/components/dashboard"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-audience-dashboard/pkg/config"
	"github.com/goliatone/go-audience-dashboard/pkg/inference"
	"github.com/goliatone/go-audience-dashboard/pkg/telemetry"
)

const (
	shutdownTimeout = 10 * time.Second
	auditChannel    = "audience"
)

type serveCmd struct {
	Addr      string   `env:"AUDIENCE_ADDR" help:"Override server.addr."`
	BasePath  string   `name:"base-path" env:"AUDIENCE_BASE_PATH" help:"Override server.base_path."`
	Transport string   `env:"AUDIENCE_TRANSPORT" help:"Override server.transport (fiber or http)."`
	Endpoint  string   `env:"AUDIENCE_ENDPOINT" help:"Remote inference base URL. Empty uses the mock generator."`
	Manifest  []string `type:"existingfile" help:"Widget manifests seeded after the default layout (repeatable)."`
}

// apply overlays the command flags on cfg.
func (cmd *serveCmd) apply(cfg *config.Config) {
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if cmd.BasePath != "" {
		cfg.Server.BasePath = cmd.BasePath
	}
	if cmd.Transport != "" {
		cfg.Server.Transport = cmd.Transport
	}
	if cmd.Endpoint != "" {
		cfg.Generation.Endpoint = cmd.Endpoint
	}
}

func (cmd *serveCmd) Run(ctx context.Context, app *cli) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	cmd.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rt, err := buildRuntime(ctx, cfg, cmd.Manifest, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	go rt.service.RunSessionSweeper(ctx, cfg.Sessions.SweepInterval)

	logger.Info("audience dashboard ready",
		zap.String("addr", cfg.Server.Addr),
		zap.String("base_path", rt.controller.BasePath()),
		zap.String("transport", cfg.Server.Transport),
		zap.Bool("remote_generator", cfg.Generation.Endpoint != ""),
	)
	if cfg.Server.Transport == config.TransportHTTP {
		return serveHTTP(ctx, cfg.Server.Addr, rt, logger)
	}
	return serveFiber(ctx, cfg.Server.Addr, rt, logger)
}

// runtime holds the collaborators shared by both transports.
type runtime struct {
	service    *dashboard.Service
	controller *dashboard.Controller
	executor   *httpapi.CommandExecutor
	hook       *dashboard.BroadcastHook
}

func (rt *runtime) close() {
	rt.service.Close()
	rt.hook.Close()
}

func buildRuntime(ctx context.Context, cfg config.Config, manifests []string, logger *zap.Logger) (*runtime, error) {
	generator, err := newGenerator(cfg.Generation)
	if err != nil {
		return nil, err
	}
	cache := dashboard.NewChartCache(cfg.Charts.CacheTTL)
	chartOpts := []dashboard.EChartsProviderOption{dashboard.WithChartCache(cache)}
	if cfg.Charts.Theme != "" {
		chartOpts = append(chartOpts, dashboard.WithChartTheme(cfg.Charts.Theme))
	}
	if cfg.Charts.AssetsHost != "" {
		chartOpts = append(chartOpts, dashboard.WithChartAssetsHost(cfg.Charts.AssetsHost))
	}

	hook := dashboard.NewBroadcastHook()
	tel := telemetry.NewZapTelemetry(logger)
	service := dashboard.NewService(dashboard.Options{
		WidgetStore:    dashboard.NewMemoryWidgetStore(),
		Providers:      dashboard.NewRegistry(chartOpts...),
		RefreshHook:    dashboard.RefreshHooks{hook, telemetry.NewAuditHook(logger, auditChannel)},
		Telemetry:      tel,
		Generator:      generator,
		SessionIdleTTL: cfg.Sessions.IdleTTL,
		ChartCache:     cache,
	})
	seed := commands.SeedDashboardInput{SeedLayout: true}
	for _, path := range manifests {
		doc, err := dashboard.ReadManifest(path)
		if err != nil {
			service.Close()
			return nil, fmt.Errorf("audiencectl: manifest %s: %w", path, err)
		}
		seed.Manifests = append(seed.Manifests, doc)
	}
	seeder := commands.NewSeedDashboardCommand(service.WidgetStore(), service.Registry(), service, tel)
	if err := seeder.Execute(ctx, seed); err != nil {
		service.Close()
		return nil, fmt.Errorf("audiencectl: bootstrap: %w", err)
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		service.Close()
		return nil, fmt.Errorf("audiencectl: templates: %w", err)
	}
	return &runtime{
		service: service,
		controller: dashboard.NewController(dashboard.ControllerOptions{
			Service:  service,
			Renderer: renderer,
			BasePath: cfg.Server.BasePath,
		}),
		executor: httpapi.NewCommandExecutor(service, tel),
		hook:     hook,
	}, nil
}

func newGenerator(cfg config.Generation) (audience.Generator, error) {
	if cfg.Endpoint == "" {
		return audience.WithLatency(audience.MockGenerator{}, cfg.Latency), nil
	}
	return inference.NewHTTPGenerator(inference.HTTPConfig{
		BaseURL: cfg.Endpoint,
		APIKey:  cfg.APIKey,
	})
}

func serveFiber(ctx context.Context, addr string, rt *runtime, logger *zap.Logger) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: rt.controller,
		API:        rt.executor,
		Broadcast:  rt.hook,
	}); err != nil {
		return fmt.Errorf("audiencectl: register routes: %w", err)
	}

	return serveUntilDone(ctx, func() error { return server.Serve(addr) }, server.Shutdown, rt, logger)
}

// serveUntilDone runs serve until it fails or ctx ends, then stops live
// streams and shuts the server down within shutdownTimeout.
func serveUntilDone(ctx context.Context, serve func() error, shutdown func(context.Context) error, rt *runtime, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- serve() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	rt.hook.Close()
	if err := shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("audiencectl: shutdown: %w", err)
	}
	return nil
}

func serveHTTP(ctx context.Context, addr string, rt *runtime, logger *zap.Logger) error {
	handlers := &httpapi.Handlers{
		API:  rt.executor,
		Page: rt.controller,
		Live: rt.hook,
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewMux(handlers, rt.controller.BasePath()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Open WebSocket and SSE streams end when the hook closes.
	rt.hook.Close()
	return srv.Shutdown(shutdownCtx)
}
