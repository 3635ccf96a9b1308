package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storeshop/api/controllers"
	"github.com/angelmondragon/storeshop/api/routes"
	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/internal/notifications"
	"github.com/angelmondragon/storeshop/internal/orders"
	"github.com/angelmondragon/storeshop/internal/render"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/angelmondragon/storeshop/pkg/db"
	"github.com/angelmondragon/storeshop/pkg/events"
	"github.com/angelmondragon/storeshop/pkg/i18n"
	"github.com/angelmondragon/storeshop/pkg/instance"
	"github.com/angelmondragon/storeshop/pkg/logger"
	"github.com/angelmondragon/storeshop/pkg/metrics"
	"github.com/angelmondragon/storeshop/pkg/migrate"
	"github.com/angelmondragon/storeshop/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogOutputFormat(),
		Fields:      map[string]any{"instance": instance.ID()},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		if errs != nil {
			logg.Error(context.Background(), "error releasing resources", errs)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	var (
		kv          session.KeyValue
		cachePinger db.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		kv = redisClient
		cachePinger = redisClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	shopMetrics := metrics.NewShopMetrics(registry)

	publisher, err := events.Open(ctx, cfg.Events)
	if err != nil {
		logg.Error(ctx, "failed to connect event publisher", err)
		os.Exit(1)
	}
	closers = append(closers, publisher.Close)

	catalogRepo := catalog.NewRepository(catalog.SourcesFromConfig(cfg.Catalog), logg, shopMetrics)
	if err := catalogRepo.Reload(ctx); err != nil {
		// partial catalogs are served; the pages show what is missing
		logg.WarnErr(ctx, "catalog loaded with errors", err)
	}
	go reloadOnHangup(ctx, catalogRepo, logg)

	sink, err := orders.NewSink(cfg.Orders, dbClient.DB())
	if err != nil {
		logg.Error(ctx, "failed to create order sink", err)
		os.Exit(1)
	}
	audit, err := orders.NewAuditLog(cfg.Orders, dbClient.DB())
	if err != nil {
		logg.Error(ctx, "failed to create audit log", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Sink:      sink,
		Audit:     audit,
		Catalog:   catalogRepo,
		Publisher: publisher,
		Metrics:   shopMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	dispatcher, err := notifications.NewDispatcher(catalogRepo, publisher, shopMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create mail dispatcher", err)
		os.Exit(1)
	}

	sessions, err := session.NewStore(cfg.Session, kv)
	if err != nil {
		logg.Error(ctx, "failed to create session store", err)
		os.Exit(1)
	}

	translator, err := i18n.New()
	if err != nil {
		logg.Error(ctx, "failed to load labels", err)
		os.Exit(1)
	}
	renderer, err := render.New()
	if err != nil {
		logg.Error(ctx, "failed to parse templates", err)
		os.Exit(1)
	}

	columns := cfg.Catalog.GridColumns
	if columns <= 0 {
		columns = render.DefaultColumns
	}
	pages := controllers.Pages{
		Catalog:    catalogRepo,
		Translator: translator,
		Renderer:   renderer,
		Sessions:   sessions,
		Images:     render.DirImages{Root: cfg.App.StaticDir},
		Columns:    columns,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"sink":  sink.Name(),
		"audit": audit.Target(),
	})
	logg.Info(srvCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, cachePinger, registry, pages, ordersSvc, dispatcher),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(srvCtx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(srvCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(srvCtx, "graceful shutdown failed", err)
		}
	}
}

// reloadOnHangup re-reads the catalog files on SIGHUP.
func reloadOnHangup(ctx context.Context, repo *catalog.Repository, logg *logger.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := repo.Reload(ctx); err != nil {
				logg.WarnErr(ctx, "catalog reloaded with errors", err)
			} else {
				logg.Info(ctx, "catalog reloaded")
			}
		}
	}
}
