package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	// Timezone database for hosts without zoneinfo.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/fr0stylo/guildwatch/internal/adapters/jsonfile"
	"github.com/fr0stylo/guildwatch/internal/adapters/sqlite"
	"github.com/fr0stylo/guildwatch/internal/app/ports"
	"github.com/fr0stylo/guildwatch/internal/command"
	"github.com/fr0stylo/guildwatch/internal/config"
	"github.com/fr0stylo/guildwatch/internal/gateway"
	"github.com/fr0stylo/guildwatch/internal/keepalive"
	"github.com/fr0stylo/guildwatch/internal/notifier"
	"github.com/fr0stylo/guildwatch/internal/observability"
	"github.com/fr0stylo/guildwatch/internal/registry"
	"github.com/fr0stylo/guildwatch/internal/router"
	"github.com/fr0stylo/guildwatch/internal/server"
	"github.com/fr0stylo/guildwatch/internal/server/routes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(observability.WrapSlogHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: observability.ParseLevel(cfg.Logging.Level),
	})))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		var corrupt *registry.CorruptStateError
		if errors.As(err, &corrupt) {
			slog.Error("Monitored guild state is unreadable, refusing to start", "error", err)
		} else {
			slog.Error("Closing guildwatch", "error", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, err := observability.SetupOpenTelemetry(ctx, log, observability.TelemetryConfig{
		Enabled:        cfg.Observability.Enabled,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		OTLPHeaders:    cfg.Observability.OTLPHeaders,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVer,
		SamplingRatio:  cfg.Observability.SamplingRatio,
		MetricsConsole: cfg.Observability.MetricsConsole,
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Error("Failed to flush telemetry", "error", err)
		}
	}()

	store, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close guild store", "error", err)
		}
	}()

	session, err := gateway.New(ctx, cfg.DiscordAuthToken(), cfg.Monitor.EventBuffer, log)
	if err != nil {
		return err
	}

	reg := registry.New(store, log, registry.Options{ResyncPace: cfg.Monitor.ResyncPace})
	format := notifier.NewFormatter(cfg.Monitor.Location)
	rt := router.New(router.Deps{
		Registry:  reg,
		Notifier:  notifier.New(session, log),
		Commands:  command.NewInterpreter(reg, session, format, log),
		Directory: session,
		Replier:   session,
		Formatter: format,
		Logger:    log,
	}, router.Config{
		Recipients:  cfg.Discord.Recipients,
		SelfID:      session.SelfID,
		SettleDelay: cfg.Monitor.SettleDelay,
	})

	srv := server.New(log)
	srv.RegisterRouter(routes.NewHealthRoutes(liveness{router: rt, registry: reg}, time.Now()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rt.Run(gctx, session.Events())
	})
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("Starting server", "port", cfg.Server.Port)
		return srv.Start(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.KeepAlive.Enabled {
		pinger := keepalive.New(cfg.KeepAlive.URL, cfg.KeepAlive.Interval, log)
		g.Go(func() error {
			return pinger.Run(gctx)
		})
	}

	slog.Info("Connecting to Discord gateway",
		"recipients", len(cfg.Discord.Recipients),
		"store", cfg.Storage.Backend,
		"timezone", cfg.Monitor.Timezone,
	)
	if err := session.Open(); err != nil {
		cancel()
		return errors.Join(err, g.Wait())
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Error("Failed to close Discord session", "error", err)
		}
	}()

	return g.Wait()
}

func openStore(cfg config.StorageConfig) (ports.GuildStore, error) {
	switch cfg.Backend {
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		store := jsonfile.NewStore(cfg.DataFile)
		slog.Info("Using JSON guild store", "path", store.Path())
		return store, nil
	}
}

// liveness adapts router and registry state for the health endpoint.
type liveness struct {
	router   *router.Router
	registry *registry.Registry
}

func (l liveness) State() string {
	return l.router.State().String()
}

func (l liveness) Monitored() int {
	return l.registry.Len()
}
