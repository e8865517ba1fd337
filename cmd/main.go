package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tinoosan/draingate/internal/config"
	"github.com/tinoosan/draingate/internal/drain"
	"github.com/tinoosan/draingate/internal/gate"
	httpapi "github.com/tinoosan/draingate/internal/httpapi/v1"
	"github.com/tinoosan/draingate/internal/storage/memory"
	pgstore "github.com/tinoosan/draingate/internal/storage/postgres"
	"github.com/tinoosan/draingate/internal/storage/redisstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	var (
		store    httpapi.SessionStore
		drainSt  drain.SessionStore
		toggler  gate.Toggler
		shared   gate.Provider
		backend  string
		closeFns []func()
	)

	switch {
	case cfg.RedisAddr != "":
		rs, err := redisstore.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "err", err)
			os.Exit(1)
		}
		closeFns = append(closeFns, func() { _ = rs.Close() })
		store, drainSt, toggler, shared, backend = rs, rs, rs, rs, "redis"
		logger.Info("session/state backend: redis", "addr", cfg.RedisAddr)
	case cfg.DatabaseURL != "":
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL, cfg.SessionTTL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFns = append(closeFns, func() { pg.Close() })
		store, drainSt, toggler, shared, backend = pg, pg, pg, pg, "postgres"
		logger.Info("session/state backend: postgres")
	default:
		mem := memory.New(cfg.SessionTTL)
		store, drainSt, backend = mem, mem, "memory"
		logger.Info("session/state backend: memory (sessions are pod-local)")
	}

	// State providers in precedence order: shared store, local marker file,
	// static default from the environment.
	marker := gate.NewMarker(cfg.MaintenanceFile)
	providers := make([]gate.Provider, 0, 3)
	if shared != nil {
		providers = append(providers, shared)
	}
	providers = append(providers, marker, gate.Static(cfg.MaintenanceDefault))
	if toggler == nil {
		toggler = marker
	}
	resolver := gate.NewResolver(cfg.StateLookupTimeout, logger, providers...)

	ctl := drain.NewController(cfg.GracePeriod, cfg.PropagationDelay, drainSt, logger)
	g := gate.New(cfg.Role, resolver, ctl)

	if cfg.Role == gate.RoleStandard {
		monitor := drain.NewMonitor(ctl, resolver, cfg.PollInterval, cfg.GracePeriod, logger)
		go monitor.Run(ctx)
	}

	srvMux := httpapi.New(g, ctl, store, toggler, httpapi.Options{
		RetryAfter:      cfg.RetryAfter,
		AdminRestricted: cfg.AdminRestricted,
		Backend:         backend,
		Pod:             cfg.Pod,
	}, logger).Handler()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srvMux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// No WriteTimeout: /events holds its response open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("draingate listening", "addr", srv.Addr, "role", cfg.Role.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Keep serving while the drain sequence runs: readiness reports
		// not-ready immediately, in-flight and grace-window traffic
		// completes, then the listener closes.
		ctl.Drain(context.Background())
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	for _, fn := range closeFns {
		fn()
	}
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
