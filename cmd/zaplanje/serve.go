package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zaplanje/price/internal/api"
	"github.com/zaplanje/price/internal/api/handler"
	"github.com/zaplanje/price/internal/api/metrics"
	"github.com/zaplanje/price/internal/core/ports"
	"github.com/zaplanje/price/internal/core/service"
	"github.com/zaplanje/price/internal/infrastructure/db/memory"
	redisstore "github.com/zaplanje/price/internal/infrastructure/db/redis"
	"github.com/zaplanje/price/internal/infrastructure/htmlhead"
	"github.com/zaplanje/price/internal/infrastructure/supabase"
	"github.com/zaplanje/price/internal/pkg/config"
	"github.com/zaplanje/price/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Run the HTTP API. Configuration comes from the environment; SUPABASE_URL and SUPABASE_ANON_KEY are required.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "zaplanje",
	})

	client, err := supabase.New(supabase.Config{
		URL:     cfg.Supabase.URL,
		AnonKey: cfg.Supabase.AnonKey,
		Timeout: cfg.Supabase.Timeout,
	})
	if err != nil {
		return err
	}

	checks := map[string]handler.Checker{"provider": client.Health}

	var store ports.SessionStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		store = redisstore.NewSessionStore(rdb, cfg.Redis.SessionTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
		store = memory.NewSessionStore()
	}

	registry := service.NewRegistry(
		func(clientID string) ports.AuthProvider { return supabase.NewAuth(client, store, clientID) },
		supabase.NewProfileRepository(client),
		logger.For("session"),
		service.WithIdleTimeout(cfg.SessionIdleTimeout),
	)
	defer registry.Close()
	metrics.TrackClientSessions(registry.Len)

	shell, err := htmlhead.LoadShell(cfg.Site.ShellTemplate)
	if err != nil {
		return err
	}
	share := service.NewShareService(service.Location{Origin: cfg.Site.Origin, Path: cfg.Site.Path}, logger.For("share"))

	e := api.NewRouter(api.Deps{
		Sessions:      registry,
		Share:         share,
		Meta:          service.NewMetaService(share),
		Shell:         shell,
		Checks:        checks,
		AuthRateLimit: cfg.AuthRateLimit,
		Log:           log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
