package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/api"
	"github.com/school-newsroom-api/internal/config"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/events"
	"github.com/school-newsroom-api/internal/identity"
	"github.com/school-newsroom-api/internal/ratelimit"
	"github.com/school-newsroom-api/internal/repository"
	"github.com/school-newsroom-api/internal/service"
	"github.com/school-newsroom-api/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:           "newsroom",
		Short:         "School newsroom CMS API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply pending migrations before serving")

	cmd.AddCommand(migrateCmd(), setupAdminCmd(), seedCategoriesCmd(), versionCmd())
	return cmd
}

// app holds the wired dependencies shared by the server and the admin commands
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	db        *database.DB
	publisher events.Publisher
	services  *service.Services
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	config.LoadDotEnvs("")
	log := logger.New()
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, log, err
	}
	return cfg, log, nil
}

func newApp() (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher = events.NewNopPublisher(log)
	if cfg.Broker.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.Broker.URL, cfg.Broker.Exchange, log)
		if err != nil {
			db.Close()
			return nil, err
		}
		publisher = rabbit
	}

	repos := repository.New(db)
	provider := identity.NewLocalProvider(repos.Identity, publisher, identity.Options{
		Secret:     cfg.Auth.JWTSecret,
		SessionTTL: cfg.Auth.SessionTTL,
		InviteTTL:  cfg.Auth.InviteTTL,
		SiteURL:    cfg.Auth.SiteURL,
	}, log)

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		publisher: publisher,
		services:  service.NewServices(repos, provider, publisher, log),
	}, nil
}

func (a *app) Close() {
	a.services.Views.Stop()
	a.publisher.Close()
	a.db.Close()
}

func newLimiter(cfg *config.RateLimitConfig, log zerolog.Logger) ratelimit.Limiter {
	if cfg.RedisAddr == "" {
		log.Info().Msg("Rate limiting disabled, REDIS_ADDR not set")
		return ratelimit.Noop{}
	}
	limiter, err := ratelimit.NewRedisLimiter(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Limit, cfg.Window, log)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, rate limiting disabled")
		return ratelimit.Noop{}
	}
	return limiter
}

func serve(migrate bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	log, cfg := a.log, a.cfg
	log.Info().Str("version", Version).Msg("Starting school newsroom API server...")

	if migrate {
		if err := a.db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			return err
		}
	}

	limiter := newLimiter(&cfg.RateLimit, log)
	defer limiter.Close()

	router := api.NewRouter(a.services, a.db, limiter, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}
