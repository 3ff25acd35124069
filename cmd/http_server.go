package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/practice-management/api"
	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/activity"
	activityPostgres "github.com/frahmantamala/practice-management/internal/activity/postgres"
	"github.com/frahmantamala/practice-management/internal/auth"
	authPostgres "github.com/frahmantamala/practice-management/internal/auth/postgres"
	"github.com/frahmantamala/practice-management/internal/core/events"
	"github.com/frahmantamala/practice-management/internal/errorlog"
	"github.com/frahmantamala/practice-management/internal/patient"
	patientPostgres "github.com/frahmantamala/practice-management/internal/patient/postgres"
	"github.com/frahmantamala/practice-management/internal/role"
	rolePostgres "github.com/frahmantamala/practice-management/internal/role/postgres"
	"github.com/frahmantamala/practice-management/internal/security"
	"github.com/frahmantamala/practice-management/internal/transport"
	"github.com/frahmantamala/practice-management/internal/transport/rest"
	"github.com/frahmantamala/practice-management/internal/user"
	userPostgres "github.com/frahmantamala/practice-management/internal/user/postgres"
	"github.com/frahmantamala/practice-management/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// Let queued activity records land before the pool goes away.
	deps.Bus.Wait()
	if sqlDB, err := deps.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	}
	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, lg, err := bootstrap()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := api.Load(ctx); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database, config.App.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	store, redisClient, err := newRateLimitStore(ctx, config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rate limit store: %w", err)
	}
	limiter := security.NewRateLimiter(store, lg, policyOptions(config.RateLimit)...)
	securityService := security.NewService(limiter)

	errs := errorlog.NewService(lg, logger.Critical())

	bus := events.NewEventBus(lg)
	activityService := activity.NewService(activityPostgres.NewActivityRepository(db), lg)
	activityService.Subscribe(bus)
	recorder := activity.NewBusRecorder(bus)

	roleService := role.NewService(rolePostgres.NewRoleRepository(db), recorder, lg)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(db), tokens, roleService, lg,
		auth.WithRateLimiter(securityService),
		auth.WithRecorder(recorder),
		auth.WithBcryptCost(config.Security.BCryptCost),
		auth.WithAccessTTL(config.Security.AccessTokenDuration),
	)

	userService := user.NewService(userPostgres.NewUserRepository(db), authService, recorder, lg)
	patientService := patient.NewService(patientPostgres.NewPatientRepository(db), recorder, lg)

	base := transport.NewBaseHandler(lg, errs)

	var healthOpts []rest.HealthOption
	if redisClient != nil {
		healthOpts = append(healthOpts, rest.WithRedis(redisClient))
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.RouterConfig{
		Logger:         lg,
		Errors:         errs,
		Limiter:        securityService,
		AllowedOrigins: config.Server.AllowedOrigins,
		Debug:          config.App.Debug,
	}, rest.Handlers{
		Auth:     auth.NewHandler(base, authService),
		User:     user.NewHandler(base, userService),
		Role:     role.NewHandler(base, roleService),
		Patient:  patient.NewHandler(base, patientService),
		Activity: activity.NewHandler(base, activityService),
		Health:   rest.NewHealthHandler(sqlDB, config.Database.Driver, healthOpts...),
	})

	return &Dependencies{
		Config: config,
		DB:     db,
		Redis:  redisClient,
		Bus:    bus,
		Router: router,
		Logger: lg,
	}, nil
}

// newRateLimitStore returns the redis client too when one was opened, so the
// caller can health-check and close it.
func newRateLimitStore(ctx context.Context, cfg internal.RateLimitConfig) (security.Store, *redis.Client, error) {
	if cfg.Backend != "redis" {
		store := security.NewMemoryStore()
		store.StartCleanup(ctx, time.Minute)
		return store, nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return security.NewRedisStore(client, cfg.Redis.KeyPrefix), client, nil
}

func policyOptions(cfg internal.RateLimitConfig) []security.LimiterOption {
	opts := make([]security.LimiterOption, 0, len(cfg.Policies))
	for name, p := range cfg.Policies {
		opts = append(opts, security.WithPolicy(name, security.Policy{
			MaxAttempts: p.MaxAttempts,
			Window:      p.Window,
			Lockout:     p.Lockout,
		}))
	}
	return opts
}
