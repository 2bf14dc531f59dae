package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/yutthachai69/newjobflow/internal/auth"
	"github.com/yutthachai69/newjobflow/internal/background"
	"github.com/yutthachai69/newjobflow/internal/config"
	"github.com/yutthachai69/newjobflow/internal/database"
	"github.com/yutthachai69/newjobflow/internal/handlers"
	middlewareCustom "github.com/yutthachai69/newjobflow/internal/middleware"
	"github.com/yutthachai69/newjobflow/internal/models"
	"github.com/yutthachai69/newjobflow/internal/ratelimit"
	"github.com/yutthachai69/newjobflow/internal/repositories"
	"github.com/yutthachai69/newjobflow/internal/routes"
	"github.com/yutthachai69/newjobflow/internal/services"
	pkgauth "github.com/yutthachai69/newjobflow/pkg/auth"
	pkghttp "github.com/yutthachai69/newjobflow/pkg/http"
	pkglogger "github.com/yutthachai69/newjobflow/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Run migrations before opening the pool
	if cfg.Database.AutoMigrate {
		if err := runMigrations(&cfg.Database); err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	lockRepo := repositories.NewAccountLockRepository(db)
	eventRepo := repositories.NewSecurityEventRepository(db)
	incidentRepo := repositories.NewSecurityIncidentRepository(db)

	// Rate limiter with per-class budgets
	limiter := ratelimit.New(ratelimit.Config{
		Classes: map[ratelimit.Class]ratelimit.ClassConfig{
			ratelimit.ClassAPI:    {Window: cfg.RateLimit.APIWindow, MaxRequests: cfg.RateLimit.APIMaxRequests},
			ratelimit.ClassLogin:  {Window: cfg.RateLimit.LoginWindow, MaxRequests: cfg.RateLimit.LoginMaxRequests},
			ratelimit.ClassUpload: {Window: cfg.RateLimit.UploadWindow, MaxRequests: cfg.RateLimit.UploadMaxRequests},
		},
	}, logger)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(
		limiter,
		lockRepo,
		eventRepo,
		cfg.Security.EventRetentionDays,
		cfg.Security.CleanupInterval,
		logger,
	)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	// Timing delay for auth security
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandMs,
	})

	// Optional AWS SES alerting for serious incidents
	var alerter services.IncidentAlerter
	if cfg.Alerts.Enabled {
		alertService, err := services.NewAWSSESAlertService(
			cfg.Alerts.AWSRegion,
			cfg.Alerts.FromAddress,
			cfg.Alerts.AlertAddress,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize alert service", slog.Any("error", err))
			os.Exit(1)
		}
		alerter = alertService
	}

	// Initialize services
	eventService := services.NewSecurityEventService(eventRepo, logger)
	lockoutService := services.NewLockoutService(lockRepo, eventService, services.LockoutConfig{
		DefaultLockDuration: cfg.Security.DefaultLockDuration,
	}, logger)
	incidentService := services.NewSecurityIncidentService(incidentRepo, eventService, alerter, logger)
	authzService := services.NewAuthorizationService()
	userService := services.NewUserService(userRepo, eventService, logger)
	authService := services.NewAuthService(userRepo, lockoutService, eventService, tokenManager, timingDelay, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, lockoutService, authzService)
	securityHandler := handlers.NewSecurityHandler(incidentService, eventService)

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, cfg.Server.Env, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middlewareCustom.GlobalRateLimit(cfg.RateLimit.GlobalRequestsPerMinute))

	// Register routes
	routes.RegisterRoutes(router, authHandler, userHandler, securityHandler, tokenManager, userRepo, limiter, ipConfig, eventService)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// runMigrations applies pending goose migrations over a database/sql handle
func runMigrations(cfg *config.DatabaseConfig) error {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// ensureAdminUser creates the first admin user if ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, env string, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Admin",
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
	}

	if _, err = userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully",
		pkglogger.RedactedAttr("email", adminEmail, env))
	return nil
}
