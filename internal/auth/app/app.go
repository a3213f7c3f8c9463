package app

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

	httpapi "github.com/NathanHTC/Authentication/internal/auth/http"
	"github.com/NathanHTC/Authentication/internal/auth/mail"
	"github.com/NathanHTC/Authentication/internal/auth/service"
	"github.com/NathanHTC/Authentication/internal/auth/store"
	"github.com/NathanHTC/Authentication/internal/auth/store/drivers/postgres"
	"github.com/NathanHTC/Authentication/internal/auth/store/drivers/sqlite"
	"github.com/NathanHTC/Authentication/pkg/jwtx"
	"github.com/NathanHTC/Authentication/pkg/lockx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	issuer   *jwtx.Issuer
	locker   lockx.Locker
	redis    *redis.Client // nil unless LOCK_DRIVER=redis
	mailer   mail.Sender
	registry *prometheus.Registry
	metrics  *service.Metrics

	// Services
	sessionManager    *service.SessionManager
	accessGuard       *service.AccessGuard
	passwordReset     *service.PasswordResetService
	emailVerification *service.EmailVerificationService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return newApplication(cfg, nil)
}

// newApplication builds the application. A nil mailer is chosen from config.
func newApplication(cfg Config, mailer mail.Sender) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		mailer: mailer,
	}

	issuer, err := jwtx.NewIssuer(cfg.Secrets(), jwtx.Codec{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.issuer = issuer

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initLocker(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initMailer(); err != nil {
		app.closeBackends()
		return nil, err
	}

	app.initMetrics()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.closeBackends()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	var errs []error

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.Database.Driver {
	case DatabaseDriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.Database.DSN)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.Database.File))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Database.Driver)
	return nil
}

// initLocker sets up the per-account lock used by refresh rotation
func (app *Application) initLocker(ctx context.Context) error {
	if app.cfg.Lock.Driver != LockDriverRedis {
		app.locker = lockx.NewKeyedMutex()
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: app.cfg.Lock.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redis = client
	app.locker = lockx.NewRedisLocker(client, "auth:lock:", app.cfg.Lock.TTL, app.logger)
	app.logger.Info("using redis account locks", "addr", app.cfg.Lock.RedisAddr)
	return nil
}

// initMailer picks SMTP delivery when a host is configured
func (app *Application) initMailer() error {
	if app.mailer != nil {
		return nil
	}

	if app.cfg.Email.Host == "" {
		app.logger.Warn("EMAIL_HOST not set, mails will be logged instead of sent")
		app.mailer = mail.LogSender{}
		return nil
	}

	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:           app.cfg.Email.Host,
		Port:           app.cfg.Email.Port,
		Username:       app.cfg.Email.User,
		Password:       app.cfg.Email.Password,
		From:           app.cfg.Email.From,
		FromName:       app.cfg.Email.FromName,
		AllowPlaintext: app.cfg.Email.AllowPlaintext,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	app.mailer = sender
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = service.NewMetrics(app.registry)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionManager = &service.SessionManager{
		Store:          app.db,
		Issuer:         app.issuer,
		Locker:         app.locker,
		RevokeOnLogout: app.cfg.LogoutRevokesRefresh,
		Metrics:        app.metrics,
	}

	app.accessGuard = &service.AccessGuard{
		Store:  app.db,
		Issuer: app.issuer,
	}

	app.passwordReset = &service.PasswordResetService{
		Store:     app.db,
		Issuer:    app.issuer,
		Mailer:    app.mailer,
		ClientURL: app.cfg.ClientURL,
		Metrics:   app.metrics,
	}

	app.emailVerification = &service.EmailVerificationService{
		Store:     app.db,
		Issuer:    app.issuer,
		Mailer:    app.mailer,
		ClientURL: app.cfg.ClientURL,
		Metrics:   app.metrics,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		httpapi.CookieConfig{
			Secure: app.cfg.Cookie.Secure,
			Domain: app.cfg.Cookie.Domain,
		},
		app.registry,
		app.logger,
	)

	// Wire services to router
	router.SessionManager = app.sessionManager
	router.AccessGuard = app.accessGuard
	router.PasswordReset = app.passwordReset
	router.EmailVerification = app.emailVerification
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
