package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/openriskhq/riskdeck-auth/internal/auth/http"
	"github.com/openriskhq/riskdeck-auth/internal/auth/notify"
	"github.com/openriskhq/riskdeck-auth/internal/auth/service"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store/drivers/sqlite"
	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/jwtx"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the auth service together: store, crypto, services,
// notifier and HTTP surface.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	keys     *jwtx.EdDSAKeyPair
	notifier notify.Notifier

	registrationService  *service.RegistrationService
	verificationService  *service.VerificationService
	loginService         *service.LoginService
	magicLinkService     *service.MagicLinkService
	passwordResetService *service.PasswordResetService
	mfaService           *service.MFAService
	housekeepingService  *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "riskdeck-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Ephemeral signing key: sessions do not survive a restart.
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	app.keys, err = jwtx.NewEdDSAKeyPair(pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	if err := app.initNotifier(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the HTTP server, housekeeping and the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if closer, ok := app.notifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("error closing notifier", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initNotifier() error {
	switch app.cfg.Notifier {
	case "smtp":
		app.notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:        app.cfg.SMTPHost,
			Port:        app.cfg.SMTPPort,
			Username:    app.cfg.SMTPUsername,
			Password:    app.cfg.SMTPPassword,
			FromAddress: app.cfg.SMTPFrom,
			AppURL:      app.cfg.AppURL,
		})
	case "log":
		if app.cfg.Env == "prod" {
			return fmt.Errorf("log notifier is not allowed in prod")
		}
		app.notifier = &notify.LogNotifier{Logger: app.logger}
	default:
		return fmt.Errorf("unknown notifier %q", app.cfg.Notifier)
	}
	return nil
}

func (app *Application) initServices() error {
	hasher, err := cryptox.NewHasher(app.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to configure password hasher: %w", err)
	}

	tokens := &service.TokenService{Store: app.db}
	sessions := &service.SessionIssuer{
		Signer: app.keys,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
	}

	app.registrationService = &service.RegistrationService{
		Store:    app.db,
		Hasher:   hasher,
		Tokens:   tokens,
		Notifier: app.notifier,
	}
	app.verificationService = &service.VerificationService{
		Store:    app.db,
		Tokens:   tokens,
		Notifier: app.notifier,
	}
	app.loginService = &service.LoginService{
		Store:    app.db,
		Hasher:   hasher,
		Sessions: sessions,
	}
	app.magicLinkService = &service.MagicLinkService{
		Store:    app.db,
		Tokens:   tokens,
		Sessions: sessions,
		Notifier: app.notifier,
	}
	app.passwordResetService = &service.PasswordResetService{
		Store:    app.db,
		Hasher:   hasher,
		Notifier: app.notifier,
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: "RiskDeck",
	}
	app.housekeepingService = &service.HousekeepingService{
		Store:    app.db,
		Logger:   app.logger,
		Interval: app.cfg.HousekeepingInterval,
	}

	return nil
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.keys, app.cfg.Issuer, BuildVersion, app.db, app.logger)
	app.router.RegistrationService = app.registrationService
	app.router.VerificationService = app.verificationService
	app.router.LoginService = app.loginService
	app.router.MagicLinkService = app.magicLinkService
	app.router.PasswordResetService = app.passwordResetService
	app.router.MFAService = app.mfaService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
