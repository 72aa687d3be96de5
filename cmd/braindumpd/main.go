package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"braindump/internal/adapter/driven/elevenlabs"
	"braindump/internal/adapter/driven/gemini"
	googleadapter "braindump/internal/adapter/driven/google"
	sqliteadapter "braindump/internal/adapter/driven/sqlite"
	httphandler "braindump/internal/adapter/driving/http"
	"braindump/internal/application"
	"braindump/internal/config"
)

// oauthScopes are the Google API scopes the subsystem needs: read access to
// the calendar, read/write access to the task lists, and the identity
// scopes for resolving the account's email on callback.
var oauthScopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/tasks",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"openid",
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env if present, then configuration (fail fast on missing
	// required env vars).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"provider_timeout", cfg.ProviderTimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire stores. Token columns are encrypted when a secret key is
	// configured, plaintext otherwise.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	userStore := sqliteadapter.NewUserRepo(db)

	// 6. Wire the Google provider.
	if !cfg.HasGoogleCredentials() {
		slog.Warn("no google oauth credentials configured, authorization flow inactive")
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		Scopes:       oauthScopes,
		Endpoint:     google.Endpoint,
	}
	clientFactory := googleadapter.NewFactory(oauthCfg, credentialStore)
	authProvider := googleadapter.NewAuth(oauthCfg)

	// 7. Wire the AI collaborators.
	organizer := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, nil)
	transcriber := elevenlabs.NewClient(cfg.ElevenLabsAPIKey, nil)

	// 8. Create application services.
	overrides := application.NewOverrides()
	authSvc := application.NewAuthService(
		authProvider,
		credentialStore,
		userStore,
		cfg.SessionSecret,
		cfg.SessionSecret,
		cfg.SessionTTL,
		cfg.FrontendURL,
	)
	syncSvc := application.NewSyncService(clientFactory, overrides, cfg.Tasklist, cfg.ProviderTimeout)
	mutationSvc := application.NewMutationService(clientFactory, overrides, cfg.Tasklist, cfg.ProviderTimeout)

	// 9. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(
		authSvc,
		syncSvc,
		mutationSvc,
		organizer,
		transcriber,
		cfg.SessionSecret,
		slog.Default(),
	)
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("braindumpd started", "listen_addr", cfg.ListenAddr)

	// 10. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 11. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
