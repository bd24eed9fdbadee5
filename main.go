package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"skportal-backend/internal/api"
	"skportal-backend/internal/auth"
	"skportal-backend/internal/certs"
	"skportal-backend/internal/config"
	"skportal-backend/internal/content"
	"skportal-backend/internal/database"
	"skportal-backend/internal/events"
	"skportal-backend/internal/models"
	"skportal-backend/internal/storage"
	"skportal-backend/internal/web"
)

func main() {
	parser := argparse.NewParser("skportal", "Sangguniang Kabataan portal server")
	envFile := parser.String("e", "env", &argparse.Options{Help: "Load environment from this file (default: .env if present)", Default: ""})

	serveCmd := parser.NewCommand("serve", "Run the web server")
	port := serveCmd.String("p", "port", &argparse.Options{Help: "Listen port (overrides SK_PORT)", Default: ""})

	createCmd := parser.NewCommand("create-admin", "Create an admin account")
	username := createCmd.String("u", "username", &argparse.Options{Help: "Admin username", Required: true})
	password := createCmd.String("", "password", &argparse.Options{Help: "Admin password", Required: true})
	email := createCmd.String("", "email", &argparse.Options{Help: "Contact email", Default: ""})
	fullName := createCmd.String("", "full-name", &argparse.Options{Help: "Display name", Default: ""})

	disableCmd := parser.NewCommand("disable-admin", "Disable an admin account and end its sessions")
	disableUser := disableCmd.String("u", "username", &argparse.Options{Help: "Admin username", Required: true})

	enableCmd := parser.NewCommand("enable-admin", "Re-enable a disabled admin account")
	enableUser := enableCmd.String("u", "username", &argparse.Options{Help: "Admin username", Required: true})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	logger := newLogger(cfg.LogLevel)

	logger.Infof("Opening database at %s", cfg.DBPath)
	if err := database.Open(database.Config{Path: cfg.DBPath}); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	authSvc := auth.NewService(auth.Options{
		SessionTTL:        cfg.SessionTTL,
		AdminCreateSecret: cfg.AdminCreateSecret,
	})

	switch {
	case createCmd.Happened():
		admin, err := authSvc.CreateAdmin(models.CreateAdminRequest{
			Username: *username,
			Password: *password,
			Email:    *email,
			FullName: *fullName,
		})
		if err != nil {
			logger.Fatalf("Failed to create admin: %v", err)
		}
		logger.Infof("Created admin %q (id %d)", admin.Username, admin.ID)
	case disableCmd.Happened():
		setActive(authSvc, logger, *disableUser, false)
	case enableCmd.Happened():
		setActive(authSvc, logger, *enableUser, true)
	case serveCmd.Happened():
		if err := serve(cfg, logger, authSvc); err != nil {
			logger.Fatalf("Server error: %v", err)
		}
	}
}

func setActive(authSvc *auth.Service, logger *log.Logger, username string, active bool) {
	admin, err := authSvc.SetAdminActive(username, active)
	if err != nil {
		logger.Fatalf("Failed to update admin %q: %v", username, err)
	}
	action, state := models.ActionAdminEnable, "enabled"
	if !active {
		action, state = models.ActionAdminDisable, "disabled"
	}
	if err := database.NewAuditRepo().Log(0, "", action, admin.Username, map[string]string{"via": "cli"}, ""); err != nil {
		logger.Warnf("Failed to write audit entry: %v", err)
	}
	logger.Infof("Admin %q is now %s", admin.Username, state)
}

func newLogger(level string) *log.Logger {
	logger := log.New("skportal")
	switch level {
	case "debug":
		logger.SetLevel(log.DEBUG)
	case "warn":
		logger.SetLevel(log.WARN)
	case "error":
		logger.SetLevel(log.ERROR)
	default:
		logger.SetLevel(log.INFO)
	}
	return logger
}

func serve(cfg *config.Config, logger *log.Logger, authSvc *auth.Service) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrapAdmin(cfg, authSvc, logger); err != nil {
		logger.Warnf("Failed to create bootstrap admin: %v", err)
	}

	store, mediaRoot := openStorage(ctx, cfg, logger)

	hub := events.NewHub(cfg.AllowedOrigins)
	contentSvc := content.NewService(store, hub, logger)

	loginLimiter := auth.DefaultRateLimiter()
	defer loginLimiter.Stop()

	// One allowance for the JSON endpoint and the rendered form
	grievanceLimit := auth.SubmissionLimit(cfg.GrievancesPerMinute)

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	ipExtractor, err := auth.ClientIPExtractor(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Renderer = renderer
	e.IPExtractor = ipExtractor

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("15M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Secret-Key"},
		AllowCredentials: true,
	}))

	// API routes
	api.RegisterRoutes(e.Group("/api"), api.NewHandler(api.Options{
		Auth:           authSvc,
		Content:        contentSvc,
		Events:         hub,
		LoginLimiter:   loginLimiter,
		SecureCookies:  cfg.IsProduction(),
		GrievanceLimit: grievanceLimit,
	}))

	// Server-rendered pages
	web.NewSite(web.Options{
		Content:        contentSvc,
		Auth:           authSvc,
		LoginLimiter:   loginLimiter,
		SecureCookies:  cfg.IsProduction(),
		GrievanceLimit: grievanceLimit,
	}).Register(e, mediaRoot)

	go sessionJanitor(ctx, authSvc, logger)

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		if cfg.TLSCertDir != "" {
			certPath, keyPath, err := certs.EnsureCertificates(cfg.TLSCertDir, publicHost(cfg.PublicBaseURL))
			if err != nil {
				errc <- err
				return
			}
			logger.Infof("Starting SK portal on https://localhost%s", addr)
			errc <- e.StartTLS(addr, certPath, keyPath)
			return
		}
		logger.Infof("Starting SK portal on port %s", cfg.Port)
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStorage builds the configured backend. A backend that fails to start
// leaves uploads unavailable rather than stopping the public site.
func openStorage(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.Storage, string) {
	switch cfg.StorageBackend {
	case "gcs":
		gcs, err := storage.NewStorageGCS(ctx, logger, cfg.StorageBuckets, cfg.GCSEndpoint)
		if err != nil {
			logger.Errorf("Google Cloud Storage unavailable, uploads disabled: %v", err)
			return nil, ""
		}
		return gcs, ""
	default:
		fs, err := storage.NewStorageFS(logger, cfg.StorageRoot, cfg.PublicBaseURL, cfg.StorageBuckets)
		if err != nil {
			logger.Errorf("Upload directory unavailable, uploads disabled: %v", err)
			return nil, ""
		}
		return fs, fs.Root
	}
}

// bootstrapAdmin creates the admin from SK_BOOTSTRAP_ADMIN_* when no admin exists yet
func bootstrapAdmin(cfg *config.Config, authSvc *auth.Service, logger *log.Logger) error {
	if cfg.BootstrapAdminUsername == "" {
		return nil
	}
	count, err := database.NewAdminRepo().Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin, err := authSvc.CreateAdmin(models.CreateAdminRequest{
		Username: cfg.BootstrapAdminUsername,
		Password: cfg.BootstrapAdminPassword,
	})
	if err != nil {
		return err
	}
	logger.Infof("Created bootstrap admin %q", admin.Username)
	return nil
}

func sessionJanitor(ctx context.Context, authSvc *auth.Service, logger *log.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authSvc.PurgeExpiredSessions()
			if err != nil {
				logger.Warnf("Session cleanup failed: %v", err)
			} else if n > 0 {
				logger.Debugf("Removed %d expired sessions", n)
			}
		}
	}
}

func publicHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
