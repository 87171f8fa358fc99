package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/portalcipa/cipa-server/assistant"
	"github.com/portalcipa/cipa-server/auth"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/db"
	"github.com/portalcipa/cipa-server/handlers"
	"github.com/portalcipa/cipa-server/metrics"
	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/notify"
	"github.com/portalcipa/cipa-server/render"
	"github.com/portalcipa/cipa-server/router"
	"github.com/portalcipa/cipa-server/watcher"
)

func main() {
	var err error

	if err := cliparse.LoadDotEnv(); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	cliparse.SetupLogging(cfg.LogLevel)

	if cfg.PrintAdminKey != "" {
		fmt.Println(auth.GenerateAdminKey(cfg.PrintAdminKey, cfg.AdminKeySalt))
		return
	}

	ctx := context.Background()

	// Connect and migrate
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn, cfg.DatabaseType); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// First-run settings and administrators
	seed, err := cliparse.LoadSeed(cfg.SeedFile)
	if err != nil {
		slog.Error("seed file invalid", "error", err)
		os.Exit(1)
	}
	now := time.Now().In(cfg.Location)
	if err := handlers.EnsureSettings(ctx, dbConn, seed, now); err != nil {
		slog.Error("settings initialisation failed", "error", err)
		os.Exit(1)
	}
	admins := append(append([]string{}, cfg.AdminEmails...), seed.AdminEmails...)
	if err := handlers.EnsureAdmins(ctx, dbConn, admins, now); err != nil {
		slog.Error("admin initialisation failed", "error", err)
		os.Exit(1)
	}

	svc := buildServices(ctx, cfg, seed)

	// Background schedule watcher
	w, err := watcher.New(cfg.WatchCron, handlers.TimelineLoader(dbConn, cfg, svc), svc.Clock, svc.Metrics)
	if err != nil {
		slog.Error("watcher setup failed", "error", err)
		os.Exit(1)
	}
	w.Start()
	defer w.Stop()

	// Create router
	mux := router.NewRouter(dbConn, cfg, svc)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "timezone", cfg.Location.String())
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// buildServices enables the optional integrations present in cfg
func buildServices(ctx context.Context, cfg cliparse.Config, seed *cliparse.Seed) handlers.Services {
	svc := handlers.Services{
		Metrics:   metrics.New(),
		Templates: render.MustNew(),
		Clock:     time.Now,
	}

	if cfg.MailEnabled() {
		svc.Notifier = notify.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunFrom, seed.CompanyName)
		slog.Info("mail notifications enabled", "domain", cfg.MailgunDomain)
	}

	if cfg.PDFEnabled {
		svc.PDF = render.NewChromeRenderer(cfg.ChromeTimeout)
		slog.Info("pdf rendering enabled", "timeout", cfg.ChromeTimeout)
	}

	if cfg.GeminiAPIKey != "" {
		g, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("assistant disabled", "error", err)
		} else {
			svc.Assistant = g
			slog.Info("assistant enabled", "model", cfg.GeminiModel)
		}
	}

	return svc.WithDefaults()
}
