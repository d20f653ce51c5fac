package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/greenhouse-dashboard/internal/api/http"
	"github.com/i474232898/greenhouse-dashboard/internal/config"
	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse"
	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse/gateway"
	"github.com/i474232898/greenhouse-dashboard/internal/logging"
	"github.com/i474232898/greenhouse-dashboard/internal/render"
	"github.com/i474232898/greenhouse-dashboard/internal/scheduler"
	"github.com/i474232898/greenhouse-dashboard/internal/store"
	"github.com/i474232898/greenhouse-dashboard/internal/views"
)

const appName = "greenhouse-dashboard"

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg, version, appName)
	slog.SetDefault(log)

	if err := views.LoadTemplates(); err != nil {
		log.Error("failed to load templates", "error", err)
		os.Exit(1)
	}
	if err := render.Register(); err != nil {
		log.Error("failed to register chart theme", "error", err)
		os.Exit(1)
	}

	// Shared HTTP client for gateway calls.
	httpClient := &http.Client{
		Timeout: cfg.GatewayTimeout,
	}
	client := gateway.NewClient(httpClient, cfg.GatewayURL, cfg.GatewayMaxRetries)

	// Recently loaded daily files are served from memory.
	memStore := store.NewMemoryStore(cfg.StoreMaxFiles, cfg.StoreMaxAge)
	service := greenhouse.NewService(client, memStore, cfg.SortFilesDesc)

	ctrl := greenhouse.NewController(service, greenhouse.ControllerOptions{
		LabelDensity: cfg.LabelDensity,
		DateLayout:   cfg.DateLayout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := ctrl.Load(ctx); err != nil {
			log.Warn("initial load failed", "error", err)
		}
	}()

	// Picks up new daily files without a restart.
	sched := scheduler.New(ctrl, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, ctrl, service, httpapi.Options{
		Title:        "Greenhouse",
		LabelDensity: cfg.LabelDensity,
		DateLayout:   cfg.DateLayout,
	})

	go func() {
		log.Info("listening", "port", cfg.Port, "gateway", cfg.GatewayURL)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
