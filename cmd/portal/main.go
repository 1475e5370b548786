package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apiv1 "github.com/lipsense/portal/internal/api/v1"
	"github.com/lipsense/portal/internal/pkg/cache"
	"github.com/lipsense/portal/internal/pkg/database"
	"github.com/lipsense/portal/internal/pkg/env"
	"github.com/lipsense/portal/internal/pkg/jobqueue"
	"github.com/lipsense/portal/internal/pkg/router"
)

func main() {
	app := NewApplication()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		fiberlog.Info("[Main] shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			fiberlog.Errorf("[Main] shutdown: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	jobqueue.StopDefault()
	if err != nil {
		log.Fatal(err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	if err := database.SetupDatabase(); err != nil {
		fiberlog.Warnf("[Main] starting without database: %v", err)
	}
	cache.SetupCache()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/portal to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	engine := html.New(basePath+"views", ".html")
	engine.Reload(env.IsDev())

	// init fiber app
	app := fiber.New(fiber.Config{
		Views:       engine,
		BodyLimit:   1 * 1024 * 1024,
		ReadTimeout: 30 * time.Second,
	})

	// ignore and cache favicon
	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	metricsAuth := basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	})
	app.Get("/metrics", metricsAuth, monitor.New())
	app.Get("/metrics/prometheus", metricsAuth, adaptor.HTTPHandler(promhttp.Handler()))

	// static files
	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// SWAGGER / OPENAPI
	specPath := basePath + apiv1.SpecPath
	if _, err := apiv1.LoadSpec(context.Background(), specPath); err != nil {
		fiberlog.Errorf("[Main] API docs disabled: %v", err)
	} else {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: specPath,
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app)

	return app
}
