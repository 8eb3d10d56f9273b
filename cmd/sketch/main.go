package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"floorplan-sketch/internal/common/config"
	"floorplan-sketch/internal/common/middleware"
	"floorplan-sketch/internal/footprint"
	"floorplan-sketch/internal/lines"
	"floorplan-sketch/internal/sketch/handlers"
	"floorplan-sketch/internal/sketch/repository"
	"floorplan-sketch/internal/sketch/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Sketch Service
// ============================================================

func main() {
	cfg := config.Load()

	db, err := repository.OpenSQLite(cfg.SketchDBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	httpTimeout := time.Duration(cfg.HTTPTimeout) * time.Second
	sketchHandler := handlers.New(
		service.NewSessionStore(),
		repo,
		footprint.NewOverpassClient(cfg.OverpassURL, cfg.FootprintRadius, httpTimeout),
		lines.NewExtractorClient(cfg.ExtractorURL, httpTimeout),
		handlers.Options{
			Threshold: cfg.SnapThreshold,
			Canvas:    footprint.Canvas{Width: float64(cfg.CanvasWidth), Height: float64(cfg.CanvasHeight)},
		},
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    50 * 1024 * 1024,
		AppName:      "Floorplan Sketch",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check & Docs Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(db))
	app.Get("/health/startup", handlers.StartupProbe)

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)

	// ============================================================
	// Sketch Routes
	// ============================================================

	sketchHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Floorplan Sketch on %s (env: %s, snap threshold: %g)", addr, cfg.Environment, cfg.SnapThreshold)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
