package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v3"

	"floorplan-sketch/internal/footprint"
	"floorplan-sketch/internal/lines"
	"floorplan-sketch/internal/sketch/repository"
	"floorplan-sketch/internal/sketch/service"
)

// ============================================================
// Sketch Handler
// ============================================================

// BuildingSource: источник контуров зданий (Overpass).
type BuildingSource interface {
	FetchBuilding(ctx context.Context, lat, lng float64) (*footprint.Building, error)
}

// LineExtractor: внешний сервис выделения линий из PDF/PNG.
type LineExtractor interface {
	Extract(ctx context.Context, filename string, r io.Reader) ([]lines.Line, error)
}

type Options struct {
	Threshold float64
	Canvas    footprint.Canvas
}

type Handler struct {
	sessions  *service.SessionStore
	repo      *repository.Repository
	buildings BuildingSource
	extractor LineExtractor
	opts      Options
}

func New(sessions *service.SessionStore, repo *repository.Repository, buildings BuildingSource, extractor LineExtractor, opts Options) *Handler {
	return &Handler{
		sessions:  sessions,
		repo:      repo,
		buildings: buildings,
		extractor: extractor,
		opts:      opts,
	}
}

// Register вешает все маршруты рисования на router.
func (h *Handler) Register(r fiber.Router) {
	r.Post("/snap", h.Snap)

	r.Post("/sessions", h.OpenSession)
	r.Get("/sessions/:id", h.GetSession)
	r.Post("/sessions/:id/events", h.SessionEvent)
	r.Put("/sessions/:id/mode", h.SetMode)
	r.Put("/sessions/:id/footprint", h.SetFootprint)
	r.Delete("/sessions/:id/scene", h.ClearScene)
	r.Get("/sessions/:id/svg", h.SessionSVG)
	r.Post("/sessions/:id/save", h.SaveSession)
	r.Delete("/sessions/:id", h.CloseSession)

	r.Get("/footprint", h.FetchFootprint)
	r.Post("/footprint/project", h.ProjectFootprint)
	r.Post("/footprint/geojson", h.UploadGeoJSON)

	r.Post("/lines/filter", h.FilterLines)
	r.Post("/lines/extract", h.ExtractLines)

	r.Get("/sketches", h.ListSketches)
	r.Post("/sketches", h.CreateSketch)
	r.Post("/sketches/import", h.ImportSketch)
	r.Get("/sketches/:id", h.GetSketch)
	r.Get("/sketches/:id/svg", h.SketchSVG)
	r.Delete("/sketches/:id", h.DeleteSketch)
}

func (h *Handler) canvasSize() (int, int) {
	return int(h.opts.Canvas.Width), int(h.opts.Canvas.Height)
}

// decodeBody разбирает JSON тело запроса.
func decodeBody(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return errors.New("invalid json")
	}
	return nil
}
