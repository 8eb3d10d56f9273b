package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"floorplan-sketch/internal/lines"
	"floorplan-sketch/internal/sketch/geometry"
)

// ============================================================
// Wall Lines
// ============================================================

type filterRequest struct {
	Lines   []lines.Line         `json:"lines"`
	Options *lines.FilterOptions `json:"options,omitempty"`
}

type linesResponse struct {
	Lines    []lines.Line       `json:"lines"`
	Segments []geometry.Segment `json:"segments"`
}

// FilterLines убирает дубли и нормирует линии в [0,1].
func (h *Handler) FilterLines(c fiber.Ctx) error {
	var req filterRequest
	if err := decodeBody(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := lines.DefaultFilterOptions()
	if req.Options != nil {
		opts = *req.Options
	}
	return c.JSON(h.linesResponse(req.Lines, opts))
}

// ExtractLines отправляет PDF/PNG во внешний сервис и возвращает его линии
// как отрезки холста без повторной фильтрации.
func (h *Handler) ExtractLines(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	if !lines.SupportedFile(fileHeader.Filename) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": lines.ErrUnsupportedFormat.Error()})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	log.Printf("[LINES] extract %s (%d bytes)", fileHeader.Filename, fileHeader.Size)
	raw, err := h.extractor.Extract(c.Context(), fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, lines.ErrUnsupportedFormat) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("[LINES] extractor error: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach extractor"})
	}

	// Внешний сервис уже отфильтровал и нормировал линии, остаётся растянуть их на холст.
	if raw == nil {
		raw = []lines.Line{}
	}
	log.Printf("[LINES] %s -> %d lines", fileHeader.Filename, len(raw))
	return c.JSON(linesResponse{
		Lines:    raw,
		Segments: lines.ToSegments(raw, h.opts.Canvas.Width, h.opts.Canvas.Height),
	})
}

func (h *Handler) linesResponse(raw []lines.Line, opts lines.FilterOptions) linesResponse {
	normalized := lines.Normalize(lines.FilterSimilar(raw, opts))
	if normalized == nil {
		normalized = []lines.Line{}
	}
	segments := lines.ToSegments(normalized, h.opts.Canvas.Width, h.opts.Canvas.Height)
	log.Printf("[LINES] %d raw -> %d filtered", len(raw), len(normalized))
	return linesResponse{Lines: normalized, Segments: segments}
}
