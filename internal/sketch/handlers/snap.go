package handlers

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"floorplan-sketch/internal/sketch/geometry"
	"floorplan-sketch/internal/sketch/snap"
)

// ============================================================
// Snap
// ============================================================

type snapRequest struct {
	Point     geometry.Point     `json:"point"`
	Polygon   geometry.Polygon   `json:"polygon"`
	Segments  []geometry.Segment `json:"segments"`
	Exclude   *int               `json:"exclude,omitempty"` // индекс в segments
	Threshold float64            `json:"threshold,omitempty"`
}

type snapResponse struct {
	Point   geometry.Point `json:"point"`
	Snapped bool           `json:"snapped"`
}

// Snap выполняет разовый снаппинг без сессии.
func (h *Handler) Snap(c fiber.Ctx) error {
	var req snapRequest
	if err := decodeBody(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = h.opts.Threshold
	}
	resolver, err := snap.NewResolver(threshold)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	free := make([]*geometry.Segment, len(req.Segments))
	for i := range req.Segments {
		free[i] = &req.Segments[i]
	}

	var exclude *geometry.Segment
	if req.Exclude != nil {
		if *req.Exclude < 0 || *req.Exclude >= len(free) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "exclude index out of range"})
		}
		exclude = free[*req.Exclude]
	}

	point, ok := resolver.Resolve(req.Point, req.Polygon, free, exclude)
	if !ok {
		return c.JSON(snapResponse{Point: req.Point})
	}

	log.Printf("[SNAP] %v -> %v", req.Point, point)
	return c.JSON(snapResponse{Point: point, Snapped: true})
}
