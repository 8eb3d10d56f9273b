package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"floorplan-sketch/internal/footprint"
	"floorplan-sketch/internal/sketch/geometry"
)

// ============================================================
// Building Footprint
// ============================================================

type footprintResponse struct {
	Building *footprint.Building `json:"building,omitempty"`
	Address  string              `json:"address,omitempty"`
	Polygon  geometry.Polygon    `json:"polygon"`
}

// FetchFootprint ищет здание в Overpass и проецирует его на холст.
func (h *Handler) FetchFootprint(c fiber.Ctx) error {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "lat and lng required"})
	}
	simplifyTol, err := queryFloat(c, "simplify")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid simplify"})
	}

	log.Printf("[FOOTPRINT] fetch %.6f,%.6f", lat, lng)
	building, err := h.buildings.FetchBuilding(c.Context(), lat, lng)
	if err != nil {
		if errors.Is(err, footprint.ErrNoBuilding) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("[FOOTPRINT] overpass error: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach overpass"})
	}

	return h.respondBuilding(c, building, simplifyTol)
}

func (h *Handler) ProjectFootprint(c fiber.Ctx) error {
	var req footprintRequest
	if err := decodeBody(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	polygon, err := h.project(req.Coordinates, req.Simplify)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(footprintResponse{Polygon: polygon})
}

// UploadGeoJSON принимает FeatureCollection (поле file, опционально index).
func (h *Handler) UploadGeoJSON(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}

	index := 0
	if raw := c.FormValue("index"); raw != "" {
		if index, err = strconv.Atoi(raw); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid index"})
		}
	}
	simplifyTol := 0.0
	if raw := c.FormValue("simplify"); raw != "" {
		if simplifyTol, err = strconv.ParseFloat(raw, 64); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid simplify"})
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	building, err := footprint.LoadGeoJSON(file, index)
	if err != nil {
		log.Printf("[FOOTPRINT] geojson error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return h.respondBuilding(c, building, simplifyTol)
}

func (h *Handler) respondBuilding(c fiber.Ctx, building *footprint.Building, simplifyTol float64) error {
	polygon, err := h.project(building.Coordinates, simplifyTol)
	if err != nil {
		log.Printf("[FOOTPRINT] projection error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(footprintResponse{
		Building: building,
		Address:  building.Info.Address(),
		Polygon:  polygon,
	})
}

// project: географические координаты → UTM → холст.
func (h *Handler) project(coords []footprint.LatLng, simplifyTol float64) (geometry.Polygon, error) {
	projector, err := footprint.UTMProjectorFor(coords)
	if err != nil {
		return nil, err
	}
	return footprint.ToCanvas(coords, projector, h.opts.Canvas, footprint.Options{Simplify: simplifyTol})
}

func queryFloat(c fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
