package handlers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"

	"floorplan-sketch/internal/sketch/parser"
	"floorplan-sketch/internal/sketch/repository"
	"floorplan-sketch/internal/sketch/session"
)

// ============================================================
// Saved Sketches
// ============================================================

type createSketchRequest struct {
	Name  string        `json:"name"`
	Scene session.Scene `json:"scene"`
}

func (h *Handler) ListSketches(c fiber.Ctx) error {
	sketches, err := h.repo.List(c.Context())
	if err != nil {
		log.Printf("[SKETCH] list error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list sketches"})
	}
	return c.JSON(sketches)
}

func (h *Handler) CreateSketch(c fiber.Ctx) error {
	var req createSketchRequest
	if err := decodeBody(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.saveNew(c, req.Name, req.Scene)
}

// ImportSketch восстанавливает сцену из загруженного SVG.
func (h *Handler) ImportSketch(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".svg" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "only svg allowed"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	scene, err := parser.ParseSVG(file)
	if err != nil {
		log.Printf("[SKETCH] import error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	name := c.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(fileHeader.Filename), filepath.Ext(fileHeader.Filename))
	}
	return h.saveNew(c, name, scene)
}

func (h *Handler) GetSketch(c fiber.Ctx) error {
	sketch, err := h.repo.Get(c.Context(), c.Params("id"))
	if err != nil {
		return sketchError(c, err)
	}
	return c.JSON(sketch)
}

func (h *Handler) SketchSVG(c fiber.Ctx) error {
	sketch, err := h.repo.Get(c.Context(), c.Params("id"))
	if err != nil {
		return sketchError(c, err)
	}
	return h.sendSVG(c, sketch.Scene)
}

func (h *Handler) DeleteSketch(c fiber.Ctx) error {
	if err := h.repo.Delete(c.Context(), c.Params("id")); err != nil {
		return sketchError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) saveNew(c fiber.Ctx, name string, scene session.Scene) error {
	if name == "" {
		name = "untitled"
	}
	sketch := &repository.Sketch{Name: name, Scene: scene}
	if err := h.repo.Save(c.Context(), sketch); err != nil {
		log.Printf("[SKETCH] save error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save sketch"})
	}
	log.Printf("[SKETCH] saved %s (%q)", sketch.ID, sketch.Name)
	return c.Status(http.StatusCreated).JSON(sketch)
}

func sketchError(c fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("[SKETCH] error: %v", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
}
