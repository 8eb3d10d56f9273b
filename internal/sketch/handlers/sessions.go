package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"floorplan-sketch/internal/footprint"
	"floorplan-sketch/internal/sketch/export"
	"floorplan-sketch/internal/sketch/repository"
	"floorplan-sketch/internal/sketch/service"
	"floorplan-sketch/internal/sketch/session"
)

// ============================================================
// Drawing Sessions
// ============================================================

type openSessionRequest struct {
	Mode      string  `json:"mode"`
	Threshold float64 `json:"threshold,omitempty"`
}

type sessionPayload struct {
	ID       string            `json:"id"`
	State    session.State     `json:"state"`
	Scene    session.Scene     `json:"scene"`
	Feedback *session.Feedback `json:"feedback,omitempty"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type footprintRequest struct {
	Coordinates []footprint.LatLng `json:"coordinates"`
	Simplify    float64            `json:"simplify,omitempty"`
}

type saveRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// OpenSession создаёт сессию рисования. Тело необязательно.
func (h *Handler) OpenSession(c fiber.Ctx) error {
	var req openSessionRequest
	if len(c.Body()) > 0 {
		if err := decodeBody(c, &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = h.opts.Threshold
	}

	id, err := h.sessions.Open(mode, threshold)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("[SESSION] opened %s (mode=%s, threshold=%g)", id, mode, threshold)

	st, sc, _ := h.sessions.Get(id)
	return c.Status(http.StatusCreated).JSON(sessionPayload{ID: id, State: st, Scene: sc})
}

func (h *Handler) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	st, sc, err := h.sessions.Get(id)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(sessionPayload{ID: id, State: st, Scene: sc})
}

// SessionEvent прогоняет событие указателя через автомат рисования.
func (h *Handler) SessionEvent(c fiber.Ctx) error {
	var ev session.Event
	if err := decodeBody(c, &ev); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	switch ev.Kind {
	case session.PointerDown, session.PointerMove, session.PointerUp:
	default:
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unknown event kind"})
	}

	id := c.Params("id")
	var fb session.Feedback
	st, sc, err := h.sessions.Apply(id, func(st session.State, sc session.Scene) (session.State, session.Scene) {
		st, sc, fb = session.Step(st, sc, ev)
		return st, sc
	})
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(sessionPayload{ID: id, State: st, Scene: sc, Feedback: &fb})
}

func (h *Handler) SetMode(c fiber.Ctx) error {
	var req modeRequest
	if err := decodeBody(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	id := c.Params("id")
	st, sc, err := h.sessions.Apply(id, func(st session.State, sc session.Scene) (session.State, session.Scene) {
		return session.SetMode(st, sc, mode)
	})
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(sessionPayload{ID: id, State: st, Scene: sc})
}

// SetFootprint проецирует координаты здания на холст и начинает сцену заново:
// прежние стены и комнаты удаляются, незавершённый штрих сбрасывается.
func (h *Handler) SetFootprint(c fiber.Ctx) error {
	var req footprintRequest
	if err := decodeBody(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	polygon, err := h.project(req.Coordinates, req.Simplify)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	id := c.Params("id")
	st, sc, err := h.sessions.Apply(id, func(st session.State, _ session.Scene) (session.State, session.Scene) {
		st, sc := session.Clear(st)
		sc.Footprint = polygon
		return st, sc
	})
	if err != nil {
		return sessionError(c, err)
	}
	log.Printf("[SESSION] %s footprint set (%d vertices)", id, len(polygon))
	return c.JSON(sessionPayload{ID: id, State: st, Scene: sc})
}

func (h *Handler) ClearScene(c fiber.Ctx) error {
	id := c.Params("id")
	st, sc, err := h.sessions.Apply(id, func(st session.State, _ session.Scene) (session.State, session.Scene) {
		return session.Clear(st)
	})
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(sessionPayload{ID: id, State: st, Scene: sc})
}

func (h *Handler) SessionSVG(c fiber.Ctx) error {
	_, sc, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return h.sendSVG(c, sc)
}

// SaveSession сохраняет сцену сессии как эскиз. Если передан id, эскиз перезаписывается.
func (h *Handler) SaveSession(c fiber.Ctx) error {
	var req saveRequest
	if len(c.Body()) > 0 {
		if err := decodeBody(c, &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	_, sc, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}

	sketch := &repository.Sketch{ID: req.ID, Name: req.Name, Scene: sc}
	if req.ID != "" {
		existing, err := h.repo.Get(c.Context(), req.ID)
		if err != nil {
			return sketchError(c, err)
		}
		sketch.CreatedAt = existing.CreatedAt
		if sketch.Name == "" {
			sketch.Name = existing.Name
		}
	}

	if err := h.repo.Save(c.Context(), sketch); err != nil {
		log.Printf("[SESSION] save error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save sketch"})
	}
	return c.Status(http.StatusCreated).JSON(sketch)
}

func (h *Handler) CloseSession(c fiber.Ctx) error {
	id := c.Params("id")
	if !h.sessions.Close(id) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": service.ErrSessionNotFound.Error()})
	}
	log.Printf("[SESSION] closed %s", id)
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) sendSVG(c fiber.Ctx, sc session.Scene) error {
	width, height := h.canvasSize()
	data, err := export.String(sc, width, height)
	if err != nil {
		log.Printf("[EXPORT] error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render svg"})
	}
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(data)
}

func sessionError(c fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrSessionNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
