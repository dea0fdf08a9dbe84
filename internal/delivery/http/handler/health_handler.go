package handler

import (
	"context"
	"time"

	"talent-match/internal/docstore"
	"talent-match/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	store docstore.Store
}

func NewHealthHandler(store docstore.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/healthz", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	status := "ok"
	code := fiber.StatusOK

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if _, err := h.store.Count(ctx, docstore.CollectionMeta, docstore.Filter{}); err != nil {
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
	}

	return response.Success(c, code, status, fiber.Map{"status": status})
}
