package handler

import (
	"time"

	"talent-match/internal/delivery/http/dto"
	"talent-match/internal/delivery/http/middleware"
	"talent-match/internal/domain/matching"
	"talent-match/internal/pkg/response"
	"talent-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type BackfillHandler struct {
	uc usecase.BackfillUsecase
}

func NewBackfillHandler(uc usecase.BackfillUsecase) *BackfillHandler {
	return &BackfillHandler{uc: uc}
}

func (h *BackfillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/backfill", h.RunBackfill)
}

// RunBackfill executes a synchronous backfill and returns its summary.
// Progress is also broadcast over the websocket hub while it runs.
func (h *BackfillHandler) RunBackfill(c fiber.Ctx) error {
	var req dto.BackfillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	summary, err := h.uc.Backfill(c.Context(), usecase.BackfillParams{
		Direction:      matching.Direction(req.Direction),
		TenantID:       middleware.TenantID(c),
		TopK:           req.TopK,
		LocationFilter: req.LocationFilter,
		Limit:          req.Limit,
		Force:          req.Force,
		MaxAge:         time.Duration(req.MaxAgeSeconds) * time.Second,
	})
	if err != nil {
		return mapRankError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.BackfillResponse{
		RunID:     summary.RunID,
		Direction: summary.Direction,
		Processed: summary.Processed,
		Computed:  summary.Computed,
		Skipped:   summary.Skipped,
		Errors:    summary.Errors,
	})
}
