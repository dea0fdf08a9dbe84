package handler

import (
	"talent-match/internal/delivery/http/dto"
	"talent-match/internal/delivery/http/middleware"
	"talent-match/internal/pkg/response"
	"talent-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type WeightsHandler struct {
	uc usecase.WeightsUsecase
}

func NewWeightsHandler(uc usecase.WeightsUsecase) *WeightsHandler {
	return &WeightsHandler{uc: uc}
}

func (h *WeightsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/weights", h.GetWeights)
	r.Put("/weights", h.UpdateWeights)
}

func (h *WeightsHandler) GetWeights(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.WeightsResponse{Weights: h.uc.Get()})
}

func (h *WeightsHandler) UpdateWeights(c fiber.Ctx) error {
	var req dto.UpdateWeightsRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	tuned, err := h.uc.Update(c.Context(), usecase.WeightsUpdate{
		Skill:    req.Skill,
		Title:    req.Title,
		Semantic: req.Semantic,
		Vector:   req.Vector,
		Distance: req.Distance,
		Must:     req.Must,
		Needed:   req.Needed,
	})
	if err != nil {
		return mapRankError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.WeightsResponse{Weights: tuned})
}
