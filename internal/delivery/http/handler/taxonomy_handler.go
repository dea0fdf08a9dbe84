package handler

import (
	"talent-match/internal/delivery/http/dto"
	"talent-match/internal/delivery/http/middleware"
	"talent-match/internal/pkg/response"
	"talent-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type TaxonomyHandler struct {
	uc usecase.TaxonomyUsecase
}

func NewTaxonomyHandler(uc usecase.TaxonomyUsecase) *TaxonomyHandler {
	return &TaxonomyHandler{uc: uc}
}

func (h *TaxonomyHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/taxonomy/synonyms", h.AddSynonym)
}

func (h *TaxonomyHandler) AddSynonym(c fiber.Ctx) error {
	var req dto.AddSynonymRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	added, err := h.uc.AddSynonym(c.Context(), req.Canon, req.Alias)
	if err != nil {
		return mapRankError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AddSynonymResponse{
		Canon: req.Canon,
		Alias: req.Alias,
		Added: added,
	})
}
