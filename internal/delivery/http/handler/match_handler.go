package handler

import (
	"errors"
	"strconv"
	"time"

	"talent-match/internal/delivery/http/dto"
	"talent-match/internal/delivery/http/middleware"
	"talent-match/internal/domain/matching"
	"talent-match/internal/pkg/response"
	"talent-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MatchHandler struct {
	rank    usecase.RankUsecase
	weights usecase.WeightsUsecase
}

func NewMatchHandler(rank usecase.RankUsecase, weights usecase.WeightsUsecase) *MatchHandler {
	return &MatchHandler{rank: rank, weights: weights}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/seekers/:seeker_id/matches", h.GetSeekerMatches)
	r.Get("/postings/:posting_id/candidates", h.GetPostingCandidates)
	r.Get("/explain/:direction/:subject_id/:counterpart_id", h.Explain)
}

// GetSeekerMatches ranks postings for one seeker.
func (h *MatchHandler) GetSeekerMatches(c fiber.Ctx) error {
	return h.serveRank(c, matching.DirectionSeekerToPosting, c.Params("seeker_id"))
}

// GetPostingCandidates ranks seekers for one posting.
func (h *MatchHandler) GetPostingCandidates(c fiber.Ctx) error {
	return h.serveRank(c, matching.DirectionPostingToSeeker, c.Params("posting_id"))
}

func (h *MatchHandler) serveRank(c fiber.Ctx, dir matching.Direction, subjectID string) error {
	q := usecase.RankQuery{
		Direction: dir,
		SubjectID: subjectID,
		TenantID:  middleware.TenantID(c),
		Strategy:  usecase.Strategy(c.Query("cache", string(usecase.StrategyHybrid))),
	}

	var err error
	if q.TopK, err = queryInt(c, "top_k", 0); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "invalid top_k", nil, err)
	}
	maxAgeSec, err := queryInt(c, "max_age", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "invalid max_age", nil, err)
	}
	q.MaxAge = time.Duration(maxAgeSec) * time.Second
	q.LocationFilter = c.Query("location_filter") == "true"

	res, err := h.rank.GetOrCompute(c.Context(), q)
	if err != nil {
		return mapRankError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RankResponse{
		Results:       res.Results,
		FromCache:     res.FromCache,
		ComputedCount: res.ComputedCount,
		UpdatedAt:     res.UpdatedAt,
	})
}

// Explain returns the raw component breakdown for a single pair, useful when
// tuning weights.
func (h *MatchHandler) Explain(c fiber.Ctx) error {
	dir := matching.Direction(c.Params("direction"))
	subjectID := c.Params("subject_id")
	counterpartID := c.Params("counterpart_id")

	breakdown, err := h.rank.Explain(c.Context(), dir, subjectID, counterpartID)
	if err != nil {
		return mapRankError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ExplainResponse{
		SubjectID:     subjectID,
		CounterpartID: counterpartID,
		Direction:     string(dir),
		Breakdown:     breakdown,
		Weights:       h.weights.Get(),
	})
}

func queryInt(c fiber.Ctx, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func mapRankError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	case errors.Is(err, usecase.ErrSubjectNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, nil, err)
	case errors.Is(err, usecase.ErrBackendUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
