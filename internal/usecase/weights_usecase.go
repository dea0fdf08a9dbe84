package usecase

import (
	"context"

	"talent-match/internal/domain/matching"
	"talent-match/internal/repository"

	"go.uber.org/zap"
)

const metaKeyWeights = "match_weights"

// WeightsUpdate is a partial update. Nil groups are left untouched; a group
// must be supplied whole so its normalization stays well defined.
type WeightsUpdate struct {
	Skill    *float64 `json:"skill_weight"`
	Title    *float64 `json:"title_weight"`
	Semantic *float64 `json:"semantic_weight"`
	Vector   *float64 `json:"vector_weight"`
	Distance *float64 `json:"distance_weight"`
	Must     *float64 `json:"must_weight"`
	Needed   *float64 `json:"needed_weight"`
}

type WeightsUsecase interface {
	Get() matching.Weights
	Update(ctx context.Context, upd WeightsUpdate) (matching.Weights, error)
	Restore(ctx context.Context) error
}

type Weights struct {
	engine *matching.Engine
	meta   repository.MetaRepository
	logger *zap.Logger
}

func NewWeightsUsecase(engine *matching.Engine, meta repository.MetaRepository, logger *zap.Logger) *Weights {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Weights{engine: engine, meta: meta, logger: logger}
}

func (u *Weights) Get() matching.Weights {
	return u.engine.Weights()
}

// Update applies the requested weight changes, then persists the full tuned
// set so restarts keep it. Validation happens in the engine setters; nothing
// is persisted when any of them rejects.
func (u *Weights) Update(ctx context.Context, upd WeightsUpdate) (matching.Weights, error) {
	cur := u.engine.Weights()

	if upd.Skill != nil || upd.Title != nil || upd.Semantic != nil || upd.Vector != nil {
		skill, title, semantic, vector := cur.Skill, cur.Title, cur.Semantic, cur.Vector
		if upd.Skill != nil {
			skill = *upd.Skill
		}
		if upd.Title != nil {
			title = *upd.Title
		}
		if upd.Semantic != nil {
			semantic = *upd.Semantic
		}
		if upd.Vector != nil {
			vector = *upd.Vector
		}
		if err := u.engine.SetComponentWeights(skill, title, semantic, vector); err != nil {
			return matching.Weights{}, ErrInvalidInput
		}
	}
	if upd.Distance != nil {
		if err := u.engine.SetDistanceWeight(*upd.Distance); err != nil {
			return matching.Weights{}, ErrInvalidInput
		}
	}
	if upd.Must != nil || upd.Needed != nil {
		must, needed := cur.Must, cur.Needed
		if upd.Must != nil {
			must = *upd.Must
		}
		if upd.Needed != nil {
			needed = *upd.Needed
		}
		if err := u.engine.SetTierWeights(must, needed); err != nil {
			return matching.Weights{}, ErrInvalidInput
		}
	}

	tuned := u.engine.Weights()
	if u.meta != nil {
		if err := u.meta.Set(ctx, metaKeyWeights, tuned); err != nil {
			u.logger.Warn("persisting tuned weights failed", zap.Error(err))
		}
	}
	return tuned, nil
}

// Restore loads previously persisted weights into the engine at startup.
// Missing or invalid stored weights leave the configured defaults in place.
func (u *Weights) Restore(ctx context.Context) error {
	if u.meta == nil {
		return nil
	}
	var stored matching.Weights
	ok, err := u.meta.Get(ctx, metaKeyWeights, &stored)
	if err != nil || !ok {
		return err
	}
	if err := u.engine.SetComponentWeights(stored.Skill, stored.Title, stored.Semantic, stored.Vector); err != nil {
		u.logger.Warn("stored component weights invalid, keeping defaults", zap.Error(err))
		return nil
	}
	if err := u.engine.SetDistanceWeight(stored.Distance); err != nil {
		return nil
	}
	if err := u.engine.SetTierWeights(stored.Must, stored.Needed); err != nil {
		return nil
	}
	return nil
}
