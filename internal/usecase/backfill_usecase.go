package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/domain/matching"
	"talent-match/internal/domain/profile"
	"talent-match/internal/infrastructure/cache"
	"talent-match/internal/repository"
	"talent-match/internal/worker"
	"talent-match/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BackfillParams controls one backfill run.
type BackfillParams struct {
	Direction matching.Direction
	TenantID  string
	// TopK is how many results to keep per member. <=0 uses the
	// configured default.
	TopK int
	// LocationFilter selects the composite cache key variant that
	// excludes out-of-range counterparts, same as the rank query flag.
	LocationFilter bool
	// Limit caps the number of members visited, not computed. <=0 means
	// the whole population.
	Limit int
	// Force recomputes even when a fresh cache entry exists.
	Force bool
	// MaxAge overrides the skip rule's freshness window. 0 uses the
	// configured cache TTL, negative treats any existing entry as fresh.
	MaxAge time.Duration
}

// BackfillSummary reports what one run did. Processed counts every visited
// member, so Processed = Computed + Skipped + Errors.
type BackfillSummary struct {
	RunID     string `json:"run_id"`
	Direction string `json:"direction"`
	Processed int    `json:"processed"`
	Computed  int    `json:"computed"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
}

type BackfillUsecase interface {
	Backfill(ctx context.Context, params BackfillParams) (BackfillSummary, error)
}

type Backfill struct {
	profiles repository.ProfileRepository
	caches   repository.MatchCacheRepository
	hot      *cache.Redis
	engine   *matching.Engine
	cfg      config.MatchConfig
	logger   *zap.Logger
}

func NewBackfillUsecase(profiles repository.ProfileRepository, caches repository.MatchCacheRepository, hot *cache.Redis, engine *matching.Engine, cfg config.MatchConfig, logger *zap.Logger) *Backfill {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backfill{
		profiles: profiles,
		caches:   caches,
		hot:      hot,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
	}
}

// Backfill precomputes rankings for a population, most recently updated
// members first. Member failures are counted and logged, never fatal; only
// listing failures and context cancellation abort the run.
func (u *Backfill) Backfill(ctx context.Context, params BackfillParams) (BackfillSummary, error) {
	if !params.Direction.Valid() {
		return BackfillSummary{}, ErrInvalidInput
	}
	if params.TopK <= 0 {
		params.TopK = u.cfg.DefaultTopK
	}
	if params.MaxAge == 0 {
		params.MaxAge = time.Duration(u.cfg.CacheTTLSeconds) * time.Second
	}

	runID := uuid.NewString()
	summary := BackfillSummary{RunID: runID, Direction: string(params.Direction)}

	members, err := u.profiles.ListForBackfill(ctx, repository.SubjectCollection(params.Direction), params.TenantID, params.Limit)
	if err != nil {
		return summary, wrapStoreErr(err)
	}

	population, err := u.profiles.ListPopulation(ctx, repository.CounterpartCollection(params.Direction), params.TenantID, u.cfg.MaxCounterparts)
	if err != nil {
		return summary, wrapStoreErr(err)
	}

	u.logger.Info("backfill started",
		zap.String("run_id", runID),
		zap.String("direction", string(params.Direction)),
		zap.Int("members", len(members)),
		zap.Int("population", len(population)),
		zap.Int("top_k", params.TopK),
		zap.Bool("location_filter", params.LocationFilter),
		zap.Bool("force", params.Force))

	var computed, skipped, failed atomic.Int64

	pool := worker.NewPool(u.cfg.BackfillWorkers, len(members))
	pool.SetRateLimit(u.cfg.BackfillRPS)
	results := pool.Run(ctx)

	submitted := 0
	for _, member := range members {
		if err := ctx.Err(); err != nil {
			break
		}
		m := member
		pool.Submit(func(ctx context.Context) error {
			if err := u.backfillMember(ctx, params, m, population, &computed, &skipped); err != nil {
				failed.Add(1)
				u.logger.Warn("backfill member failed",
					zap.String("run_id", runID),
					zap.String("member_id", m.ID),
					zap.Error(err))
			}
			return nil
		})
		submitted++
	}
	pool.Close()

	drained := 0
	for range results {
		drained++
		if drained%100 == 0 {
			ws.NotifyBackfillProgress(ws.BackfillProgressEvent{
				RunID:     runID,
				Direction: string(params.Direction),
				Processed: drained,
				Computed:  int(computed.Load()),
				Skipped:   int(skipped.Load()),
				Errors:    int(failed.Load()),
			})
		}
	}

	summary.Processed = drained
	summary.Computed = int(computed.Load())
	summary.Skipped = int(skipped.Load())
	summary.Errors = int(failed.Load())

	ws.NotifyBackfillProgress(ws.BackfillProgressEvent{
		RunID:     runID,
		Direction: summary.Direction,
		Processed: summary.Processed,
		Computed:  summary.Computed,
		Skipped:   summary.Skipped,
		Errors:    summary.Errors,
		Done:      true,
	})
	u.logger.Info("backfill finished",
		zap.String("run_id", runID),
		zap.Int("processed", summary.Processed),
		zap.Int("computed", summary.Computed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors))

	// Cancellation mid-run still returns the partial summary.
	if submitted < len(members) {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (u *Backfill) backfillMember(ctx context.Context, params BackfillParams, member profile.Profile, population []profile.Profile, computed, skipped *atomic.Int64) error {
	key := repository.CacheKey{
		Direction:      params.Direction,
		SubjectID:      member.ID,
		TenantID:       params.TenantID,
		LocationFilter: params.LocationFilter,
	}

	if !params.Force {
		entry, err := u.caches.Get(ctx, key, params.MaxAge)
		if err != nil {
			return err
		}
		if entry != nil && !entry.NeedsUpgrade() {
			skipped.Add(1)
			return nil
		}
	}

	results := u.engine.Rank(member, population, params.Direction, params.TopK, params.LocationFilter)
	if err := u.caches.Set(ctx, key, results, len(results)); err != nil {
		return err
	}
	u.hot.Delete(ctx, key.DocID())
	computed.Add(1)
	return nil
}
