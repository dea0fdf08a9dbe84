package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/docstore"
	"talent-match/internal/domain/matching"
	"talent-match/internal/infrastructure/cache"
	"talent-match/internal/repository"

	"go.uber.org/zap"
)

// Strategy selects how cached rankings are reused per request.
type Strategy string

const (
	// StrategyOff always recomputes. The result is still written back so
	// the cache converges even when callers bypass it.
	StrategyOff Strategy = "off"
	// StrategyOn serves any present entry of the current payload schema,
	// regardless of age or length.
	StrategyOn Strategy = "on"
	// StrategyHybrid serves an entry only when it is fresh, current-schema
	// and holds at least topK results.
	StrategyHybrid Strategy = "hybrid"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyOff, StrategyOn, StrategyHybrid:
		return true
	}
	return false
}

// RankQuery describes one ranking request.
type RankQuery struct {
	Direction      matching.Direction
	SubjectID      string
	TenantID       string
	TopK           int
	LocationFilter bool
	Strategy       Strategy
	// MaxAge overrides the configured TTL for cache freshness checks.
	// Zero means use the configured TTL; negative disables the age check.
	MaxAge time.Duration
}

// RankResponse carries the ranked results plus cache provenance.
type RankResponse struct {
	Results       []matching.MatchResult
	FromCache     bool
	// ComputedCount is the number of results the producing computation
	// kept, which can exceed len(Results) on a truncated cache hit.
	ComputedCount int
	UpdatedAt     int64
}

type RankUsecase interface {
	GetOrCompute(ctx context.Context, q RankQuery) (RankResponse, error)
	Explain(ctx context.Context, dir matching.Direction, subjectID, counterpartID string) (matching.Breakdown, error)
}

type Rank struct {
	profiles repository.ProfileRepository
	caches   repository.MatchCacheRepository
	hot      *cache.Redis
	engine   *matching.Engine
	cfg      config.MatchConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewRankUsecase(profiles repository.ProfileRepository, caches repository.MatchCacheRepository, hot *cache.Redis, engine *matching.Engine, cfg config.MatchConfig, logger *zap.Logger) *Rank {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rank{
		profiles: profiles,
		caches:   caches,
		hot:      hot,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *Rank) GetOrCompute(ctx context.Context, q RankQuery) (RankResponse, error) {
	if !q.Direction.Valid() || q.SubjectID == "" {
		return RankResponse{}, ErrInvalidInput
	}
	if q.Strategy == "" {
		q.Strategy = StrategyHybrid
	}
	if !q.Strategy.Valid() {
		return RankResponse{}, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, q.Strategy)
	}
	if q.TopK <= 0 {
		q.TopK = u.cfg.DefaultTopK
	}

	key := repository.CacheKey{
		Direction:      q.Direction,
		SubjectID:      q.SubjectID,
		TenantID:       q.TenantID,
		LocationFilter: q.LocationFilter,
	}

	if q.Strategy != StrategyOff {
		if entry := u.lookup(ctx, key, q); entry != nil {
			// Cached entries may hold more results than this caller asked
			// for, for example after a backfill with a wider top-k.
			results := entry.Results
			if len(results) > q.TopK {
				results = results[:q.TopK]
			}
			return RankResponse{
				Results:       results,
				FromCache:     true,
				ComputedCount: entry.ComputedCount,
				UpdatedAt:     entry.UpdatedAt,
			}, nil
		}
		if err := ctx.Err(); err != nil {
			return RankResponse{}, err
		}
	}

	return u.compute(ctx, key, q)
}

// maxAge resolves the effective freshness window for the query. Strategy
// "on" has no window unless the caller supplied one explicitly.
func (u *Rank) maxAge(q RankQuery) time.Duration {
	if q.MaxAge != 0 {
		return q.MaxAge
	}
	if q.Strategy == StrategyOn {
		return -1
	}
	return time.Duration(u.cfg.CacheTTLSeconds) * time.Second
}

// lookup returns a servable cache entry or nil. Store outages fall through
// to recomputation rather than failing the request.
func (u *Rank) lookup(ctx context.Context, key repository.CacheKey, q RankQuery) *repository.CacheEntry {
	maxAge := u.maxAge(q)

	var hotEntry repository.CacheEntry
	if ok, _ := u.hot.GetJSON(ctx, key.DocID(), &hotEntry); ok {
		if u.servable(&hotEntry, q, maxAge) {
			return &hotEntry
		}
	}

	entry, err := u.caches.Get(ctx, key, maxAge)
	if err != nil {
		u.logger.Warn("match cache read failed, recomputing",
			zap.String("key", key.DocID()), zap.Error(err))
		return nil
	}
	if !u.servable(entry, q, maxAge) {
		return nil
	}
	u.hot.SetJSON(ctx, key.DocID(), entry)
	return entry
}

func (u *Rank) servable(entry *repository.CacheEntry, q RankQuery, maxAge time.Duration) bool {
	if entry == nil || entry.NeedsUpgrade() {
		return false
	}
	if maxAge > 0 && entry.Age(u.now()) > maxAge {
		return false
	}
	if q.Strategy == StrategyHybrid && len(entry.Results) < q.TopK {
		return false
	}
	return true
}

func (u *Rank) compute(ctx context.Context, key repository.CacheKey, q RankQuery) (RankResponse, error) {
	subject, err := u.profiles.Get(ctx, repository.SubjectCollection(q.Direction), q.SubjectID)
	if err != nil {
		return RankResponse{}, wrapStoreErr(err)
	}
	if subject == nil {
		return RankResponse{}, ErrSubjectNotFound
	}

	population, err := u.profiles.ListPopulation(ctx, repository.CounterpartCollection(q.Direction), q.TenantID, u.cfg.MaxCounterparts)
	if err != nil {
		return RankResponse{}, wrapStoreErr(err)
	}

	results := u.engine.Rank(*subject, population, q.Direction, q.TopK, q.LocationFilter)
	computed := len(results)

	// Cache writes are best effort; a failed write never fails the request.
	if err := u.caches.Set(ctx, key, results, computed); err != nil {
		u.logger.Warn("match cache write failed",
			zap.String("key", key.DocID()), zap.Error(err))
	} else {
		u.hot.SetJSON(ctx, key.DocID(), repository.CacheEntry{
			Direction:      key.Direction,
			SubjectID:      key.SubjectID,
			LocationFilter: key.LocationFilter,
			Results:        results,
			ComputedCount:  computed,
			UpdatedAt:      u.now().Unix(),
			SchemaVersion:  repository.CacheSchemaVersion,
		})
	}

	return RankResponse{
		Results:       results,
		ComputedCount: computed,
		UpdatedAt:     u.now().Unix(),
	}, nil
}

// Explain scores a single pair and returns the raw component breakdown.
func (u *Rank) Explain(ctx context.Context, dir matching.Direction, subjectID, counterpartID string) (matching.Breakdown, error) {
	if !dir.Valid() || subjectID == "" || counterpartID == "" {
		return matching.Breakdown{}, ErrInvalidInput
	}
	subject, err := u.profiles.Get(ctx, repository.SubjectCollection(dir), subjectID)
	if err != nil {
		return matching.Breakdown{}, wrapStoreErr(err)
	}
	if subject == nil {
		return matching.Breakdown{}, ErrSubjectNotFound
	}
	counterpart, err := u.profiles.Get(ctx, repository.CounterpartCollection(dir), counterpartID)
	if err != nil {
		return matching.Breakdown{}, wrapStoreErr(err)
	}
	if counterpart == nil {
		return matching.Breakdown{}, fmt.Errorf("%w: counterpart %s", ErrSubjectNotFound, counterpartID)
	}
	return u.engine.Explain(*subject, *counterpart, dir), nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, docstore.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
