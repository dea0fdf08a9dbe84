package app

import (
	"context"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/docstore/postgres"
	"talent-match/internal/domain/geo"
	"talent-match/internal/domain/matching"
	"talent-match/internal/domain/taxonomy"
	"talent-match/internal/infrastructure/cache"
	"talent-match/internal/repository"
	"talent-match/internal/usecase"
	"talent-match/internal/ws"

	"go.uber.org/zap"
)

// Container owns every long-lived dependency of the service.
type Container struct {
	Config config.Config
	Logger *zap.Logger

	Store    *postgres.Store
	Hot      *cache.Redis
	Taxonomy *taxonomy.Taxonomy
	Resolver *geo.Resolver
	Engine   *matching.Engine
	Hub      *ws.Hub

	Profiles   *repository.DocProfileRepository
	MatchCache *repository.DocMatchCacheRepository
	Vocab      *repository.DocVocabRepository
	Meta       *repository.DocMetaRepository

	RankUC     *usecase.Rank
	BackfillUC *usecase.Backfill
	WeightsUC  *usecase.Weights
	TaxonomyUC *usecase.Taxonomy
}

func NewContainer(logger *zap.Logger, cfg config.Config) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, Store: store}

	c.Profiles = repository.NewDocProfileRepository(store)
	c.MatchCache = repository.NewDocMatchCacheRepository(store)
	c.Vocab = repository.NewDocVocabRepository(store)
	c.Meta = repository.NewDocMetaRepository(store)

	if err := c.seedVocab(ctx); err != nil {
		store.Close()
		return nil, err
	}

	c.Taxonomy, err = taxonomy.Load(ctx, c.Vocab)
	if err != nil {
		store.Close()
		return nil, err
	}

	c.Resolver = geo.NewResolver()
	if path := cfg.Match.CityCoordinateFile; path != "" {
		n, err := c.Resolver.LoadFile(path)
		if err != nil {
			logger.Warn("city coordinate file unreadable, distance scoring degraded",
				zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("city coordinates loaded", zap.Int("cities", n))
		}
	}

	c.Engine = matching.NewEngine(c.Taxonomy, c.Resolver,
		matching.WeightsFromConfig(cfg.Match), cfg.Match.AllowPlaceholder)

	c.Hot = cache.NewRedis(cfg.Redis, logger)

	c.Hub = ws.NewHub(logger)
	go c.Hub.Run()
	ws.SetDefaultHub(c.Hub)

	c.RankUC = usecase.NewRankUsecase(c.Profiles, c.MatchCache, c.Hot, c.Engine, cfg.Match, logger)
	c.BackfillUC = usecase.NewBackfillUsecase(c.Profiles, c.MatchCache, c.Hot, c.Engine, cfg.Match, logger)
	c.WeightsUC = usecase.NewWeightsUsecase(c.Engine, c.Meta, logger)
	c.TaxonomyUC = usecase.NewTaxonomyUsecase(c.Taxonomy)

	if err := c.WeightsUC.Restore(ctx); err != nil {
		logger.Warn("restoring tuned weights failed", zap.Error(err))
	}

	return c, nil
}

func (c *Container) seedVocab(ctx context.Context) error {
	seeds := []struct {
		vocab string
		path  string
	}{
		{taxonomy.VocabSkills, c.Config.Match.SkillVocabSeedFile},
		{taxonomy.VocabTitles, c.Config.Match.TitleVocabSeedFile},
	}
	for _, s := range seeds {
		if s.path == "" {
			continue
		}
		n, err := c.Vocab.SeedFromFile(ctx, s.vocab, s.path)
		if err != nil {
			return err
		}
		if n > 0 {
			c.Logger.Info("vocabulary seeded",
				zap.String("vocab", s.vocab), zap.Int("entries", n))
		}
	}
	return nil
}

func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Hot != nil {
		_ = c.Hot.Close()
	}
	if c.Store != nil {
		c.Store.Close()
	}
}
