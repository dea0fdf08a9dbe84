package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"talent-match/internal/domain/matching"
	"talent-match/internal/domain/profile"
	"talent-match/internal/repository"
)

// concurrentCacheRepo is a goroutine-safe cache mock for the worker pool.
type concurrentCacheRepo struct {
	mu      sync.Mutex
	entries map[string]*repository.CacheEntry
	failIDs map[string]bool

	setCalls int
}

func newConcurrentCacheRepo() *concurrentCacheRepo {
	return &concurrentCacheRepo{
		entries: make(map[string]*repository.CacheEntry),
		failIDs: make(map[string]bool),
	}
}

func (m *concurrentCacheRepo) Get(_ context.Context, key repository.CacheKey, maxAge time.Duration) (*repository.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key.DocID()]
	if !ok {
		return nil, nil
	}
	if maxAge > 0 && e.Age(time.Now()) > maxAge {
		return nil, nil
	}
	return e, nil
}

func (m *concurrentCacheRepo) Set(_ context.Context, key repository.CacheKey, results []matching.MatchResult, computedCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.failIDs[key.SubjectID] {
		return errors.New("write rejected")
	}
	m.entries[key.DocID()] = &repository.CacheEntry{
		SubjectID:     key.SubjectID,
		Results:       results,
		ComputedCount: computedCount,
		UpdatedAt:     time.Now().Unix(),
		SchemaVersion: repository.CacheSchemaVersion,
	}
	return nil
}

func backfillMembers(n int) []profile.Profile {
	out := make([]profile.Profile, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, profile.Profile{
			ID:          string(rune('a' + i)),
			Title:       "Verkäufer",
			SkillSetRaw: profile.SkillRefList{{Name: "Kasse"}},
		})
	}
	return out
}

func newBackfillUsecase(profiles *mockProfileRepo, caches *concurrentCacheRepo) *Backfill {
	cfg := testMatchConfig()
	cfg.BackfillWorkers = 2
	return NewBackfillUsecase(profiles, caches, nil, testEngine(), cfg, nil)
}

func TestBackfillValidation(t *testing.T) {
	uc := newBackfillUsecase(&mockProfileRepo{}, newConcurrentCacheRepo())
	if _, err := uc.Backfill(context.Background(), BackfillParams{Direction: "up"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestBackfillComputesAllThenSkips(t *testing.T) {
	members := backfillMembers(4)
	profiles := &mockProfileRepo{population: members}
	caches := newConcurrentCacheRepo()
	uc := newBackfillUsecase(profiles, caches)

	first, err := uc.Backfill(context.Background(), BackfillParams{Direction: matching.DirectionSeekerToPosting})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if first.RunID == "" {
		t.Fatalf("missing run id")
	}
	if first.Processed != 4 || first.Computed != 4 || first.Skipped != 0 || first.Errors != 0 {
		t.Fatalf("first run = %+v", first)
	}

	// Second run finds fresh entries and computes nothing.
	second, err := uc.Backfill(context.Background(), BackfillParams{Direction: matching.DirectionSeekerToPosting})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if second.Computed != 0 || second.Skipped != 4 {
		t.Fatalf("second run = %+v, want all skipped", second)
	}
	if second.RunID == first.RunID {
		t.Fatalf("runs must have distinct ids")
	}
}

func TestBackfillForceRecomputes(t *testing.T) {
	members := backfillMembers(3)
	profiles := &mockProfileRepo{population: members}
	caches := newConcurrentCacheRepo()
	uc := newBackfillUsecase(profiles, caches)

	if _, err := uc.Backfill(context.Background(), BackfillParams{Direction: matching.DirectionSeekerToPosting}); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	forced, err := uc.Backfill(context.Background(), BackfillParams{
		Direction: matching.DirectionSeekerToPosting, Force: true,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if forced.Computed != 3 || forced.Skipped != 0 {
		t.Fatalf("forced run = %+v, want all recomputed", forced)
	}
}

func TestBackfillWarmsLocationFilterKeyWithTopK(t *testing.T) {
	members := backfillMembers(3)
	profiles := &mockProfileRepo{population: members}
	caches := newConcurrentCacheRepo()
	uc := newBackfillUsecase(profiles, caches)

	summary, err := uc.Backfill(context.Background(), BackfillParams{
		Direction:      matching.DirectionSeekerToPosting,
		TopK:           1,
		LocationFilter: true,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if summary.Computed != 3 {
		t.Fatalf("computed = %d, want 3", summary.Computed)
	}

	key := repository.CacheKey{
		Direction:      matching.DirectionSeekerToPosting,
		SubjectID:      members[0].ID,
		LocationFilter: true,
	}
	entry, err := caches.Get(context.Background(), key, 0)
	if err != nil || entry == nil {
		t.Fatalf("location-filtered key not warmed: entry=%v err=%v", entry, err)
	}
	if len(entry.Results) != 1 {
		t.Fatalf("stored %d results, want top-k 1", len(entry.Results))
	}
	if entry.ComputedCount != 1 {
		t.Fatalf("computed count = %d, want the kept result count 1", entry.ComputedCount)
	}

	unfiltered := repository.CacheKey{
		Direction: matching.DirectionSeekerToPosting,
		SubjectID: members[0].ID,
	}
	if e, _ := caches.Get(context.Background(), unfiltered, 0); e != nil {
		t.Fatalf("unfiltered key variant must stay cold")
	}
}

func TestBackfillMaxAgeOverridesSkipWindow(t *testing.T) {
	members := backfillMembers(2)
	profiles := &mockProfileRepo{population: members}
	caches := newConcurrentCacheRepo()
	uc := newBackfillUsecase(profiles, caches)

	seed, err := uc.Backfill(context.Background(), BackfillParams{Direction: matching.DirectionSeekerToPosting})
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}
	if seed.Computed != 2 {
		t.Fatalf("seed run = %+v, want 2 computed", seed)
	}
	for _, e := range caches.entries {
		e.UpdatedAt = time.Now().Add(-2 * time.Hour).Unix()
	}

	// A negative override treats any existing entry as fresh.
	kept, err := uc.Backfill(context.Background(), BackfillParams{
		Direction: matching.DirectionSeekerToPosting, MaxAge: -1,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if kept.Computed != 0 || kept.Skipped != 2 {
		t.Fatalf("negative override run = %+v, want all skipped", kept)
	}

	// The default window is the config TTL, which the entries now exceed.
	stale, err := uc.Backfill(context.Background(), BackfillParams{Direction: matching.DirectionSeekerToPosting})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stale.Computed != 2 {
		t.Fatalf("default window run = %+v, want all recomputed", stale)
	}
}

func TestBackfillLimit(t *testing.T) {
	members := backfillMembers(6)
	profiles := &mockProfileRepo{population: members}
	uc := newBackfillUsecase(profiles, newConcurrentCacheRepo())

	summary, err := uc.Backfill(context.Background(), BackfillParams{
		Direction: matching.DirectionSeekerToPosting, Limit: 2,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if summary.Processed != 2 {
		t.Fatalf("processed = %d, want 2", summary.Processed)
	}
}

func TestBackfillMemberFailureIsIsolated(t *testing.T) {
	members := backfillMembers(3)
	profiles := &mockProfileRepo{population: members}
	caches := newConcurrentCacheRepo()
	caches.failIDs[members[1].ID] = true
	uc := newBackfillUsecase(profiles, caches)

	summary, err := uc.Backfill(context.Background(), BackfillParams{Direction: matching.DirectionSeekerToPosting})
	if err != nil {
		t.Fatalf("member failure must not abort the run: %v", err)
	}
	if summary.Processed != 3 || summary.Computed != 2 || summary.Errors != 1 {
		t.Fatalf("summary = %+v, want 2 computed and 1 error", summary)
	}
}

func TestBackfillCancellation(t *testing.T) {
	members := backfillMembers(5)
	profiles := &mockProfileRepo{population: members}
	uc := newBackfillUsecase(profiles, newConcurrentCacheRepo())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := uc.Backfill(ctx, BackfillParams{Direction: matching.DirectionSeekerToPosting})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if summary.Computed == len(members) {
		t.Fatalf("canceled run should not have completed everything")
	}
}
