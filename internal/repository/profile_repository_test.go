package repository

import (
	"context"
	"testing"

	"talent-match/internal/docstore"
	"talent-match/internal/domain/matching"
)

func TestDirectionCollections(t *testing.T) {
	if got := SubjectCollection(matching.DirectionSeekerToPosting); got != docstore.CollectionSeekers {
		t.Fatalf("c2j subject = %q", got)
	}
	if got := CounterpartCollection(matching.DirectionSeekerToPosting); got != docstore.CollectionPostings {
		t.Fatalf("c2j counterpart = %q", got)
	}
	if got := SubjectCollection(matching.DirectionPostingToSeeker); got != docstore.CollectionPostings {
		t.Fatalf("j2c subject = %q", got)
	}
	if got := CounterpartCollection(matching.DirectionPostingToSeeker); got != docstore.CollectionSeekers {
		t.Fatalf("j2c counterpart = %q", got)
	}
}

func TestProfileRepositoryGet(t *testing.T) {
	store := docstore.NewMemory()
	repo := NewDocProfileRepository(store)
	ctx := context.Background()

	_ = store.Upsert(ctx, docstore.CollectionSeekers, "s1", map[string]any{
		"title":     "Koch",
		"skill_set": []any{"Kochen"},
	})

	p, err := repo.Get(ctx, docstore.CollectionSeekers, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p == nil || p.ID != "s1" || p.Title != "Koch" {
		t.Fatalf("profile = %+v", p)
	}

	missing, err := repo.Get(ctx, docstore.CollectionSeekers, "nope")
	if err != nil || missing != nil {
		t.Fatalf("absent profile = (%+v, %v), want (nil, nil)", missing, err)
	}
}

func TestProfileRepositoryTenantScope(t *testing.T) {
	store := docstore.NewMemory()
	repo := NewDocProfileRepository(store)
	ctx := context.Background()

	_ = store.Upsert(ctx, docstore.CollectionPostings, "p1", map[string]any{"tenant_id": "acme", "title": "A"})
	_ = store.Upsert(ctx, docstore.CollectionPostings, "p2", map[string]any{"title": "B"})
	_ = store.Upsert(ctx, docstore.CollectionPostings, "p3", map[string]any{"tenant_id": "acme", "title": "C"})

	scoped, err := repo.ListPopulation(ctx, docstore.CollectionPostings, "acme", 0)
	if err != nil {
		t.Fatalf("ListPopulation: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("tenant scope = %d profiles, want 2", len(scoped))
	}

	all, err := repo.ListPopulation(ctx, docstore.CollectionPostings, "", 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("unscoped = (%d, %v), want all 3", len(all), err)
	}

	n, err := repo.Count(ctx, docstore.CollectionPostings, "acme")
	if err != nil || n != 2 {
		t.Fatalf("Count = (%d, %v), want 2", n, err)
	}
}

func TestProfileRepositoryBackfillOrder(t *testing.T) {
	store := docstore.NewMemory()
	now := int64(1000)
	store.Clock = func() int64 { now++; return now }
	repo := NewDocProfileRepository(store)
	ctx := context.Background()

	_ = store.Upsert(ctx, docstore.CollectionSeekers, "oldest", map[string]any{"title": "A"})
	_ = store.Upsert(ctx, docstore.CollectionSeekers, "middle", map[string]any{"title": "B"})
	_ = store.Upsert(ctx, docstore.CollectionSeekers, "newest", map[string]any{"title": "C"})

	members, err := repo.ListForBackfill(ctx, docstore.CollectionSeekers, "", 2)
	if err != nil {
		t.Fatalf("ListForBackfill: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("limit = %d members, want 2", len(members))
	}
	if members[0].ID != "newest" || members[1].ID != "middle" {
		t.Fatalf("order = %v, want most recent first", []string{members[0].ID, members[1].ID})
	}
}
