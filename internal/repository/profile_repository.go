package repository

import (
	"context"

	"talent-match/internal/docstore"
	"talent-match/internal/domain/matching"
	"talent-match/internal/domain/profile"
)

// ProfileRepository reads seeker and posting documents. Profiles are owned by
// ingestion; this side only decodes them, tolerating absent fields.
type ProfileRepository interface {
	Get(ctx context.Context, collection, id string) (*profile.Profile, error)
	ListPopulation(ctx context.Context, collection, tenantID string, limit int) ([]profile.Profile, error)
	ListForBackfill(ctx context.Context, collection, tenantID string, limit int) ([]profile.Profile, error)
	Count(ctx context.Context, collection, tenantID string) (int64, error)
}

// SubjectCollection returns the collection the ranking subject lives in.
func SubjectCollection(dir matching.Direction) string {
	if dir == matching.DirectionPostingToSeeker {
		return docstore.CollectionPostings
	}
	return docstore.CollectionSeekers
}

// CounterpartCollection returns the collection ranked against the subject.
func CounterpartCollection(dir matching.Direction) string {
	if dir == matching.DirectionPostingToSeeker {
		return docstore.CollectionSeekers
	}
	return docstore.CollectionPostings
}

type DocProfileRepository struct {
	store docstore.Store
}

func NewDocProfileRepository(store docstore.Store) *DocProfileRepository {
	return &DocProfileRepository{store: store}
}

func (r *DocProfileRepository) Get(ctx context.Context, collection, id string) (*profile.Profile, error) {
	doc, err := r.store.FindOne(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	p := profile.Decode(doc.ID, doc.Body)
	return &p, nil
}

// ListPopulation fetches the counterpart population for ranking, bounded by
// limit, in stable store iteration order.
func (r *DocProfileRepository) ListPopulation(ctx context.Context, collection, tenantID string, limit int) ([]profile.Profile, error) {
	return r.list(ctx, collection, tenantID, docstore.FindOptions{Limit: limit})
}

// ListForBackfill walks a population most-recently-updated first.
func (r *DocProfileRepository) ListForBackfill(ctx context.Context, collection, tenantID string, limit int) ([]profile.Profile, error) {
	return r.list(ctx, collection, tenantID, docstore.FindOptions{SortUpdatedDesc: true, Limit: limit})
}

func (r *DocProfileRepository) Count(ctx context.Context, collection, tenantID string) (int64, error) {
	return r.store.Count(ctx, collection, tenantFilter(tenantID))
}

func (r *DocProfileRepository) list(ctx context.Context, collection, tenantID string, opts docstore.FindOptions) ([]profile.Profile, error) {
	docs, err := r.store.Find(ctx, collection, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, err
	}
	out := make([]profile.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, profile.Decode(d.ID, d.Body))
	}
	return out, nil
}

func tenantFilter(tenantID string) docstore.Filter {
	if tenantID == "" {
		return docstore.Filter{}
	}
	return docstore.Filter{Equals: map[string]any{"tenant_id": tenantID}}
}
