package repository

import (
	"context"
	"encoding/json"

	"talent-match/internal/docstore"
)

// MetaRepository stores small operational records (tuned weights, marker
// timestamps) in the meta collection so they survive restarts.
type MetaRepository interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

type DocMetaRepository struct {
	store docstore.Store
}

func NewDocMetaRepository(store docstore.Store) *DocMetaRepository {
	return &DocMetaRepository{store: store}
}

func (r *DocMetaRepository) Get(ctx context.Context, key string, out any) (bool, error) {
	doc, err := r.store.FindOne(ctx, docstore.CollectionMeta, key)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}
	if err := json.Unmarshal(doc.Body, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *DocMetaRepository) Set(ctx context.Context, key string, value any) error {
	return r.store.Upsert(ctx, docstore.CollectionMeta, key, value)
}
