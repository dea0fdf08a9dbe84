package repository

import (
	"context"
	"encoding/json"
	"os"

	"talent-match/internal/docstore"
	"talent-match/internal/domain/taxonomy"
)

// DocVocabRepository is the taxonomy source backed by the document store.
// The store is authoritative; seed files only populate an empty collection on
// first start.
type DocVocabRepository struct {
	store docstore.Store
}

func NewDocVocabRepository(store docstore.Store) *DocVocabRepository {
	return &DocVocabRepository{store: store}
}

func vocabCollection(vocab string) string {
	if vocab == taxonomy.VocabTitles {
		return docstore.CollectionTitleVocab
	}
	return docstore.CollectionSkillVocab
}

func (r *DocVocabRepository) LoadVocab(ctx context.Context, vocab string) ([]taxonomy.Entry, error) {
	docs, err := r.store.Find(ctx, vocabCollection(vocab), docstore.Filter{}, docstore.FindOptions{})
	if err != nil {
		return nil, err
	}
	out := make([]taxonomy.Entry, 0, len(docs))
	for _, d := range docs {
		var e taxonomy.Entry
		if err := json.Unmarshal(d.Body, &e); err != nil {
			continue
		}
		if e.Canon == "" {
			e.Canon = d.ID
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *DocVocabRepository) SaveEntry(ctx context.Context, vocab string, e taxonomy.Entry) error {
	return r.store.Upsert(ctx, vocabCollection(vocab), e.Canon, e)
}

// SeedFromFile loads a JSON seed map (canonical key -> alias list) into an
// empty vocabulary collection. Idempotent: a non-empty collection is left
// untouched. Returns the number of entries written.
func (r *DocVocabRepository) SeedFromFile(ctx context.Context, vocab, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	n, err := r.store.Count(ctx, vocabCollection(vocab), docstore.Filter{})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var src map[string][]string
	if err := json.Unmarshal(raw, &src); err != nil {
		return 0, err
	}

	written := 0
	for canon, aliases := range src {
		e := taxonomy.Entry{Canon: canon, Aliases: aliases}
		if err := r.SaveEntry(ctx, vocab, e); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
