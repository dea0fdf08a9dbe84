package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names owned by the matching core.
const (
	CollectionSeekers     = "seekers"
	CollectionPostings    = "postings"
	CollectionMatchCache  = "match_cache"
	CollectionSkillVocab  = "_vocab_skills"
	CollectionTitleVocab  = "_vocab_titles"
	CollectionMeta        = "_meta"
)

// ErrUnavailable marks store failures (connectivity, timeout) so callers can
// distinguish "backend down" from "no documents matched".
var ErrUnavailable = errors.New("document store unavailable")

// Doc is one stored document. Body is the raw JSON payload; callers decode it
// into their own types and treat missing fields as absent.
type Doc struct {
	ID        string
	Body      json.RawMessage
	UpdatedAt int64
}

// Filter narrows a Find or Count. Equals is matched by JSON containment on the
// document body; a nil/empty map matches everything.
type Filter struct {
	Equals map[string]any
}

// FindOptions controls iteration order and volume.
type FindOptions struct {
	SortUpdatedDesc bool
	Limit           int
}

// Store is the minimal document-store contract the matching core depends on.
// Upsert must be atomic per (collection, id); last writer wins.
type Store interface {
	Find(ctx context.Context, collection string, f Filter, opts FindOptions) ([]Doc, error)
	FindOne(ctx context.Context, collection, id string) (*Doc, error)
	Upsert(ctx context.Context, collection, id string, body any) error
	Count(ctx context.Context, collection string, f Filter) (int64, error)
}
