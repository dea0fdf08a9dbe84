package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"talent-match/internal/docstore"
	"talent-match/internal/domain/matching"
)

// CacheSchemaVersion guards cached payload completeness. Readers that need
// fields beyond what a cached entry's version guarantees treat the entry as
// needing recomputation; bump this whenever MatchResult gains required
// fields.
const CacheSchemaVersion = 2

// CacheKey is the composite identity of a match cache entry. At most one
// live entry exists per key.
type CacheKey struct {
	Direction      matching.Direction
	SubjectID      string
	TenantID       string // empty for untenanted/public data
	LocationFilter bool
}

// DocID derives the deterministic document id for the key, which is what
// turns the store's single-document upsert into the one-entry-per-key
// invariant.
func (k CacheKey) DocID() string {
	tenant := k.TenantID
	if tenant == "" {
		tenant = "-"
	}
	return fmt.Sprintf("%s:%s:%s:%t", k.Direction, k.SubjectID, tenant, k.LocationFilter)
}

// CacheEntry is the persisted cache record, the only durable state owned by
// the matching core.
type CacheEntry struct {
	Direction      matching.Direction     `json:"direction"`
	SubjectID      string                 `json:"subject_id"`
	TenantID       *string                `json:"tenant_id"`
	LocationFilter bool                   `json:"location_filter"`
	Results        []matching.MatchResult `json:"results"`
	ComputedCount  int                    `json:"computed_count"`
	UpdatedAt      int64                  `json:"updated_at"`
	SchemaVersion  int                    `json:"schema_version"`
}

// Age of the entry relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(e.UpdatedAt, 0))
}

// NeedsUpgrade reports whether the entry predates the current payload
// schema. Such entries are treated as recompute-needed, never served.
func (e CacheEntry) NeedsUpgrade() bool {
	return e.SchemaVersion < CacheSchemaVersion
}

// MatchCacheRepository persists computed rankings. Expiry is enforced at
// read time; expired entries are left in place so a caller-supplied max age
// can still read them within its own validity window.
type MatchCacheRepository interface {
	// Get returns the entry for the key, or nil when absent or older than
	// maxAge. A maxAge <= 0 disables the age check entirely.
	Get(ctx context.Context, key CacheKey, maxAge time.Duration) (*CacheEntry, error)
	// Set upserts the single entry for the key.
	Set(ctx context.Context, key CacheKey, results []matching.MatchResult, computedCount int) error
}

type DocMatchCacheRepository struct {
	store docstore.Store
	now   func() time.Time
}

func NewDocMatchCacheRepository(store docstore.Store) *DocMatchCacheRepository {
	return &DocMatchCacheRepository{store: store, now: time.Now}
}

func (r *DocMatchCacheRepository) Get(ctx context.Context, key CacheKey, maxAge time.Duration) (*CacheEntry, error) {
	doc, err := r.store.FindOne(ctx, docstore.CollectionMatchCache, key.DocID())
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var entry CacheEntry
	if err := json.Unmarshal(doc.Body, &entry); err != nil {
		// Unreadable payloads are treated as absent so the caller
		// recomputes and overwrites.
		return nil, nil
	}
	if maxAge > 0 && entry.Age(r.now()) > maxAge {
		return nil, nil
	}
	return &entry, nil
}

func (r *DocMatchCacheRepository) Set(ctx context.Context, key CacheKey, results []matching.MatchResult, computedCount int) error {
	if results == nil {
		results = []matching.MatchResult{}
	}
	var tenant *string
	if key.TenantID != "" {
		t := key.TenantID
		tenant = &t
	}
	entry := CacheEntry{
		Direction:      key.Direction,
		SubjectID:      key.SubjectID,
		TenantID:       tenant,
		LocationFilter: key.LocationFilter,
		Results:        results,
		ComputedCount:  computedCount,
		UpdatedAt:      r.now().Unix(),
		SchemaVersion:  CacheSchemaVersion,
	}
	return r.store.Upsert(ctx, docstore.CollectionMatchCache, key.DocID(), entry)
}
