package docstore

import (
	"context"
	"testing"
)

type testDoc struct {
	TenantID string `json:"tenant_id,omitempty"`
	Name     string `json:"name"`
}

func TestMemoryUpsertAndFindOne(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Upsert(ctx, CollectionSeekers, "a", testDoc{Name: "first"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := m.Upsert(ctx, CollectionSeekers, "a", testDoc{Name: "second"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	doc, err := m.FindOne(ctx, CollectionSeekers, "a")
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if doc == nil {
		t.Fatalf("expected document")
	}
	if string(doc.Body) != `{"name":"second"}` {
		t.Fatalf("upsert did not overwrite: %s", doc.Body)
	}

	missing, err := m.FindOne(ctx, CollectionSeekers, "nope")
	if err != nil || missing != nil {
		t.Fatalf("absent doc = (%v, %v), want (nil, nil)", missing, err)
	}
}

func TestMemoryFindFilterAndLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.Upsert(ctx, CollectionPostings, "p1", testDoc{TenantID: "t1", Name: "a"})
	_ = m.Upsert(ctx, CollectionPostings, "p2", testDoc{TenantID: "t2", Name: "b"})
	_ = m.Upsert(ctx, CollectionPostings, "p3", testDoc{TenantID: "t1", Name: "c"})

	docs, err := m.Find(ctx, CollectionPostings, Filter{Equals: map[string]any{"tenant_id": "t1"}}, FindOptions{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 tenant docs, got %d", len(docs))
	}
	if docs[0].ID != "p1" || docs[1].ID != "p3" {
		t.Fatalf("unexpected id order: %v, %v", docs[0].ID, docs[1].ID)
	}

	limited, err := m.Find(ctx, CollectionPostings, Filter{}, FindOptions{Limit: 2})
	if err != nil || len(limited) != 2 {
		t.Fatalf("limit not applied: %d docs, err %v", len(limited), err)
	}
}

func TestMemoryFindSortUpdatedDesc(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := int64(1000)
	m.Clock = func() int64 { now++; return now }

	_ = m.Upsert(ctx, CollectionSeekers, "old", testDoc{Name: "old"})
	_ = m.Upsert(ctx, CollectionSeekers, "mid", testDoc{Name: "mid"})
	_ = m.Upsert(ctx, CollectionSeekers, "new", testDoc{Name: "new"})

	docs, err := m.Find(ctx, CollectionSeekers, Filter{}, FindOptions{SortUpdatedDesc: true})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if docs[0].ID != "new" || docs[2].ID != "old" {
		t.Fatalf("not sorted by recency: %v %v %v", docs[0].ID, docs[1].ID, docs[2].ID)
	}
}

func TestMemoryCount(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.Upsert(ctx, CollectionSeekers, "a", testDoc{TenantID: "t1"})
	_ = m.Upsert(ctx, CollectionSeekers, "b", testDoc{TenantID: "t2"})

	n, err := m.Count(ctx, CollectionSeekers, Filter{})
	if err != nil || n != 2 {
		t.Fatalf("Count = (%d, %v), want 2", n, err)
	}
	n, err = m.Count(ctx, CollectionSeekers, Filter{Equals: map[string]any{"tenant_id": "t1"}})
	if err != nil || n != 1 {
		t.Fatalf("filtered Count = (%d, %v), want 1", n, err)
	}
	n, err = m.Count(ctx, "empty_collection", Filter{})
	if err != nil || n != 0 {
		t.Fatalf("empty Count = (%d, %v), want 0", n, err)
	}
}
