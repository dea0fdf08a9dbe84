package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and by callers that want the
// engine without an external database. Semantics mirror the Postgres
// implementation: last-writer-wins upserts and equality filtering on body
// fields.
type Memory struct {
	mu    sync.RWMutex
	colls map[string]map[string]Doc
	// Clock is overridable so tests can age cache entries deterministically.
	Clock func() int64
}

func NewMemory() *Memory {
	return &Memory{
		colls: make(map[string]map[string]Doc),
		Clock: func() int64 { return time.Now().Unix() },
	}
}

func (m *Memory) Find(_ context.Context, collection string, f Filter, opts FindOptions) ([]Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Doc, 0)
	for _, d := range m.colls[collection] {
		if matches(d.Body, f) {
			out = append(out, d)
		}
	}
	if opts.SortUpdatedDesc {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].UpdatedAt != out[j].UpdatedAt {
				return out[i].UpdatedAt > out[j].UpdatedAt
			}
			return out[i].ID > out[j].ID
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *Memory) FindOne(_ context.Context, collection, id string) (*Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.colls[collection][id]
	if !ok {
		return nil, nil
	}
	cp := d
	return &cp, nil
}

func (m *Memory) Upsert(_ context.Context, collection, id string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.colls[collection] == nil {
		m.colls[collection] = make(map[string]Doc)
	}
	m.colls[collection][id] = Doc{ID: id, Body: b, UpdatedAt: m.Clock()}
	return nil
}

func (m *Memory) Count(_ context.Context, collection string, f Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, d := range m.colls[collection] {
		if matches(d.Body, f) {
			n++
		}
	}
	return n, nil
}

func matches(body json.RawMessage, f Filter) bool {
	if len(f.Equals) == 0 {
		return true
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return false
	}
	for k, want := range f.Equals {
		got, ok := doc[k]
		if !ok {
			return false
		}
		// Round-trip the expected value through JSON so numeric types
		// compare the way they would inside the store.
		wb, err := json.Marshal(want)
		if err != nil {
			return false
		}
		var wn any
		if err := json.Unmarshal(wb, &wn); err != nil {
			return false
		}
		if !reflect.DeepEqual(got, wn) {
			return false
		}
	}
	return true
}
