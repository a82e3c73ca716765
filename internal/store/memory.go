package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Memory is the in-memory Collection used by unit tests. It mirrors the Mongo
// adapter's semantics: server-assigned ids, $set-style updates, permissive
// delete, ordered and filtered listings.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]bson.M
}

func NewMemory() *Memory {
	return &Memory{docs: map[string]bson.M{}}
}

func (m *Memory) Create(ctx context.Context, doc any) (string, error) {
	d, err := toDoc(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	d["id"] = id
	m.mu.Lock()
	m.docs[id] = d
	m.mu.Unlock()
	return id, nil
}

func (m *Memory) Get(ctx context.Context, id string) (bson.Raw, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	b, err := bson.Marshal(d)
	if err != nil {
		return nil, err
	}
	return bson.Raw(b), nil
}

func (m *Memory) List(ctx context.Context, q Query) ([]bson.Raw, error) {
	m.mu.RLock()
	matched := make([]bson.M, 0, len(m.docs))
	for _, d := range m.docs {
		if q.FilterField != "" {
			v, _ := d[q.FilterField].(string)
			if v != q.FilterValue {
				continue
			}
		}
		matched = append(matched, d)
	}
	m.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i][q.OrderBy], matched[j][q.OrderBy])
			if q.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	out := make([]bson.Raw, 0, len(matched))
	for _, d := range matched {
		b, err := bson.Marshal(d)
		if err != nil {
			return nil, err
		}
		out = append(out, bson.Raw(b))
	}
	return out, nil
}

func (m *Memory) Update(ctx context.Context, id string, doc any) error {
	d, err := toDoc(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range d {
		existing[k] = v
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.docs, id)
	m.mu.Unlock()
	return nil
}

// compareValues orders the scalar kinds that appear in documents. Missing
// fields sort first, matching MongoDB's null-lowest ordering.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return -1
		}
		return strings.Compare(as, bs)
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	switch {
	case aok && bok && af < bf:
		return -1
	case aok && bok && af > bf:
		return 1
	case aok && bok:
		return 0
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
