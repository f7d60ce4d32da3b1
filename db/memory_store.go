package db

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// MemoryStore - хранилище в памяти, безопасное для конкурентного доступа
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string][]byte),
	}
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	raw, ok := m.collections[collection][id]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{ID: id}, nil
	}
	data, err := decodeDocument(raw)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: id, Exists: true, Data: data}, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeDocument(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs(collection)[id] = raw
	return nil
}

func (m *MemoryStore) Create(ctx context.Context, collection, id string, data map[string]any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	raw, err := encodeDocument(data)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.docs(collection)
	if _, exists := docs[id]; exists {
		return false, nil
	}
	docs[id] = raw
	return true, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return err
	}
	mergeFields(doc, fields)
	raw, err = encodeDocument(doc)
	if err != nil {
		return err
	}
	m.collections[collection][id] = raw
	return nil
}

func (m *MemoryStore) Where(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.collections[collection]))
	for id := range m.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]Snapshot, 0)
	for _, id := range ids {
		doc, err := decodeDocument(m.collections[collection][id])
		if err != nil {
			return nil, err
		}
		if matches(doc, filters) {
			result = append(result, Snapshot{ID: id, Exists: true, Data: doc})
		}
	}
	return result, nil
}

// docs вызывается под m.mu
func (m *MemoryStore) docs(collection string) map[string][]byte {
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		m.collections[collection] = docs
	}
	return docs
}

func lookupField(doc map[string]any, field string) (any, bool) {
	path := strings.Split(field, ".")
	var current any = doc
	for _, part := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// normalize приводит значение к виду, в котором оно лежит в документе после json
func normalize(value any) any {
	raw, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return value
	}
	return out
}

func matches(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		value, ok := lookupField(doc, f.Field)
		if !ok || !reflect.DeepEqual(value, normalize(f.Value)) {
			return false
		}
	}
	return true
}
