package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-storefront/internal/apperr"
)

// MemoryStore keeps products in process memory (STORE_DRIVER=memory, tests).
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	seq      map[string]int
	next     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: map[string]Product{}, seq: map[string]int{}}
}

func (m *MemoryStore) List(_ context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, clone(p))
	}
	// newest first, insertion order breaks ties
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.seq[out[i].ID] > m.seq[out[j].ID]
	})
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, apperr.NotFound("product", id)
	}
	return clone(p), nil
}

func (m *MemoryStore) Create(_ context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; ok {
		return apperr.Storage("insert product", apperr.Invalid("id", "duplicate"))
	}
	m.next++
	m.seq[p.ID] = m.next
	m.products[p.ID] = clone(p)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.products[p.ID]
	if !ok {
		return apperr.NotFound("product", p.ID)
	}
	p.CreatedAt = cur.CreatedAt
	m.products[p.ID] = clone(p)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return apperr.NotFound("product", id)
	}
	delete(m.products, id)
	delete(m.seq, id)
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}

func clone(p Product) Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}
