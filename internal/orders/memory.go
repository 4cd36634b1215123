package orders

import (
	"context"
	"sync"

	"github.com/ariefcatur/go-storefront/internal/apperr"
)

// MemoryStore keeps orders in insertion order (STORE_DRIVER=memory, tests).
type MemoryStore struct {
	mu     sync.RWMutex
	orders []Order
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// List returns newest first.
func (m *MemoryStore) List(_ context.Context) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Order, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		out = append(out, m.orders[i])
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, apperr.NotFound("order", id)
}

func (m *MemoryStore) Create(_ context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.Items = append([]Item(nil), o.Items...)
	m.orders = append(m.orders, o)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.orders {
		if o.ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("order", id)
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
