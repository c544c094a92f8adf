package catalog

import (
	"sync"

	"github.com/shopspring/decimal"

	"minipos/internal/model"
)

// MemoryStore keeps the catalog in process memory. Useful for tests and
// for hosts that do their own persistence.
type MemoryStore struct {
	mu     sync.RWMutex
	seeded bool
	list   []model.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seeded {
		s.list = DefaultProducts()
		s.seeded = true
	}
	out := make([]model.Product, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *MemoryStore) Add(name string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := addProduct(s.list, name, price)
	if err != nil {
		return err
	}
	s.list = list
	s.seeded = true
	return nil
}

func (s *MemoryStore) Update(oldName, newName string, newPrice decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := updateProduct(s.list, oldName, newName, newPrice)
	if err != nil {
		return err
	}
	s.list = list
	return nil
}

func (s *MemoryStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := removeProduct(s.list, name)
	if err != nil {
		return err
	}
	s.list = list
	return nil
}
