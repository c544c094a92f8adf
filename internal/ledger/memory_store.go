package ledger

import (
	"sync"

	"minipos/internal/model"
)

// MemoryStore keeps the ledger in process memory, insertion-ordered.
type MemoryStore struct {
	mu   sync.RWMutex
	list []model.Sale
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]model.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Sale, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *MemoryStore) Append(sale model.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := appendSale(s.list, sale)
	if err != nil {
		return err
	}
	s.list = list
	return nil
}

func (s *MemoryStore) UpdateByReference(ref string, patch model.SalePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := patchSale(s.list, ref, patch)
	if err != nil {
		return err
	}
	s.list = list
	return nil
}

func (s *MemoryStore) DeleteByReference(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := deleteSale(s.list, ref)
	if err != nil {
		return err
	}
	s.list = list
	return nil
}

func (s *MemoryStore) ExportAll() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return encodeCSV(s.list)
}
