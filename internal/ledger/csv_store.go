package ledger

import (
	"os"
	"sync"

	"minipos/internal/model"
	"minipos/internal/poserr"
)

// CSVStore persists the ledger as a delimited text file with a header
// row. An absent file is an empty ledger, not an error; the file is
// created on first append. Every operation re-reads the whole file,
// mutates in memory and writes the whole file back under the mutex.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Load() ([]model.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *CSVStore) loadLocked() ([]model.Sale, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, poserr.Storagef(err, "read ledger %s", s.path)
	}
	return decodeCSV(data)
}

func (s *CSVStore) writeLocked(list []model.Sale) error {
	data, err := encodeCSV(list)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return poserr.Storagef(err, "write ledger %s", s.path)
	}
	return nil
}

func (s *CSVStore) Append(sale model.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	list, err = appendSale(list, sale)
	if err != nil {
		return err
	}
	return s.writeLocked(list)
}

func (s *CSVStore) UpdateByReference(ref string, patch model.SalePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	list, err = patchSale(list, ref, patch)
	if err != nil {
		return err
	}
	return s.writeLocked(list)
}

func (s *CSVStore) DeleteByReference(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	list, err = deleteSale(list, ref)
	if err != nil {
		return err
	}
	return s.writeLocked(list)
}

func (s *CSVStore) ExportAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	return encodeCSV(list)
}
