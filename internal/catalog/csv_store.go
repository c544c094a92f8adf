package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/shopspring/decimal"

	"minipos/internal/model"
	"minipos/internal/poserr"
)

// Header columns of the durable catalog table.
var csvHeader = []string{"Product Name", "Price (USD)"}

func errBadRow(i int, row []string) error {
	return fmt.Errorf("row %d has %d columns, want 2", i, len(row))
}

// CSVStore persists the catalog as a delimited text file with a header
// row. Every operation re-reads the whole file, mutates in memory and
// writes the whole file back under the store mutex.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Load returns the current product table. A missing file seeds the
// default catalog and persists it; once the file exists Load never
// overwrites it.
func (s *CSVStore) Load() ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *CSVStore) loadLocked() ([]model.Product, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		defaults := DefaultProducts()
		if err := s.writeLocked(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, poserr.Storagef(err, "open catalog %s", s.path)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, poserr.Storagef(err, "read catalog %s", s.path)
	}
	var list []model.Product
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) != 2 {
			return nil, poserr.Storagef(errBadRow(i, row), "parse catalog %s", s.path)
		}
		price, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, poserr.Storagef(err, "parse price row %d", i)
		}
		list = append(list, model.Product{Name: row[0], Price: price})
	}
	return list, nil
}

func (s *CSVStore) writeLocked(list []model.Product) error {
	f, err := os.Create(s.path)
	if err != nil {
		return poserr.Storagef(err, "create catalog %s", s.path)
	}
	w := csv.NewWriter(f)
	_ = w.Write(csvHeader)
	for _, p := range list {
		_ = w.Write([]string{p.Name, p.Price.StringFixed(2)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return poserr.Storagef(err, "write catalog %s", s.path)
	}
	if err := f.Close(); err != nil {
		return poserr.Storagef(err, "close catalog %s", s.path)
	}
	return nil
}

func (s *CSVStore) Add(name string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	list, err = addProduct(list, name, price)
	if err != nil {
		return err
	}
	return s.writeLocked(list)
}

func (s *CSVStore) Update(oldName, newName string, newPrice decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	list, err = updateProduct(list, oldName, newName, newPrice)
	if err != nil {
		return err
	}
	return s.writeLocked(list)
}

func (s *CSVStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked()
	if err != nil {
		return err
	}
	list, err = removeProduct(list, name)
	if err != nil {
		return err
	}
	return s.writeLocked(list)
}
