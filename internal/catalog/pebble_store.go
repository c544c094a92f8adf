package catalog

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/shopspring/decimal"

	"minipos/internal/model"
	"minipos/internal/poserr"
)

// Internal marker key recording that the store was initialized; sorts
// before every product name and is skipped on iteration.
const pebbleInitKey = "!initialized"

type pebbleProduct struct {
	Price decimal.Decimal `json:"price"`
	Ord   int64           `json:"ord"`
}

// PebbleStore keeps the catalog in an embedded PebbleDB. Rows carry an
// insertion ordinal so Load returns the same order a CSV file would.
type PebbleStore struct {
	mu sync.Mutex
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, poserr.Storagef(err, "pebble open %s", dir)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

func (s *PebbleStore) Load() ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seedLocked(); err != nil {
		return nil, err
	}
	list, _, err := s.scanLocked()
	return list, err
}

func (s *PebbleStore) seedLocked() error {
	_, closer, err := s.db.Get([]byte(pebbleInitKey))
	if err == nil {
		_ = closer.Close()
		return nil
	}
	if err != pebble.ErrNotFound {
		return poserr.Storagef(err, "pebble get init marker")
	}
	b := s.db.NewBatch()
	for i, p := range DefaultProducts() {
		v, err := json.Marshal(pebbleProduct{Price: p.Price, Ord: int64(i)})
		if err != nil {
			return poserr.Storagef(err, "encode product %q", p.Name)
		}
		_ = b.Set([]byte(p.Name), v, nil)
	}
	_ = b.Set([]byte(pebbleInitKey), []byte{1}, nil)
	if err := b.Commit(pebble.Sync); err != nil {
		return poserr.Storagef(err, "pebble seed defaults")
	}
	return nil
}

// scanLocked returns products sorted by insertion ordinal plus the next
// free ordinal.
func (s *PebbleStore) scanLocked() ([]model.Product, int64, error) {
	it, err := s.db.NewIter(nil)
	if err != nil {
		return nil, 0, poserr.Storagef(err, "pebble iter")
	}
	defer it.Close()

	type row struct {
		p   model.Product
		ord int64
	}
	var rows []row
	var nextOrd int64
	for it.First(); it.Valid(); it.Next() {
		name := string(it.Key())
		if name == pebbleInitKey {
			continue
		}
		var pp pebbleProduct
		if err := json.Unmarshal(it.Value(), &pp); err != nil {
			return nil, 0, poserr.Storagef(err, "decode product %q", name)
		}
		rows = append(rows, row{p: model.Product{Name: name, Price: pp.Price}, ord: pp.Ord})
		if pp.Ord >= nextOrd {
			nextOrd = pp.Ord + 1
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ord < rows[j].ord })
	list := make([]model.Product, len(rows))
	for i, r := range rows {
		list[i] = r.p
	}
	return list, nextOrd, nil
}

func (s *PebbleStore) ordLocked(name string) (int64, bool, error) {
	v, closer, err := s.db.Get([]byte(name))
	if err == pebble.ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, poserr.Storagef(err, "pebble get %q", name)
	}
	defer closer.Close()
	var pp pebbleProduct
	if err := json.Unmarshal(v, &pp); err != nil {
		return 0, false, poserr.Storagef(err, "decode product %q", name)
	}
	return pp.Ord, true, nil
}

func (s *PebbleStore) Add(name string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, nextOrd, err := s.scanLocked()
	if err != nil {
		return err
	}
	if _, err := addProduct(list, name, price); err != nil {
		return err
	}
	v, err := json.Marshal(pebbleProduct{Price: price, Ord: nextOrd})
	if err != nil {
		return poserr.Storagef(err, "encode product %q", name)
	}
	b := s.db.NewBatch()
	_ = b.Set([]byte(name), v, nil)
	_ = b.Set([]byte(pebbleInitKey), []byte{1}, nil)
	if err := b.Commit(pebble.Sync); err != nil {
		return poserr.Storagef(err, "pebble set %q", name)
	}
	return nil
}

func (s *PebbleStore) Update(oldName, newName string, newPrice decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, _, err := s.scanLocked()
	if err != nil {
		return err
	}
	if _, err := updateProduct(list, oldName, newName, newPrice); err != nil {
		return err
	}
	ord, ok, err := s.ordLocked(oldName)
	if err != nil {
		return err
	}
	if !ok {
		return poserr.NotFoundf("product %q", oldName)
	}
	v, err := json.Marshal(pebbleProduct{Price: newPrice, Ord: ord})
	if err != nil {
		return poserr.Storagef(err, "encode product %q", newName)
	}
	b := s.db.NewBatch()
	if oldName != newName {
		_ = b.Delete([]byte(oldName), nil)
	}
	_ = b.Set([]byte(newName), v, nil)
	if err := b.Commit(pebble.Sync); err != nil {
		return poserr.Storagef(err, "pebble update %q", oldName)
	}
	return nil
}

func (s *PebbleStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, _, err := s.scanLocked()
	if err != nil {
		return err
	}
	if _, err := removeProduct(list, name); err != nil {
		return err
	}
	if err := s.db.Delete([]byte(name), pebble.Sync); err != nil {
		return poserr.Storagef(err, "pebble delete %q", name)
	}
	return nil
}
