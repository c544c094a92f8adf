package ledger

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/pebble"

	"minipos/internal/model"
	"minipos/internal/poserr"
)

type pebbleSale struct {
	Sale model.Sale `json:"sale"`
	Ord  int64      `json:"ord"`
}

// PebbleStore keeps the ledger in an embedded PebbleDB, keyed by
// reference number. Rows carry an insertion ordinal so Load and
// ExportAll preserve append order, matching the CSV store.
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

func (s *PebbleStore) Load() ([]model.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, _, err := s.scanLocked()
	return list, err
}

func (s *PebbleStore) scanLocked() ([]model.Sale, int64, error) {
	it, err := s.db.NewIter(nil)
	if err != nil {
		return nil, 0, poserr.Storagef(err, "pebble iter")
	}
	defer it.Close()

	var rows []pebbleSale
	var nextOrd int64
	for it.First(); it.Valid(); it.Next() {
		var ps pebbleSale
		if err := json.Unmarshal(it.Value(), &ps); err != nil {
			return nil, 0, poserr.Storagef(err, "decode sale %q", string(it.Key()))
		}
		rows = append(rows, ps)
		if ps.Ord >= nextOrd {
			nextOrd = ps.Ord + 1
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Ord < rows[j].Ord })
	list := make([]model.Sale, len(rows))
	for i, r := range rows {
		list[i] = r.Sale
	}
	return list, nextOrd, nil
}

func (s *PebbleStore) getLocked(ref string) (pebbleSale, bool, error) {
	v, closer, err := s.db.Get([]byte(ref))
	if err == pebble.ErrNotFound {
		return pebbleSale{}, false, nil
	}
	if err != nil {
		return pebbleSale{}, false, poserr.Storagef(err, "pebble get %q", ref)
	}
	defer closer.Close()
	var ps pebbleSale
	if err := json.Unmarshal(v, &ps); err != nil {
		return pebbleSale{}, false, poserr.Storagef(err, "decode sale %q", ref)
	}
	return ps, true, nil
}

func (s *PebbleStore) setLocked(ps pebbleSale) error {
	v, err := json.Marshal(ps)
	if err != nil {
		return poserr.Storagef(err, "encode sale %q", ps.Sale.Reference)
	}
	if err := s.db.Set([]byte(ps.Sale.Reference), v, pebble.Sync); err != nil {
		return poserr.Storagef(err, "pebble set %q", ps.Sale.Reference)
	}
	return nil
}

func (s *PebbleStore) Append(sale model.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sale.Validate(); err != nil {
		return err
	}
	_, ok, err := s.getLocked(sale.Reference)
	if err != nil {
		return err
	}
	if ok {
		return poserr.DuplicateKeyf("reference %q already exists", sale.Reference)
	}
	_, nextOrd, err := s.scanLocked()
	if err != nil {
		return err
	}
	return s.setLocked(pebbleSale{Sale: sale, Ord: nextOrd})
}

func (s *PebbleStore) UpdateByReference(ref string, patch model.SalePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, ok, err := s.getLocked(ref)
	if err != nil {
		return err
	}
	if !ok {
		return poserr.NotFoundf("reference %q", ref)
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	ps.Sale = patch.Apply(ps.Sale)
	return s.setLocked(ps)
}

func (s *PebbleStore) DeleteByReference(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.getLocked(ref)
	if err != nil {
		return err
	}
	if !ok {
		return poserr.NotFoundf("reference %q", ref)
	}
	if err := s.db.Delete([]byte(ref), pebble.Sync); err != nil {
		return poserr.Storagef(err, "pebble delete %q", ref)
	}
	return nil
}

func (s *PebbleStore) ExportAll() ([]byte, error) {
	list, err := s.Load()
	if err != nil {
		return nil, err
	}
	return encodeCSV(list)
}
