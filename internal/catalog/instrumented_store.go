package catalog

import (
	"errors"

	"github.com/shopspring/decimal"

	"minipos/internal/metrics"
	"minipos/internal/model"
	"minipos/internal/poserr"
)

// InstrumentedStore decorates a Store with the POS metrics registry.
type InstrumentedStore struct {
	inner Store
	reg   *metrics.Registry
}

func NewInstrumentedStore(inner Store, reg *metrics.Registry) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, reg: reg}
}

func (s *InstrumentedStore) Load() ([]model.Product, error) {
	list, err := s.inner.Load()
	s.count(err)
	return list, err
}

func (s *InstrumentedStore) Add(name string, price decimal.Decimal) error {
	return s.mutation(s.inner.Add(name, price))
}

func (s *InstrumentedStore) Update(oldName, newName string, newPrice decimal.Decimal) error {
	return s.mutation(s.inner.Update(oldName, newName, newPrice))
}

func (s *InstrumentedStore) Remove(name string) error {
	return s.mutation(s.inner.Remove(name))
}

func (s *InstrumentedStore) mutation(err error) error {
	s.count(err)
	if err == nil {
		s.reg.CatalogMutations.Inc()
	}
	return err
}

func (s *InstrumentedStore) count(err error) {
	if err != nil && errors.Is(err, poserr.ErrStorage) {
		s.reg.StorageErrors.Inc()
	}
}
