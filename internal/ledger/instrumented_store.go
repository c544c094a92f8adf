package ledger

import (
	"errors"

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

func (s *InstrumentedStore) Load() ([]model.Sale, error) {
	list, err := s.inner.Load()
	s.countStorage(err)
	return list, err
}

func (s *InstrumentedStore) ExportAll() ([]byte, error) {
	out, err := s.inner.ExportAll()
	s.countStorage(err)
	return out, err
}

func (s *InstrumentedStore) Append(sale model.Sale) error {
	err := s.inner.Append(sale)
	s.countStorage(err)
	if err == nil {
		s.reg.SalesRecorded.Inc()
		total, _ := sale.Total.Float64()
		s.reg.SaleTotalUSD.Observe(total)
	}
	return err
}

func (s *InstrumentedStore) UpdateByReference(ref string, patch model.SalePatch) error {
	err := s.inner.UpdateByReference(ref, patch)
	s.countStorage(err)
	if err == nil {
		s.reg.SalesUpdated.Inc()
	}
	return err
}

func (s *InstrumentedStore) DeleteByReference(ref string) error {
	err := s.inner.DeleteByReference(ref)
	s.countStorage(err)
	if err == nil {
		s.reg.SalesDeleted.Inc()
	}
	return err
}

func (s *InstrumentedStore) countStorage(err error) {
	if err != nil && errors.Is(err, poserr.ErrStorage) {
		s.reg.StorageErrors.Inc()
	}
}
