package ledger

import (
	"time"

	"minipos/internal/changelog"
	"minipos/internal/model"
	"minipos/internal/poserr"
)

// AuditedStore decorates a Store and emits one changelog event per
// successful mutation. An emission failure surfaces as a storage error;
// the underlying mutation has already been applied at that point.
type AuditedStore struct {
	inner Store
	clog  changelog.Writer
	now   func() int64
}

func NewAuditedStore(inner Store, clog changelog.Writer) *AuditedStore {
	return &AuditedStore{
		inner: inner,
		clog:  clog,
		now:   func() int64 { return time.Now().UTC().Unix() },
	}
}

func (s *AuditedStore) Load() ([]model.Sale, error) { return s.inner.Load() }

func (s *AuditedStore) ExportAll() ([]byte, error) { return s.inner.ExportAll() }

func (s *AuditedStore) Append(sale model.Sale) error {
	if err := s.inner.Append(sale); err != nil {
		return err
	}
	return s.emit(changelog.Event{
		Op:        changelog.OpAppend,
		Reference: sale.Reference,
		TS:        s.now(),
		Sale:      &sale,
	})
}

func (s *AuditedStore) UpdateByReference(ref string, patch model.SalePatch) error {
	if err := s.inner.UpdateByReference(ref, patch); err != nil {
		return err
	}
	return s.emit(changelog.Event{
		Op:        changelog.OpUpdate,
		Reference: ref,
		TS:        s.now(),
		Patch:     &patch,
	})
}

func (s *AuditedStore) DeleteByReference(ref string) error {
	if err := s.inner.DeleteByReference(ref); err != nil {
		return err
	}
	return s.emit(changelog.Event{
		Op:        changelog.OpDelete,
		Reference: ref,
		TS:        s.now(),
	})
}

func (s *AuditedStore) emit(e changelog.Event) error {
	if err := s.clog.Append(e); err != nil {
		return poserr.Storagef(err, "changelog %s %s", e.Op, e.Reference)
	}
	return nil
}
