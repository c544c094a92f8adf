package ledger

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"minipos/internal/model"
	"minipos/internal/poserr"
)

func sampleSale(ref string, items string, qty int64, total float64) model.Sale {
	return model.Sale{
		Reference: ref,
		Date:      time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local),
		Items:     items,
		Quantity:  qty,
		Total:     decimal.NewFromFloat(total),
		Payment:   model.Cash,
	}
}

func TestCSVStore_LoadMissingFileIsEmpty(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "sales_log.csv"))
	list, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("want empty ledger, got %+v", list)
	}
}

func TestCSVStore_AppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales_log.csv")
	s := NewCSVStore(path)

	if err := s.Append(sampleSale("20250314150926", "Matcha", 1, 5.00)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(sampleSale("20250314150926", "Matcha", 1, 5.00)); !errors.Is(err, poserr.ErrDuplicateKey) {
		t.Fatalf("duplicate reference should fail, got %v", err)
	}
	if err := s.Append(sampleSale("20250314151030", "Mini Pancakes, Matcha", 3, 19.00)); err != nil {
		t.Fatalf("append 2: %v", err)
	}

	list, err := NewCSVStore(path).Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 rows, got %+v", list)
	}
	if list[1].Items != "Mini Pancakes, Matcha" || list[1].Quantity != 3 || !list[1].Total.Equal(decimal.NewFromFloat(19.00)) {
		t.Fatalf("row mangled across reload: %+v", list[1])
	}
}

func TestStore_AppendValidatesSale(t *testing.T) {
	s := NewMemoryStore()
	bad := sampleSale("r1", "Matcha", 0, 5)
	if err := s.Append(bad); !errors.Is(err, poserr.ErrValidation) {
		t.Fatalf("qty 0 should be a validation error, got %v", err)
	}
	bad = sampleSale("r1", "Matcha", 1, 5)
	bad.Payment = "Venmo"
	if err := s.Append(bad); !errors.Is(err, poserr.ErrValidation) {
		t.Fatalf("bad payment should be a validation error, got %v", err)
	}
}

func TestStore_UpdateByReference(t *testing.T) {
	s := NewMemoryStore()
	orig := sampleSale("r1", "Matcha", 1, 5.00)
	if err := s.Append(orig); err != nil {
		t.Fatalf("append: %v", err)
	}

	qty := int64(3)
	total := decimal.NewFromFloat(15.00)
	pm := model.Zelle
	if err := s.UpdateByReference("r1", model.SalePatch{Quantity: &qty, Total: &total, Payment: &pm}); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ := s.Load()
	got := list[0]
	if got.Quantity != 3 || !got.Total.Equal(total) || got.Payment != model.Zelle {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Reference != "r1" || !got.Date.Equal(orig.Date) {
		t.Fatalf("reference or date changed on edit: %+v", got)
	}

	if err := s.UpdateByReference("missing", model.SalePatch{Quantity: &qty}); !errors.Is(err, poserr.ErrNotFound) {
		t.Fatalf("absent reference should be not found, got %v", err)
	}
}

func TestStore_DeleteThenUpdateFails(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Append(sampleSale("r1", "Matcha", 1, 5.00)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.DeleteByReference("r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	qty := int64(2)
	if err := s.UpdateByReference("r1", model.SalePatch{Quantity: &qty}); !errors.Is(err, poserr.ErrNotFound) {
		t.Fatalf("update of deleted reference should be not found, got %v", err)
	}
	if err := s.DeleteByReference("r1"); !errors.Is(err, poserr.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestExportAll_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	sales := []model.Sale{
		sampleSale("20250314150926", "Matcha", 1, 5.00),
		sampleSale("20250314151030", "Mini Pancakes, Matcha", 3, 19.00),
		sampleSale("20250314151030-1", "Rice Crispy Cup", 2, 12.00),
	}
	for _, sl := range sales {
		if err := s.Append(sl); err != nil {
			t.Fatalf("append %s: %v", sl.Reference, err)
		}
	}

	out, err := s.ExportAll()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("Reference Number,Date,Product Sold,Quantity,Total Price,Payment Method\n")) {
		t.Fatalf("export header mismatch:\n%s", out)
	}

	got, err := decodeCSV(out)
	if err != nil {
		t.Fatalf("re-load export: %v", err)
	}
	if len(got) != len(sales) {
		t.Fatalf("want %d rows, got %d", len(sales), len(got))
	}
	for i, want := range sales {
		g := got[i]
		if g.Reference != want.Reference || g.Items != want.Items || g.Quantity != want.Quantity ||
			!g.Total.Equal(want.Total) || g.Payment != want.Payment || !g.Date.Equal(want.Date) {
			t.Fatalf("row %d mismatch:\n got %+v\nwant %+v", i, g, want)
		}
	}
}

func TestPebbleStore_CRUDPreservesOrder(t *testing.T) {
	st, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("pebble open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	// References that sort differently than insertion order.
	refs := []string{"b2", "a1", "c3"}
	for i, ref := range refs {
		if err := st.Append(sampleSale(ref, "Matcha", int64(i+1), 5.00)); err != nil {
			t.Fatalf("append %s: %v", ref, err)
		}
	}
	list, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i, ref := range refs {
		if list[i].Reference != ref {
			t.Fatalf("insertion order lost: %+v", list)
		}
	}

	qty := int64(9)
	if err := st.UpdateByReference("a1", model.SalePatch{Quantity: &qty}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := st.DeleteByReference("b2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = st.Load()
	if len(list) != 2 || list[0].Reference != "a1" || list[0].Quantity != 9 || list[1].Reference != "c3" {
		t.Fatalf("unexpected rows after edit+delete: %+v", list)
	}
}
