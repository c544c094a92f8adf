package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"minipos/internal/ledger"
	"minipos/internal/model"
	"minipos/internal/poserr"
)

func testCatalog() []model.Product {
	return []model.Product{
		{Name: "Pancakes", Price: decimal.NewFromFloat(7.00)},
		{Name: "Matcha", Price: decimal.NewFromFloat(5.00)},
	}
}

func TestComputeTotal(t *testing.T) {
	sel := model.Selection{{Product: "Pancakes", Qty: 2}, {Product: "Matcha", Qty: 1}}
	total, err := ComputeTotal(sel, testCatalog())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !total.Equal(decimal.NewFromFloat(19.00)) {
		t.Fatalf("want 19.00, got %s", total)
	}

	// Commutative over line order.
	rev := model.Selection{{Product: "Matcha", Qty: 1}, {Product: "Pancakes", Qty: 2}}
	revTotal, err := ComputeTotal(rev, testCatalog())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !revTotal.Equal(total) {
		t.Fatalf("order changed the total: %s vs %s", revTotal, total)
	}
}

func TestComputeTotal_Errors(t *testing.T) {
	sel := model.Selection{{Product: "Waffles", Qty: 1}}
	if _, err := ComputeTotal(sel, testCatalog()); !errors.Is(err, poserr.ErrNotFound) {
		t.Fatalf("unknown product should be not found, got %v", err)
	}
	sel = model.Selection{{Product: "Matcha", Qty: 0}}
	if _, err := ComputeTotal(sel, testCatalog()); !errors.Is(err, poserr.ErrValidation) {
		t.Fatalf("qty 0 should be a validation error, got %v", err)
	}
}

func TestRecordSale_EndToEnd(t *testing.T) {
	old := Now
	defer func() { Now = old }()
	when := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	Now = func() time.Time { return when }

	store := ledger.NewMemoryStore()
	r := NewRecorder(store)

	sel := model.Selection{{Product: "Pancakes", Qty: 2}, {Product: "Matcha", Qty: 1}}
	sale, err := r.RecordSale(sel, model.Cash, testCatalog())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sale.Reference != "20250314150926" {
		t.Fatalf("unexpected reference: %s", sale.Reference)
	}
	if sale.Items != "Pancakes, Matcha" || sale.Quantity != 3 || !sale.Total.Equal(decimal.NewFromFloat(19.00)) || sale.Payment != model.Cash {
		t.Fatalf("unexpected sale: %+v", sale)
	}
	if !sale.Date.Equal(when) {
		t.Fatalf("unexpected date: %v", sale.Date)
	}

	list, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list) != 1 || list[0].Reference != sale.Reference {
		t.Fatalf("sale not persisted: %+v", list)
	}
}

func TestRecordSale_SameSecondReferencesStayUnique(t *testing.T) {
	old := Now
	defer func() { Now = old }()
	when := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	Now = func() time.Time { return when }

	store := ledger.NewMemoryStore()
	r := NewRecorder(store)

	s1, err := r.RecordSale(model.Selection{{Product: "Matcha", Qty: 1}}, model.Cash, testCatalog())
	if err != nil {
		t.Fatalf("record 1: %v", err)
	}
	s2, err := r.RecordSale(model.Selection{{Product: "Pancakes", Qty: 1}}, model.Zelle, testCatalog())
	if err != nil {
		t.Fatalf("record 2: %v", err)
	}
	if s1.Reference == s2.Reference {
		t.Fatalf("same-second references collide: %s", s1.Reference)
	}
	if s2.Reference != "20250314150926-1" {
		t.Fatalf("unexpected disambiguated reference: %s", s2.Reference)
	}
}

func TestRecordSale_SkipsReferencesAlreadyInLedger(t *testing.T) {
	old := Now
	defer func() { Now = old }()
	when := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	Now = func() time.Time { return when }

	store := ledger.NewMemoryStore()
	// A prior run already wrote the bare stem.
	if err := store.Append(model.Sale{
		Reference: "20250314150926",
		Date:      when,
		Items:     "Matcha",
		Quantity:  1,
		Total:     decimal.NewFromInt(5),
		Payment:   model.Cash,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := NewRecorder(store)
	sale, err := r.RecordSale(model.Selection{{Product: "Matcha", Qty: 1}}, model.Cash, testCatalog())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sale.Reference != "20250314150926-1" {
		t.Fatalf("should have skipped the existing stem, got %s", sale.Reference)
	}
}

func TestRecordSale_Validation(t *testing.T) {
	r := NewRecorder(ledger.NewMemoryStore())
	if _, err := r.RecordSale(nil, model.Cash, testCatalog()); !errors.Is(err, poserr.ErrValidation) {
		t.Fatalf("empty selection should be a validation error, got %v", err)
	}
	sel := model.Selection{{Product: "Matcha", Qty: 1}}
	if _, err := r.RecordSale(sel, "Venmo", testCatalog()); !errors.Is(err, poserr.ErrValidation) {
		t.Fatalf("bad payment should be a validation error, got %v", err)
	}
	if _, err := r.RecordSale(model.Selection{{Product: "Waffles", Qty: 1}}, model.Cash, testCatalog()); !errors.Is(err, poserr.ErrNotFound) {
		t.Fatalf("unknown product should be not found, got %v", err)
	}
}
